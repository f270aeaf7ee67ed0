package trainer_test

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/flxlabs/flotilla/federation"
	"github.com/flxlabs/flotilla/model"
	"github.com/flxlabs/flotilla/pkg/mqtt"
	"github.com/flxlabs/flotilla/pkg/mqtt/mocks"
	"github.com/flxlabs/flotilla/trainer"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testJob() federation.Job {
	return federation.Job{
		ID:         "job-1",
		Round:      1,
		EndpointID: "ep-1",
		Params: model.Parameters{
			{Shape: []int{2}, Data: []float64{1, 2}},
		},
		Epochs: 3,
	}
}

func encodeParams(t *testing.T, params model.Parameters) string {
	t.Helper()

	raw, err := cbor.Marshal(params)
	require.NoError(t, err)

	return base64.StdEncoding.EncodeToString(raw)
}

func TestTopics(t *testing.T) {
	t.Parallel()

	topics := trainer.NewTopics("fed-1")

	assert.Equal(t, "fl/fed-1", topics.BaseTopic())
	assert.Equal(t, "fl/fed-1/endpoints/ep-1/jobs", topics.JobTopic("ep-1"))
	assert.Equal(t, "fl/fed-1/endpoints/ep-1/updates/job-1", topics.UpdateTopic("ep-1", "job-1"))
}

func TestTrainRoundTrip(t *testing.T) {
	t.Parallel()

	job := testJob()
	trained := model.Parameters{
		{Shape: []int{2}, Data: []float64{3, 4}},
	}

	pubsub := new(mocks.MockPubSub)
	var handler mqtt.Handler
	pubsub.On("Subscribe", mock.Anything, "fl/fed-1/endpoints/ep-1/updates/job-1", mock.Anything).
		Run(func(args mock.Arguments) {
			handler = args.Get(2).(mqtt.Handler)
		}).
		Return(nil)
	pubsub.On("Publish", mock.Anything, "fl/fed-1/endpoints/ep-1/jobs", mock.Anything).
		Run(func(mock.Arguments) {
			// the endpoint answers on the per-job update topic
			err := handler("fl/fed-1/endpoints/ep-1/updates/job-1", map[string]any{
				"job_id":      "job-1",
				"endpoint_id": "ep-1",
				"num_samples": 42,
				"params_b64":  encodeParams(t, trained),
			})
			assert.NoError(t, err)
		}).
		Return(nil)
	pubsub.On("Unsubscribe", mock.Anything, "fl/fed-1/endpoints/ep-1/updates/job-1").Return(nil)

	mt := trainer.NewMQTT(pubsub, trainer.NewTopics("fed-1"), testLogger())

	result, err := mt.Train(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, "ep-1", result.EndpointID)
	assert.Equal(t, 42, result.NumSamples)
	assert.Equal(t, trained, result.Params)

	pubsub.AssertExpectations(t)
}

func TestTrainEndpointFailure(t *testing.T) {
	t.Parallel()

	job := testJob()

	pubsub := new(mocks.MockPubSub)
	var handler mqtt.Handler
	pubsub.On("Subscribe", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			handler = args.Get(2).(mqtt.Handler)
		}).
		Return(nil)
	pubsub.On("Publish", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			err := handler("fl/fed-1/endpoints/ep-1/updates/job-1", map[string]any{
				"job_id":      "job-1",
				"endpoint_id": "ep-1",
				"error":       "out of memory",
			})
			assert.Error(t, err)
		}).
		Return(nil)
	pubsub.On("Unsubscribe", mock.Anything, mock.Anything).Return(nil)

	mt := trainer.NewMQTT(pubsub, trainer.NewTopics("fed-1"), testLogger())

	_, err := mt.Train(context.Background(), job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of memory")
}

func TestTrainRejectsForeignJobUpdates(t *testing.T) {
	t.Parallel()

	job := testJob()

	pubsub := new(mocks.MockPubSub)
	var handler mqtt.Handler
	pubsub.On("Subscribe", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			handler = args.Get(2).(mqtt.Handler)
		}).
		Return(nil)
	pubsub.On("Publish", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			err := handler("fl/fed-1/endpoints/ep-1/updates/job-1", map[string]any{
				"job_id":      "job-other",
				"endpoint_id": "ep-1",
				"num_samples": 1,
			})
			assert.Error(t, err)
		}).
		Return(nil)
	pubsub.On("Unsubscribe", mock.Anything, mock.Anything).Return(nil)

	mt := trainer.NewMQTT(pubsub, trainer.NewTopics("fed-1"), testLogger())

	_, err := mt.Train(context.Background(), job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match job")
}

func TestTrainSubscribeFailure(t *testing.T) {
	t.Parallel()

	pubsub := new(mocks.MockPubSub)
	pubsub.On("Subscribe", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker unreachable"))

	mt := trainer.NewMQTT(pubsub, trainer.NewTopics("fed-1"), testLogger())

	_, err := mt.Train(context.Background(), testJob())
	assert.Contains(t, err.Error(), "failed to subscribe")
	pubsub.AssertNotCalled(t, "Publish")
}

func TestTrainPublishFailure(t *testing.T) {
	t.Parallel()

	pubsub := new(mocks.MockPubSub)
	pubsub.On("Subscribe", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	pubsub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker unreachable"))
	pubsub.On("Unsubscribe", mock.Anything, mock.Anything).Return(nil)

	mt := trainer.NewMQTT(pubsub, trainer.NewTopics("fed-1"), testLogger())

	_, err := mt.Train(context.Background(), testJob())
	assert.Contains(t, err.Error(), "failed to publish")
}

func TestTrainHonorsContext(t *testing.T) {
	t.Parallel()

	// no update ever arrives
	pubsub := new(mocks.MockPubSub)
	pubsub.On("Subscribe", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	pubsub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	pubsub.On("Unsubscribe", mock.Anything, mock.Anything).Return(nil)

	mt := trainer.NewMQTT(pubsub, trainer.NewTopics("fed-1"), testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := mt.Train(ctx, testJob())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
