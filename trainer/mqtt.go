// Package trainer provides remote training capability adapters. The
// coordination core only sees the federation.Trainer contract; this package
// supplies the MQTT transport binding.
package trainer

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fxamacker/cbor/v2"

	"github.com/flxlabs/flotilla/federation"
	"github.com/flxlabs/flotilla/model"
	"github.com/flxlabs/flotilla/pkg/mqtt"
)

var (
	errEndpointFailure = errors.New("endpoint reported training failure")
	errJobMismatch     = errors.New("update does not match job")
)

// jobEnvelope is the wire form of a training job. Parameters travel as
// CBOR-encoded tensors, base64-wrapped inside the JSON message.
type jobEnvelope struct {
	JobID        string `json:"job_id"`
	Round        uint64 `json:"round"`
	EndpointID   string `json:"endpoint_id"`
	Architecture []byte `json:"architecture"`
	ParamsB64    string `json:"params_b64"`
	SampleBudget int    `json:"sample_budget,omitempty"`
	Epochs       int    `json:"epochs"`
	UpdateTopic  string `json:"update_topic"`
}

type updateEnvelope struct {
	JobID      string `json:"job_id"`
	EndpointID string `json:"endpoint_id"`
	NumSamples int    `json:"num_samples"`
	ParamsB64  string `json:"params_b64"`
	Error      string `json:"error,omitempty"`
}

// MQTT executes training jobs by publishing them to the endpoint's job topic
// and waiting for the update on a per-job reply topic.
type MQTT struct {
	pubsub mqtt.PubSub
	topics *Topics
	logger *slog.Logger
}

var _ federation.Trainer = (*MQTT)(nil)

func NewMQTT(pubsub mqtt.PubSub, topics *Topics, logger *slog.Logger) *MQTT {
	return &MQTT{
		pubsub: pubsub,
		topics: topics,
		logger: logger,
	}
}

func (t *MQTT) Train(ctx context.Context, job federation.Job) (federation.Result, error) {
	updateTopic := t.topics.UpdateTopic(job.EndpointID, job.ID)

	results := make(chan federation.Result, 1)
	failures := make(chan error, 1)

	handler := func(topic string, msg map[string]any) error {
		result, err := decodeUpdate(job, msg)
		if err != nil {
			select {
			case failures <- err:
			default:
			}

			return err
		}

		select {
		case results <- result:
		default:
		}

		return nil
	}

	if err := t.pubsub.Subscribe(ctx, updateTopic, handler); err != nil {
		return federation.Result{}, fmt.Errorf("failed to subscribe to %s: %w", updateTopic, err)
	}
	defer func() {
		if err := t.pubsub.Unsubscribe(context.WithoutCancel(ctx), updateTopic); err != nil {
			t.logger.Warn("failed to unsubscribe from update topic",
				"topic", updateTopic,
				"error", err)
		}
	}()

	envelope, err := encodeJob(job, updateTopic)
	if err != nil {
		return federation.Result{}, err
	}

	if err := t.pubsub.Publish(ctx, t.topics.JobTopic(job.EndpointID), envelope); err != nil {
		return federation.Result{}, fmt.Errorf("failed to publish job %s: %w", job.ID, err)
	}

	select {
	case <-ctx.Done():
		return federation.Result{}, ctx.Err()
	case err := <-failures:
		return federation.Result{}, err
	case result := <-results:
		return result, nil
	}
}

func encodeJob(job federation.Job, updateTopic string) (jobEnvelope, error) {
	raw, err := cbor.Marshal(job.Params)
	if err != nil {
		return jobEnvelope{}, fmt.Errorf("failed to encode parameters: %w", err)
	}

	return jobEnvelope{
		JobID:        job.ID,
		Round:        job.Round,
		EndpointID:   job.EndpointID,
		Architecture: job.Architecture,
		ParamsB64:    base64.StdEncoding.EncodeToString(raw),
		SampleBudget: job.SampleBudget,
		Epochs:       job.Epochs,
		UpdateTopic:  updateTopic,
	}, nil
}

func decodeUpdate(job federation.Job, msg map[string]any) (federation.Result, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return federation.Result{}, err
	}

	var update updateEnvelope
	if err := json.Unmarshal(data, &update); err != nil {
		return federation.Result{}, fmt.Errorf("invalid update payload: %w", err)
	}

	if update.JobID != job.ID {
		return federation.Result{}, fmt.Errorf("%w: got job %s, want %s", errJobMismatch, update.JobID, job.ID)
	}
	if update.Error != "" {
		return federation.Result{}, fmt.Errorf("%w: %s", errEndpointFailure, update.Error)
	}

	raw, err := base64.StdEncoding.DecodeString(update.ParamsB64)
	if err != nil {
		return federation.Result{}, fmt.Errorf("invalid params_b64: %w", err)
	}

	var params model.Parameters
	if err := cbor.Unmarshal(raw, &params); err != nil {
		return federation.Result{}, fmt.Errorf("invalid parameter payload: %w", err)
	}

	return federation.Result{
		EndpointID: update.EndpointID,
		Params:     params,
		NumSamples: update.NumSamples,
	}, nil
}
