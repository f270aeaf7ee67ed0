package federation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flxlabs/flotilla/federation"
	"github.com/flxlabs/flotilla/model"
)

type trainerFunc func(ctx context.Context, job federation.Job) (federation.Result, error)

func (f trainerFunc) Train(ctx context.Context, job federation.Job) (federation.Result, error) {
	return f(ctx, job)
}

func testParams(values ...float64) model.Parameters {
	return model.Parameters{
		{Shape: []int{len(values)}, Data: values},
	}
}

func echoTrainer(ctx context.Context, job federation.Job) (federation.Result, error) {
	return federation.Result{
		Params:     job.Params,
		NumSamples: 1,
	}, nil
}

func TestDispatchReturnsHandlesInSubmissionOrder(t *testing.T) {
	t.Parallel()

	d := federation.NewDispatcher(trainerFunc(echoTrainer), 0)
	endpoints := []string{"ep-1", "ep-2", "ep-3"}

	pendings := d.Dispatch(context.Background(), federation.Job{Params: testParams(1)}, endpoints)

	require.Len(t, pendings, len(endpoints))
	for i, p := range pendings {
		assert.Equal(t, endpoints[i], p.EndpointID)
	}
}

func TestDispatchStampsJobs(t *testing.T) {
	t.Parallel()

	jobs := make(chan federation.Job, 2)
	trainer := trainerFunc(func(ctx context.Context, job federation.Job) (federation.Result, error) {
		jobs <- job

		return federation.Result{Params: job.Params, NumSamples: 1}, nil
	})

	d := federation.NewDispatcher(trainer, 0)
	template := federation.Job{
		Round:  3,
		Params: testParams(1, 2),
		Epochs: 5,
	}
	pendings := d.Dispatch(context.Background(), template, []string{"ep-1", "ep-2"})
	_, err := federation.AwaitAll(context.Background(), pendings)
	require.NoError(t, err)

	seen := map[string]federation.Job{}
	for range 2 {
		job := <-jobs
		seen[job.EndpointID] = job
	}

	require.Len(t, seen, 2)
	ids := map[string]bool{}
	for _, job := range seen {
		assert.NotEmpty(t, job.ID)
		assert.Equal(t, uint64(3), job.Round)
		assert.Equal(t, 5, job.Epochs)
		ids[job.ID] = true
	}
	assert.Len(t, ids, 2, "every job gets its own ID")
}

func TestDispatchIsolatesParamsPerJob(t *testing.T) {
	t.Parallel()

	trainer := trainerFunc(func(ctx context.Context, job federation.Job) (federation.Result, error) {
		job.Params[0].Data[0] = -1

		return federation.Result{Params: job.Params, NumSamples: 1}, nil
	})

	d := federation.NewDispatcher(trainer, 0)
	template := federation.Job{Params: testParams(7)}

	pendings := d.Dispatch(context.Background(), template, []string{"ep-1", "ep-2"})
	_, err := federation.AwaitAll(context.Background(), pendings)
	require.NoError(t, err)

	assert.Equal(t, []float64{7}, template.Params[0].Data)
}

func TestDispatchWrapsTrainerErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection refused")
	trainer := trainerFunc(func(ctx context.Context, job federation.Job) (federation.Result, error) {
		return federation.Result{}, boom
	})

	d := federation.NewDispatcher(trainer, 0)
	pendings := d.Dispatch(context.Background(), federation.Job{Params: testParams(1)}, []string{"ep-1"})

	_, err := pendings[0].Wait(context.Background())
	assert.ErrorIs(t, err, federation.ErrRemoteExecution)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "ep-1")
}

func TestDispatchRejectsNegativeSampleCount(t *testing.T) {
	t.Parallel()

	trainer := trainerFunc(func(ctx context.Context, job federation.Job) (federation.Result, error) {
		return federation.Result{Params: job.Params, NumSamples: -5}, nil
	})

	d := federation.NewDispatcher(trainer, 0)
	pendings := d.Dispatch(context.Background(), federation.Job{Params: testParams(1)}, []string{"ep-1"})

	_, err := pendings[0].Wait(context.Background())
	assert.ErrorIs(t, err, federation.ErrRemoteExecution)
	assert.ErrorIs(t, err, federation.ErrMalformedResult)
}

func TestDispatchRejectsShapeDrift(t *testing.T) {
	t.Parallel()

	trainer := trainerFunc(func(ctx context.Context, job federation.Job) (federation.Result, error) {
		return federation.Result{Params: testParams(1, 2, 3), NumSamples: 1}, nil
	})

	d := federation.NewDispatcher(trainer, 0)
	pendings := d.Dispatch(context.Background(), federation.Job{Params: testParams(1)}, []string{"ep-1"})

	_, err := pendings[0].Wait(context.Background())
	assert.ErrorIs(t, err, model.ErrShapeMismatch)
}

func TestDispatchTimeoutBoundsEachJob(t *testing.T) {
	t.Parallel()

	trainer := trainerFunc(func(ctx context.Context, job federation.Job) (federation.Result, error) {
		<-ctx.Done()

		return federation.Result{}, ctx.Err()
	})

	d := federation.NewDispatcher(trainer, 20*time.Millisecond)
	pendings := d.Dispatch(context.Background(), federation.Job{Params: testParams(1)}, []string{"ep-1"})

	_, err := pendings[0].Wait(context.Background())
	assert.ErrorIs(t, err, federation.ErrRemoteExecution)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPendingWaitHonorsContext(t *testing.T) {
	t.Parallel()

	trainer := trainerFunc(func(ctx context.Context, job federation.Job) (federation.Result, error) {
		<-ctx.Done()

		return federation.Result{}, ctx.Err()
	})

	d := federation.NewDispatcher(trainer, 0)
	dispatchCtx, dispatchCancel := context.WithCancel(context.Background())
	defer dispatchCancel()
	pendings := d.Dispatch(dispatchCtx, federation.Job{Params: testParams(1)}, []string{"ep-1"})

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer waitCancel()

	_, err := pendings[0].Wait(waitCtx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
