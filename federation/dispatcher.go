package federation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type outcome struct {
	result Result
	err    error
}

// Pending is the handle for one dispatched training job. It resolves exactly
// once, with either the endpoint's result or its failure.
type Pending struct {
	EndpointID string

	done chan outcome
}

// Wait blocks until the job resolves or ctx is done.
func (p *Pending) Wait(ctx context.Context) (Result, error) {
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case o := <-p.done:
		return o.result, o.err
	}
}

// Dispatcher fans a round's training job out to every endpoint as an
// independent unit of work.
type Dispatcher struct {
	trainer Trainer
	timeout time.Duration
}

// NewDispatcher wraps trainer. A positive timeout bounds every dispatched job
// with its own deadline; zero keeps the baseline behavior of waiting
// indefinitely.
func NewDispatcher(trainer Trainer, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		trainer: trainer,
		timeout: timeout,
	}
}

// Dispatch submits one job per endpoint and returns immediately with one
// handle per endpoint, in submission order. Each job carries its own copy of
// the template's parameter snapshot.
func (d *Dispatcher) Dispatch(ctx context.Context, template Job, endpoints []string) []*Pending {
	pendings := make([]*Pending, 0, len(endpoints))

	for _, endpointID := range endpoints {
		job := template
		job.ID = uuid.NewString()
		job.EndpointID = endpointID
		job.Params = template.Params.Clone()

		p := &Pending{
			EndpointID: endpointID,
			done:       make(chan outcome, 1),
		}
		pendings = append(pendings, p)

		go d.run(ctx, job, p)
	}

	return pendings
}

func (d *Dispatcher) run(ctx context.Context, job Job, p *Pending) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	result, err := d.trainer.Train(ctx, job)
	if err != nil {
		p.done <- outcome{err: errors.Join(ErrRemoteExecution, fmt.Errorf("endpoint %s: %w", job.EndpointID, err))}

		return
	}

	if err := validateResult(job, result); err != nil {
		p.done <- outcome{err: err}

		return
	}

	result.EndpointID = job.EndpointID
	p.done <- outcome{result: result}
}

// validateResult enforces the remote capability's output contract: sample
// counts are non-negative and the returned tensors carry the same shapes, in
// the same order, as the snapshot the job was derived from.
func validateResult(job Job, result Result) error {
	if result.NumSamples < 0 {
		return errors.Join(ErrRemoteExecution, fmt.Errorf("%w: endpoint %s reported %d samples", ErrMalformedResult, job.EndpointID, result.NumSamples))
	}
	if err := job.Params.ShapesMatch(result.Params); err != nil {
		return fmt.Errorf("endpoint %s: %w", job.EndpointID, err)
	}

	return nil
}
