// Package federation coordinates iterative federated training rounds across a
// fixed pool of remote compute endpoints: each round the current global model
// is fanned out to every endpoint, the updated parameter sets are collected,
// merged by the configured aggregation mode, and committed as the next global
// model.
package federation

import (
	"context"

	"github.com/flxlabs/flotilla/model"
)

// Job is the immutable unit of work sent to one endpoint for one round. It
// carries a snapshot of the global model, never a reference to it.
type Job struct {
	ID           string           `json:"id"`
	Round        uint64           `json:"round"`
	EndpointID   string           `json:"endpoint_id"`
	Architecture []byte           `json:"architecture"`
	Params       model.Parameters `json:"params"`
	SampleBudget int              `json:"sample_budget,omitempty"`
	Epochs       int              `json:"epochs"`
}

// Result is produced once per job by the remote training capability.
type Result struct {
	EndpointID string           `json:"endpoint_id"`
	Params     model.Parameters `json:"params"`
	NumSamples int              `json:"num_samples"`
}

// Trainer executes local training on one endpoint. Implementations live
// outside the coordination core; the core only consumes this contract.
type Trainer interface {
	Train(ctx context.Context, job Job) (Result, error)
}

// Evaluator is an optional per-round diagnostic hook, invoked with the freshly
// committed global model. Its outcome never affects the round loop.
type Evaluator interface {
	Evaluate(ctx context.Context, m model.Model) error
}
