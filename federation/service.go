package federation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/0x6flab/namegenerator"
	"github.com/flxlabs/flotilla/model"
	"github.com/flxlabs/flotilla/pkg/aggregate"
	"github.com/flxlabs/flotilla/pkg/storage"
)

var namegen = namegenerator.NewGenerator()

// Config drives a full federated training run.
type Config struct {
	// Rounds is the number of dispatch/collect/aggregate cycles to execute.
	Rounds int
	// Epochs is passed through to every endpoint's local training step.
	Epochs int
	// SampleBudget caps the samples each endpoint trains on; zero leaves the
	// choice to the endpoint.
	SampleBudget int
	// Mode selects uniform or sample-weighted averaging.
	Mode aggregate.Mode
	// RoundInterval pauses between consecutive rounds; zero disables pacing.
	RoundInterval time.Duration
	// TrainTimeout bounds each dispatched job; zero waits indefinitely.
	TrainTimeout time.Duration
	// Quorum is the number of endpoint results required to aggregate a round.
	// Zero requires all endpoints. A partial quorum only makes sense together
	// with TrainTimeout, since a hung endpoint otherwise stalls the join.
	Quorum int
}

func (c Config) Validate(numEndpoints int) error {
	if numEndpoints == 0 {
		return ErrNoEndpoints
	}
	if c.Rounds <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRounds, c.Rounds)
	}
	if err := c.Mode.Validate(); err != nil {
		return err
	}
	if c.Quorum < 0 || c.Quorum > numEndpoints {
		return fmt.Errorf("%w: %d of %d", ErrInvalidQuorum, c.Quorum, numEndpoints)
	}

	return nil
}

// RoundStatus is a point-in-time view of the run for introspection.
type RoundStatus struct {
	RunName      string `json:"run_name"`
	Round        int    `json:"round"`
	Rounds       int    `json:"rounds"`
	ModelVersion uint64 `json:"model_version"`
	Completed    bool   `json:"completed"`
	Failed       bool   `json:"failed"`
	Error        string `json:"error,omitempty"`
}

type Service interface {
	// Run executes the configured number of rounds starting from m and returns
	// the final global model. Any round failure aborts the run; the returned
	// error carries the originating failure and m is left untouched.
	Run(ctx context.Context, m model.Model, endpoints []string) (model.Model, error)

	// Status reports progress of the current or most recent run.
	Status(ctx context.Context) (RoundStatus, error)

	// Model retrieves a committed global model by version.
	Model(ctx context.Context, version uint64) (model.Model, error)

	// ListModels returns the committed model versions in commit order.
	ListModels(ctx context.Context) ([]uint64, error)
}

type service struct {
	cfg        Config
	dispatcher *Dispatcher
	evaluator  Evaluator
	registry   storage.Storage
	logger     *slog.Logger

	mu       sync.Mutex
	status   RoundStatus
	versions []uint64
	started  bool
}

// NewService builds the round orchestrator. evaluator may be nil.
func NewService(cfg Config, trainer Trainer, evaluator Evaluator, registry storage.Storage, logger *slog.Logger) Service {
	return &service{
		cfg:        cfg,
		dispatcher: NewDispatcher(trainer, cfg.TrainTimeout),
		evaluator:  evaluator,
		registry:   registry,
		logger:     logger,
	}
}

func (svc *service) Run(ctx context.Context, m model.Model, endpoints []string) (model.Model, error) {
	if err := svc.cfg.Validate(len(endpoints)); err != nil {
		return model.Model{}, err
	}
	if err := m.Params.Validate(); err != nil {
		return model.Model{}, err
	}

	runName := namegen.Generate()
	svc.beginRun(runName, m.Version)

	svc.logger.InfoContext(ctx, "starting federated run",
		"run", runName,
		"rounds", svc.cfg.Rounds,
		"endpoints", len(endpoints),
		"mode", string(svc.cfg.Mode))

	for round := 1; round <= svc.cfg.Rounds; round++ {
		next, err := svc.executeRound(ctx, m, endpoints, round)
		if err != nil {
			svc.failRun(err)
			svc.logger.ErrorContext(ctx, "round failed, aborting run",
				"run", runName,
				"round", round,
				"error", err)

			return model.Model{}, fmt.Errorf("round %d: %w", round, err)
		}
		m = next

		if err := svc.recordCommit(ctx, round, m); err != nil {
			svc.failRun(err)

			return model.Model{}, fmt.Errorf("round %d: %w", round, err)
		}

		svc.logger.InfoContext(ctx, "round committed",
			"run", runName,
			"round", round,
			"model_version", m.Version)

		svc.evaluate(ctx, m)

		if svc.cfg.RoundInterval > 0 && round < svc.cfg.Rounds {
			select {
			case <-ctx.Done():
				svc.failRun(ctx.Err())

				return model.Model{}, ctx.Err()
			case <-time.After(svc.cfg.RoundInterval):
			}
		}
	}

	svc.completeRun()

	return m, nil
}

// executeRound runs one dispatch/collect/aggregate cycle against m and
// returns the successor model. m is never mutated.
func (svc *service) executeRound(ctx context.Context, m model.Model, endpoints []string, round int) (model.Model, error) {
	template := Job{
		Round:        uint64(round),
		Architecture: m.Architecture,
		Params:       m.Snapshot(),
		SampleBudget: svc.cfg.SampleBudget,
		Epochs:       svc.cfg.Epochs,
	}

	pendings := svc.dispatcher.Dispatch(ctx, template, endpoints)

	var (
		results []Result
		err     error
	)
	if svc.cfg.Quorum > 0 && svc.cfg.Quorum < len(endpoints) {
		results, err = AwaitQuorum(ctx, pendings, svc.cfg.Quorum)
	} else {
		results, err = AwaitAll(ctx, pendings)
	}
	if err != nil {
		return model.Model{}, err
	}

	merged, err := svc.merge(results)
	if err != nil {
		return model.Model{}, err
	}

	return m.Commit(merged)
}

func (svc *service) merge(results []Result) (model.Parameters, error) {
	sets := make([]model.Parameters, len(results))
	for i := range results {
		sets[i] = results[i].Params
	}

	switch svc.cfg.Mode {
	case aggregate.ModeWeightedAverage:
		counts := make([]int, len(results))
		for i := range results {
			counts[i] = results[i].NumSamples
		}
		weights, err := aggregate.EdgeWeights(counts)
		if err != nil {
			return nil, err
		}

		return aggregate.WeightedAverage(sets, weights)
	default:
		return aggregate.Average(sets)
	}
}

// evaluate runs the optional diagnostic hook. Evaluation failures are logged
// and never abort the run.
func (svc *service) evaluate(ctx context.Context, m model.Model) {
	if svc.evaluator == nil {
		return
	}
	if err := svc.evaluator.Evaluate(ctx, m); err != nil {
		svc.logger.WarnContext(ctx, "evaluation failed",
			"model_version", m.Version,
			"error", err)
	}
}

func (svc *service) recordCommit(ctx context.Context, round int, m model.Model) error {
	if err := svc.registry.Create(ctx, modelKey(m.Version), m); err != nil {
		return fmt.Errorf("failed to register model v%d: %w", m.Version, err)
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.status.Round = round
	svc.status.ModelVersion = m.Version
	svc.versions = append(svc.versions, m.Version)

	return nil
}

func (svc *service) Status(ctx context.Context) (RoundStatus, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if !svc.started {
		return RoundStatus{}, ErrRunNotStarted
	}

	return svc.status, nil
}

func (svc *service) Model(ctx context.Context, version uint64) (model.Model, error) {
	data, err := svc.registry.Get(ctx, modelKey(version))
	if err != nil {
		return model.Model{}, err
	}

	m, ok := data.(model.Model)
	if !ok {
		return model.Model{}, fmt.Errorf("registry entry %s holds %T", modelKey(version), data)
	}

	return m, nil
}

func (svc *service) ListModels(ctx context.Context) ([]uint64, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	versions := make([]uint64, len(svc.versions))
	copy(versions, svc.versions)

	return versions, nil
}

func (svc *service) beginRun(runName string, version uint64) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.started = true
	svc.status = RoundStatus{
		RunName:      runName,
		Rounds:       svc.cfg.Rounds,
		ModelVersion: version,
	}
}

func (svc *service) failRun(err error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.status.Failed = true
	svc.status.Error = err.Error()
}

func (svc *service) completeRun() {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.status.Completed = true
}

func modelKey(version uint64) string {
	return fmt.Sprintf("model/v%d", version)
}
