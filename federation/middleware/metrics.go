package middleware

import (
	"context"
	"time"

	"github.com/go-kit/kit/metrics"

	"github.com/flxlabs/flotilla/federation"
	"github.com/flxlabs/flotilla/model"
)

var _ federation.Service = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	svc     federation.Service
}

func Metrics(counter metrics.Counter, latency metrics.Histogram, svc federation.Service) federation.Service {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		svc:     svc,
	}
}

func (mm *metricsMiddleware) Run(ctx context.Context, m model.Model, endpoints []string) (model.Model, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "run").Add(1)
		mm.latency.With("method", "run").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Run(ctx, m, endpoints)
}

func (mm *metricsMiddleware) Status(ctx context.Context) (federation.RoundStatus, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "status").Add(1)
		mm.latency.With("method", "status").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Status(ctx)
}

func (mm *metricsMiddleware) Model(ctx context.Context, version uint64) (model.Model, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "model").Add(1)
		mm.latency.With("method", "model").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Model(ctx, version)
}

func (mm *metricsMiddleware) ListModels(ctx context.Context) ([]uint64, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "list-models").Add(1)
		mm.latency.With("method", "list-models").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.ListModels(ctx)
}
