package middleware

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/flxlabs/flotilla/federation"
	"github.com/flxlabs/flotilla/model"
)

var _ federation.Service = (*tracing)(nil)

type tracing struct {
	tracer trace.Tracer
	svc    federation.Service
}

func Tracing(tracer trace.Tracer, svc federation.Service) federation.Service {
	return &tracing{tracer, svc}
}

func (tm *tracing) Run(ctx context.Context, m model.Model, endpoints []string) (model.Model, error) {
	ctx, span := tm.tracer.Start(ctx, "run", trace.WithAttributes(
		attribute.Int("endpoints", len(endpoints)),
		attribute.Int64("start_version", int64(m.Version)),
	))
	defer span.End()

	return tm.svc.Run(ctx, m, endpoints)
}

func (tm *tracing) Status(ctx context.Context) (federation.RoundStatus, error) {
	ctx, span := tm.tracer.Start(ctx, "status")
	defer span.End()

	return tm.svc.Status(ctx)
}

func (tm *tracing) Model(ctx context.Context, version uint64) (model.Model, error) {
	ctx, span := tm.tracer.Start(ctx, "model", trace.WithAttributes(
		attribute.Int64("version", int64(version)),
	))
	defer span.End()

	return tm.svc.Model(ctx, version)
}

func (tm *tracing) ListModels(ctx context.Context) ([]uint64, error) {
	ctx, span := tm.tracer.Start(ctx, "list-models")
	defer span.End()

	return tm.svc.ListModels(ctx)
}
