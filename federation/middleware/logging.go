package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/flxlabs/flotilla/federation"
	"github.com/flxlabs/flotilla/model"
)

var _ federation.Service = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger *slog.Logger
	svc    federation.Service
}

func Logging(logger *slog.Logger, svc federation.Service) federation.Service {
	return &loggingMiddleware{
		logger: logger,
		svc:    svc,
	}
}

func (lm *loggingMiddleware) Run(ctx context.Context, m model.Model, endpoints []string) (resp model.Model, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Int("endpoints", len(endpoints)),
			slog.Uint64("final_version", resp.Version),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Federated run failed", args...)

			return
		}
		lm.logger.Info("Federated run completed successfully", args...)
	}(time.Now())

	return lm.svc.Run(ctx, m, endpoints)
}

func (lm *loggingMiddleware) Status(ctx context.Context) (resp federation.RoundStatus, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("run",
				slog.String("name", resp.RunName),
				slog.Int("round", resp.Round),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Get status failed", args...)

			return
		}
		lm.logger.Info("Get status completed successfully", args...)
	}(time.Now())

	return lm.svc.Status(ctx)
}

func (lm *loggingMiddleware) Model(ctx context.Context, version uint64) (resp model.Model, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Uint64("version", version),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Get model failed", args...)

			return
		}
		lm.logger.Info("Get model completed successfully", args...)
	}(time.Now())

	return lm.svc.Model(ctx, version)
}

func (lm *loggingMiddleware) ListModels(ctx context.Context) (resp []uint64, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Int("versions", len(resp)),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("List models failed", args...)

			return
		}
		lm.logger.Info("List models completed successfully", args...)
	}(time.Now())

	return lm.svc.ListModels(ctx)
}
