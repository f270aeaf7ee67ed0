// Package flotillad hosts the coordinator daemon.
package flotillad

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/flxlabs/flotilla"
	"github.com/flxlabs/flotilla/federation"
	"github.com/flxlabs/flotilla/federation/api"
	"github.com/flxlabs/flotilla/federation/middleware"
	"github.com/flxlabs/flotilla/model"
	"github.com/flxlabs/flotilla/pkg/aggregate"
	"github.com/flxlabs/flotilla/pkg/mqtt"
	"github.com/flxlabs/flotilla/pkg/prometheus"
	"github.com/flxlabs/flotilla/pkg/storage"
	"github.com/flxlabs/flotilla/trainer"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"
)

const (
	svcName         = "coordinator"
	shutdownTimeout = 10 * time.Second
)

type Config struct {
	LogLevel    string
	InstanceID  string
	HTTPAddress string
	MQTTQoS     uint8
	MQTTTimeout time.Duration
	ConfigPath  string
}

// StartCoordinator runs the federated training loop described by the run
// config at cfg.ConfigPath and serves the introspection API until ctx is
// canceled. The run outcome stays queryable after the loop finishes.
func StartCoordinator(ctx context.Context, cancel context.CancelFunc, cfg Config) error {
	g, ctx := errgroup.WithContext(ctx)

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return fmt.Errorf("failed to parse log level: %s", err.Error())
	}
	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	runCfg, err := flotilla.LoadConfig(cfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load run config: %s", err.Error())
	}

	mode, err := aggregate.ParseMode(runCfg.Federation.Mode)
	if err != nil {
		return err
	}

	initial, err := loadModel(runCfg.Federation.ModelPath)
	if err != nil {
		return fmt.Errorf("failed to load initial model: %s", err.Error())
	}

	tp := noop.NewTracerProvider()
	tracer := tp.Tracer(svcName)

	mqttPubSub, err := mqtt.NewPubSub(
		runCfg.Broker.URL,
		cfg.MQTTQoS,
		svcName,
		runCfg.Broker.Username,
		runCfg.Broker.Password,
		runCfg.Federation.ID,
		cfg.MQTTTimeout,
		logger,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize mqtt pubsub: %s", err.Error())
	}
	defer func() {
		if err := mqttPubSub.Disconnect(context.Background()); err != nil {
			logger.Error("failed to disconnect mqtt client", slog.Any("error", err))
		}
	}()

	mqttTrainer := trainer.NewMQTT(mqttPubSub, trainer.NewTopics(runCfg.Federation.ID), logger)

	svc := federation.NewService(
		federation.Config{
			Rounds:        runCfg.Federation.Rounds,
			Epochs:        runCfg.Federation.Epochs,
			SampleBudget:  runCfg.Federation.SampleBudget,
			Mode:          mode,
			RoundInterval: runCfg.Federation.RoundInterval,
			TrainTimeout:  runCfg.Federation.TrainTimeout,
			Quorum:        runCfg.Federation.Quorum,
		},
		mqttTrainer,
		nil,
		storage.NewInMemoryStorage(),
		logger,
	)
	svc = middleware.Logging(logger, svc)
	svc = middleware.Tracing(tracer, svc)
	counter, latency := prometheus.MakeMetrics(svcName, "api")
	svc = middleware.Metrics(counter, latency, svc)

	hs := &http.Server{
		Addr:    cfg.HTTPAddress,
		Handler: api.MakeHandler(svc, logger, cfg.InstanceID),
	}

	g.Go(func() error {
		logger.InfoContext(ctx, svcName+" service http server listening", slog.String("address", cfg.HTTPAddress))
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer scancel()

		return hs.Shutdown(sctx)
	})

	g.Go(func() error {
		final, err := svc.Run(ctx, initial, runCfg.Federation.Endpoints)
		if err != nil {
			logger.ErrorContext(ctx, "federated run failed", slog.Any("error", err))

			return nil
		}
		logger.InfoContext(ctx, "federated run complete", slog.Uint64("version", final.Version))

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error(fmt.Sprintf("%s service exited with error: %s", svcName, err))
	}
	cancel()

	return nil
}

func loadModel(path string) (model.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Model{}, err
	}

	var m model.Model
	if err := json.Unmarshal(data, &m); err != nil {
		return model.Model{}, err
	}
	if err := m.Params.Validate(); err != nil {
		return model.Model{}, err
	}

	return m, nil
}
