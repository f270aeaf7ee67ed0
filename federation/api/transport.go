package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	apiutil "github.com/absmach/supermq/api/http/util"
	"github.com/go-chi/chi/v5"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/flxlabs/flotilla/federation"
	"github.com/flxlabs/flotilla/pkg/api"
)

func MakeHandler(svc federation.Service, logger *slog.Logger, instanceID string) http.Handler {
	mux := chi.NewRouter()

	opts := []kithttp.ServerOption{
		kithttp.ServerErrorEncoder(apiutil.LoggingErrorEncoder(logger, api.EncodeError)),
	}

	mux.Route("/rounds", func(r chi.Router) {
		r.Get("/status", otelhttp.NewHandler(kithttp.NewServer(
			statusEndpoint(svc),
			decodeStatusReq,
			api.EncodeResponse,
			opts...,
		), "round-status").ServeHTTP)
	})

	mux.Route("/models", func(r chi.Router) {
		r.Get("/", otelhttp.NewHandler(kithttp.NewServer(
			listModelsEndpoint(svc),
			decodeListModelsReq,
			api.EncodeResponse,
			opts...,
		), "list-models").ServeHTTP)
		r.Get("/{version}", otelhttp.NewHandler(kithttp.NewServer(
			getModelEndpoint(svc),
			decodeModelReq,
			api.EncodeResponse,
			opts...,
		), "get-model").ServeHTTP)
	})

	mux.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", api.ContentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","instance_id":"` + instanceID + `"}`))
	})
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

func decodeStatusReq(_ context.Context, _ *http.Request) (any, error) {
	return statusReq{}, nil
}

func decodeListModelsReq(_ context.Context, _ *http.Request) (any, error) {
	return listModelsReq{}, nil
}

func decodeModelReq(_ context.Context, r *http.Request) (any, error) {
	version, err := strconv.ParseUint(chi.URLParam(r, "version"), 10, 64)
	if err != nil {
		return modelReq{}, errors.Join(apiutil.ErrValidation, err)
	}

	return modelReq{
		version: version,
		set:     true,
	}, nil
}
