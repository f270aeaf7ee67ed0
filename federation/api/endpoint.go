package api

import (
	"context"
	"errors"

	apiutil "github.com/absmach/supermq/api/http/util"
	"github.com/go-kit/kit/endpoint"

	"github.com/flxlabs/flotilla/federation"
	pkgerrors "github.com/flxlabs/flotilla/pkg/errors"
)

func statusEndpoint(svc federation.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(statusReq)
		if !ok {
			return statusResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return statusResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		status, err := svc.Status(ctx)
		if err != nil {
			return statusResponse{}, err
		}

		return statusResponse{
			RoundStatus: status,
		}, nil
	}
}

func getModelEndpoint(svc federation.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(modelReq)
		if !ok {
			return modelResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return modelResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		m, err := svc.Model(ctx, req.version)
		if err != nil {
			return modelResponse{}, err
		}

		return modelResponse{
			Model: m,
		}, nil
	}
}

func listModelsEndpoint(svc federation.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(listModelsReq)
		if !ok {
			return listModelsResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return listModelsResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		versions, err := svc.ListModels(ctx)
		if err != nil {
			return listModelsResponse{}, err
		}

		return listModelsResponse{
			Versions: versions,
		}, nil
	}
}
