package api

import (
	apiutil "github.com/absmach/supermq/api/http/util"
)

type statusReq struct{}

func (r statusReq) validate() error {
	return nil
}

type modelReq struct {
	version uint64
	set     bool
}

func (r modelReq) validate() error {
	if !r.set {
		return apiutil.ErrMissingID
	}

	return nil
}

type listModelsReq struct{}

func (r listModelsReq) validate() error {
	return nil
}
