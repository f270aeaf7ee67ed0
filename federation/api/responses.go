package api

import (
	"net/http"

	"github.com/absmach/supermq"

	"github.com/flxlabs/flotilla/federation"
	"github.com/flxlabs/flotilla/model"
)

var (
	_ supermq.Response = (*statusResponse)(nil)
	_ supermq.Response = (*modelResponse)(nil)
	_ supermq.Response = (*listModelsResponse)(nil)
)

type statusResponse struct {
	federation.RoundStatus
}

func (r statusResponse) Code() int {
	return http.StatusOK
}

func (r statusResponse) Headers() map[string]string {
	return map[string]string{}
}

func (r statusResponse) Empty() bool {
	return false
}

type modelResponse struct {
	model.Model
}

func (r modelResponse) Code() int {
	return http.StatusOK
}

func (r modelResponse) Headers() map[string]string {
	return map[string]string{}
}

func (r modelResponse) Empty() bool {
	return false
}

type listModelsResponse struct {
	Versions []uint64 `json:"versions"`
}

func (r listModelsResponse) Code() int {
	return http.StatusOK
}

func (r listModelsResponse) Headers() map[string]string {
	return map[string]string{}
}

func (r listModelsResponse) Empty() bool {
	return false
}
