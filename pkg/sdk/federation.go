package sdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

const (
	statusEndpoint = "/rounds/status"
	modelsEndpoint = "/models"
)

type RoundStatus struct {
	RunName      string `json:"run_name"`
	Round        int    `json:"round"`
	Rounds       int    `json:"rounds"`
	ModelVersion uint64 `json:"model_version"`
	Completed    bool   `json:"completed"`
	Failed       bool   `json:"failed"`
	Error        string `json:"error,omitempty"`
}

type Tensor struct {
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

type Model struct {
	Architecture []byte   `json:"architecture"`
	Params       []Tensor `json:"params"`
	Version      uint64   `json:"version"`
}

func (sdk *flotillaSDK) Status() (RoundStatus, error) {
	url := sdk.coordinatorURL + statusEndpoint

	body, err := sdk.processRequest(http.MethodGet, url, nil, http.StatusOK)
	if err != nil {
		return RoundStatus{}, err
	}

	var status RoundStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return RoundStatus{}, err
	}

	return status, nil
}

func (sdk *flotillaSDK) GetModel(version uint64) (Model, error) {
	url := fmt.Sprintf("%s%s/%d", sdk.coordinatorURL, modelsEndpoint, version)

	body, err := sdk.processRequest(http.MethodGet, url, nil, http.StatusOK)
	if err != nil {
		return Model{}, err
	}

	var m Model
	if err := json.Unmarshal(body, &m); err != nil {
		return Model{}, err
	}

	return m, nil
}

func (sdk *flotillaSDK) ListModels() ([]uint64, error) {
	url := sdk.coordinatorURL + modelsEndpoint

	body, err := sdk.processRequest(http.MethodGet, url, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var page struct {
		Versions []uint64 `json:"versions"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, err
	}

	return page.Versions, nil
}
