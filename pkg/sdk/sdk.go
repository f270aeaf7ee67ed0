// Package sdk is a thin HTTP client for the coordinator's introspection API.
package sdk

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
)

const CTJSON string = "application/json"

type SDK interface {
	// Status reports progress of the current or most recent federated run.
	//
	// example:
	//  status, _ := sdk.Status()
	//  fmt.Println(status)
	Status() (RoundStatus, error)

	// GetModel gets a committed global model by version.
	//
	// example:
	//  m, _ := sdk.GetModel(3)
	//  fmt.Println(m.Version)
	GetModel(version uint64) (Model, error)

	// ListModels lists the committed model versions.
	//
	// example:
	//  versions, _ := sdk.ListModels()
	//  fmt.Println(versions)
	ListModels() ([]uint64, error)
}

type flotillaSDK struct {
	coordinatorURL string
	client         *http.Client
}

type Config struct {
	CoordinatorURL  string
	TLSVerification bool
}

func NewSDK(cfg Config) SDK {
	return &flotillaSDK{
		coordinatorURL: cfg.CoordinatorURL,
		client: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: !cfg.TLSVerification,
				},
			},
		},
	}
}

func (sdk *flotillaSDK) processRequest(method, reqURL string, data []byte, expectedRespCode int) ([]byte, error) {
	req, err := http.NewRequest(method, reqURL, bytes.NewReader(data))
	if err != nil {
		return []byte{}, err
	}

	req.Header.Add("Content-Type", CTJSON)

	resp, err := sdk.client.Do(req)
	if err != nil {
		return []byte{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return []byte{}, err
	}

	if resp.StatusCode != expectedRespCode {
		return []byte{}, fmt.Errorf("unexpected response code: %d", resp.StatusCode)
	}

	return body, nil
}
