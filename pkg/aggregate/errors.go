package aggregate

import "errors"

var (
	ErrUnsupportedMode = errors.New("unsupported aggregation mode")
	ErrNoResults       = errors.New("no results to aggregate")
	ErrNegativeSamples = errors.New("negative sample count")
	ErrZeroSampleTotal = errors.New("total sample count is zero")
	ErrWeightMismatch  = errors.New("invalid averaging weights")
)
