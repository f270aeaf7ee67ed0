// Package aggregate merges per-endpoint parameter sets into a single global
// parameter set, either uniformly or weighted by each endpoint's share of the
// training samples.
package aggregate

import (
	"fmt"
	"math"
	"slices"

	"github.com/flxlabs/flotilla/model"
)

// Mode selects how endpoint contributions are merged. The set is closed:
// anything outside it is rejected before any remote work is dispatched.
type Mode string

const (
	ModeAverage         Mode = "average"
	ModeWeightedAverage Mode = "weighted_average"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAverage, ModeWeightedAverage:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: %q, available modes: [%s, %s]", ErrUnsupportedMode, s, ModeAverage, ModeWeightedAverage)
	}
}

func (m Mode) Validate() error {
	_, err := ParseMode(string(m))

	return err
}

// EdgeWeights normalizes raw sample counts into averaging weights, preserving
// input order. The returned fractions sum to 1.
func EdgeWeights(sampleCounts []int) ([]float64, error) {
	if len(sampleCounts) == 0 {
		return nil, ErrNoResults
	}

	total := 0
	for i, c := range sampleCounts {
		if c < 0 {
			return nil, fmt.Errorf("%w: endpoint %d reported %d", ErrNegativeSamples, i, c)
		}
		total += c
	}
	if total == 0 {
		return nil, ErrZeroSampleTotal
	}

	fractions := make([]float64, len(sampleCounts))
	for i, c := range sampleCounts {
		fractions[i] = float64(c) / float64(total)
	}

	return fractions, nil
}

// Average computes the uniform elementwise mean of the given parameter sets.
// All sets must carry the same tensor shapes in the same order.
func Average(sets []model.Parameters) (model.Parameters, error) {
	if len(sets) == 0 {
		return nil, ErrNoResults
	}

	uniform := make([]float64, len(sets))
	for i := range uniform {
		uniform[i] = 1 / float64(len(sets))
	}

	return WeightedAverage(sets, uniform)
}

// WeightedAverage computes the elementwise mean of the parameter sets with
// weights[i] scaling set i's contribution. Weights must already sum to 1.
func WeightedAverage(sets []model.Parameters, weights []float64) (model.Parameters, error) {
	if len(sets) == 0 {
		return nil, ErrNoResults
	}
	if len(weights) != len(sets) {
		return nil, fmt.Errorf("%w: %d weights for %d parameter sets", ErrWeightMismatch, len(weights), len(sets))
	}

	sum := 0.0
	for _, w := range weights {
		if w < 0 {
			return nil, fmt.Errorf("%w: weight %v", ErrWeightMismatch, w)
		}
		sum += w
	}
	if math.Abs(sum-1) > weightSumTolerance {
		return nil, fmt.Errorf("%w: weights sum to %v", ErrWeightMismatch, sum)
	}

	ref := sets[0]
	for i, set := range sets[1:] {
		if err := ref.ShapesMatch(set); err != nil {
			return nil, fmt.Errorf("parameter set %d: %w", i+1, err)
		}
	}

	merged := make(model.Parameters, len(ref))
	for ti := range ref {
		out := model.Tensor{
			Shape: slices.Clone(ref[ti].Shape),
			Data:  make([]float64, len(ref[ti].Data)),
		}
		for si, set := range sets {
			w := weights[si]
			for di, v := range set[ti].Data {
				out.Data[di] += v * w
			}
		}
		merged[ti] = out
	}

	return merged, nil
}

const weightSumTolerance = 1e-9
