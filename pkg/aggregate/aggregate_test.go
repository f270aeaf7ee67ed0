package aggregate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flxlabs/flotilla/model"
	"github.com/flxlabs/flotilla/pkg/aggregate"
)

func TestParseMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected aggregate.Mode
		err      error
	}{
		{
			name:     "average",
			input:    "average",
			expected: aggregate.ModeAverage,
		},
		{
			name:     "weighted average",
			input:    "weighted_average",
			expected: aggregate.ModeWeightedAverage,
		},
		{
			name:  "unknown mode",
			input: "median",
			err:   aggregate.ErrUnsupportedMode,
		},
		{
			name:  "empty mode",
			input: "",
			err:   aggregate.ErrUnsupportedMode,
		},
		{
			name:  "case sensitive",
			input: "Average",
			err:   aggregate.ErrUnsupportedMode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, err := aggregate.ParseMode(tt.input)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, mode)
		})
	}
}

func TestEdgeWeights(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		counts   []int
		expected []float64
		err      error
	}{
		{
			name:     "single endpoint",
			counts:   []int{42},
			expected: []float64{1},
		},
		{
			name:     "proportional split",
			counts:   []int{1, 3},
			expected: []float64{0.25, 0.75},
		},
		{
			name:     "order preserved",
			counts:   []int{300, 100, 100},
			expected: []float64{0.6, 0.2, 0.2},
		},
		{
			name:     "zero count endpoint keeps zero weight",
			counts:   []int{0, 10},
			expected: []float64{0, 1},
		},
		{
			name:   "empty input",
			counts: []int{},
			err:    aggregate.ErrNoResults,
		},
		{
			name:   "all zero counts",
			counts: []int{0, 0, 0},
			err:    aggregate.ErrZeroSampleTotal,
		},
		{
			name:   "negative count",
			counts: []int{10, -1},
			err:    aggregate.ErrNegativeSamples,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			weights, err := aggregate.EdgeWeights(tt.counts)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, weights)

			sum := 0.0
			for _, w := range weights {
				sum += w
			}
			assert.InDelta(t, 1, sum, 1e-12)
		})
	}
}

func params(values ...float64) model.Parameters {
	return model.Parameters{
		{Shape: []int{len(values)}, Data: values},
	}
}

func TestAverage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		sets     []model.Parameters
		expected model.Parameters
		err      error
	}{
		{
			name:     "two endpoints",
			sets:     []model.Parameters{params(1), params(3)},
			expected: params(2),
		},
		{
			name:     "identity for single set",
			sets:     []model.Parameters{params(1, 2, 3)},
			expected: params(1, 2, 3),
		},
		{
			name: "elementwise",
			sets: []model.Parameters{
				params(0, 10, -4),
				params(2, 20, 4),
			},
			expected: params(1, 15, 0),
		},
		{
			name: "empty input",
			sets: nil,
			err:  aggregate.ErrNoResults,
		},
		{
			name: "shape mismatch",
			sets: []model.Parameters{params(1, 2), params(1, 2, 3)},
			err:  model.ErrShapeMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged, err := aggregate.Average(tt.sets)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)

				return
			}
			require.NoError(t, err)
			require.Len(t, merged, len(tt.expected))
			for i := range merged {
				assert.Equal(t, tt.expected[i].Shape, merged[i].Shape)
				for j := range merged[i].Data {
					assert.InDelta(t, tt.expected[i].Data[j], merged[i].Data[j], 1e-12)
				}
			}
		})
	}
}

func TestWeightedAverage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		sets     []model.Parameters
		weights  []float64
		expected model.Parameters
		err      error
	}{
		{
			name:     "sample proportional merge",
			sets:     []model.Parameters{params(1), params(3)},
			weights:  []float64{0.25, 0.75},
			expected: params(2.5),
		},
		{
			name:     "full weight on one endpoint",
			sets:     []model.Parameters{params(1, 1), params(5, 7)},
			weights:  []float64{0, 1},
			expected: params(5, 7),
		},
		{
			name:    "weight count mismatch",
			sets:    []model.Parameters{params(1), params(3)},
			weights: []float64{1},
			err:     aggregate.ErrWeightMismatch,
		},
		{
			name:    "weights do not sum to one",
			sets:    []model.Parameters{params(1), params(3)},
			weights: []float64{0.5, 0.6},
			err:     aggregate.ErrWeightMismatch,
		},
		{
			name:    "negative weight",
			sets:    []model.Parameters{params(1), params(3)},
			weights: []float64{1.5, -0.5},
			err:     aggregate.ErrWeightMismatch,
		},
		{
			name:    "empty input",
			sets:    nil,
			weights: nil,
			err:     aggregate.ErrNoResults,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged, err := aggregate.WeightedAverage(tt.sets, tt.weights)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)

				return
			}
			require.NoError(t, err)
			require.Len(t, merged, len(tt.expected))
			for i := range merged {
				assert.Equal(t, tt.expected[i].Shape, merged[i].Shape)
				for j := range merged[i].Data {
					assert.InDelta(t, tt.expected[i].Data[j], merged[i].Data[j], 1e-12)
				}
			}
		})
	}
}

func TestWeightedAverageMultiTensor(t *testing.T) {
	t.Parallel()

	sets := []model.Parameters{
		{
			{Shape: []int{2, 2}, Data: []float64{1, 2, 3, 4}},
			{Shape: []int{1}, Data: []float64{10}},
		},
		{
			{Shape: []int{2, 2}, Data: []float64{5, 6, 7, 8}},
			{Shape: []int{1}, Data: []float64{30}},
		},
	}

	merged, err := aggregate.WeightedAverage(sets, []float64{0.5, 0.5})
	require.NoError(t, err)
	require.Len(t, merged, 2)
	assert.Equal(t, []int{2, 2}, merged[0].Shape)
	assert.Equal(t, []float64{3, 4, 5, 6}, merged[0].Data)
	assert.Equal(t, []float64{20}, merged[1].Data)
}

func TestWeightedAverageDoesNotMutateInputs(t *testing.T) {
	t.Parallel()

	a := params(1, 2)
	b := params(3, 4)

	_, err := aggregate.WeightedAverage([]model.Parameters{a, b}, []float64{0.5, 0.5})
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 2}, a[0].Data)
	assert.Equal(t, []float64{3, 4}, b[0].Data)
}
