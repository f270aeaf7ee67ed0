// Package model holds the global model value type exchanged between the
// coordinator and remote training endpoints.
package model

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrShapeSize     = errors.New("tensor data does not match its shape")
	ErrEmptyParams   = errors.New("parameter set is empty")
	ErrShapeMismatch = errors.New("parameter shapes do not match")
)

// Tensor is a dense, row-major numeric array.
type Tensor struct {
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

func (t Tensor) NumElements() int {
	if len(t.Shape) == 0 {
		return 0
	}
	n := 1
	for _, d := range t.Shape {
		n *= d
	}

	return n
}

func (t Tensor) SameShape(o Tensor) bool {
	return slices.Equal(t.Shape, o.Shape)
}

func (t Tensor) Validate() error {
	for _, d := range t.Shape {
		if d <= 0 {
			return fmt.Errorf("%w: dimension %d", ErrShapeSize, d)
		}
	}
	if t.NumElements() != len(t.Data) {
		return fmt.Errorf("%w: shape %v holds %d elements, data has %d", ErrShapeSize, t.Shape, t.NumElements(), len(t.Data))
	}

	return nil
}

func (t Tensor) Clone() Tensor {
	return Tensor{
		Shape: slices.Clone(t.Shape),
		Data:  slices.Clone(t.Data),
	}
}

// Parameters is an ordered sequence of tensors. Order is significant: tensor i
// of one parameter set is always averaged against tensor i of another.
type Parameters []Tensor

func (p Parameters) Clone() Parameters {
	if p == nil {
		return nil
	}
	out := make(Parameters, len(p))
	for i := range p {
		out[i] = p[i].Clone()
	}

	return out
}

func (p Parameters) Validate() error {
	if len(p) == 0 {
		return ErrEmptyParams
	}
	for i := range p {
		if err := p[i].Validate(); err != nil {
			return fmt.Errorf("tensor %d: %w", i, err)
		}
	}

	return nil
}

// ShapesMatch reports whether o has the same tensor count, order and shapes as p.
func (p Parameters) ShapesMatch(o Parameters) error {
	if len(p) != len(o) {
		return fmt.Errorf("%w: %d tensors against %d", ErrShapeMismatch, len(o), len(p))
	}
	for i := range p {
		if !p[i].SameShape(o[i]) {
			return fmt.Errorf("%w: tensor %d has shape %v, want %v", ErrShapeMismatch, i, o[i].Shape, p[i].Shape)
		}
	}

	return nil
}

// Model is the global model: an opaque architecture descriptor plus the
// parameter tensors trained against it. Model is a value; Commit produces a
// new value rather than mutating in place, so in-flight jobs never alias the
// coordinator's state.
type Model struct {
	Architecture []byte     `json:"architecture"`
	Params       Parameters `json:"params"`
	Version      uint64     `json:"version"`
}

func New(architecture []byte, params Parameters) (Model, error) {
	if err := params.Validate(); err != nil {
		return Model{}, err
	}

	return Model{
		Architecture: slices.Clone(architecture),
		Params:       params.Clone(),
	}, nil
}

// Snapshot returns a deep copy of the parameter set, safe to hand to a
// concurrently executing training job.
func (m Model) Snapshot() Parameters {
	return m.Params.Clone()
}

// Commit returns the successor model carrying params, with the version
// advanced and the architecture unchanged. params must match the current
// tensor shapes.
func (m Model) Commit(params Parameters) (Model, error) {
	if err := m.Params.ShapesMatch(params); err != nil {
		return Model{}, err
	}

	return Model{
		Architecture: m.Architecture,
		Params:       params.Clone(),
		Version:      m.Version + 1,
	}, nil
}
