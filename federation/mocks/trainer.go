package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/flxlabs/flotilla/federation"
	"github.com/flxlabs/flotilla/model"
)

// MockTrainer is a testify mock of the Trainer interface.
type MockTrainer struct {
	mock.Mock
}

func (m *MockTrainer) Train(ctx context.Context, job federation.Job) (federation.Result, error) {
	args := m.Called(ctx, job)

	return args.Get(0).(federation.Result), args.Error(1)
}

// MockEvaluator is a testify mock of the Evaluator interface.
type MockEvaluator struct {
	mock.Mock
}

func (m *MockEvaluator) Evaluate(ctx context.Context, mdl model.Model) error {
	args := m.Called(ctx, mdl)

	return args.Error(0)
}
