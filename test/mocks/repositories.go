package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"reportprint/domain/printjobs"
)

// MockRunRepository implements RunRepository for testing
type MockRunRepository struct {
	mock.Mock
}

func (m *MockRunRepository) CreateRun(ctx context.Context, run *printjobs.PrintRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunRepository) RecordItem(ctx context.Context, item printjobs.RunItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockRunRepository) FinishRun(ctx context.Context, run *printjobs.PrintRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunRepository) GetRun(ctx context.Context, runID string) (*printjobs.PrintRun, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*printjobs.PrintRun), args.Error(1)
}

func (m *MockRunRepository) ListRuns(ctx context.Context, limit int) ([]*printjobs.PrintRun, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*printjobs.PrintRun), args.Error(1)
}

func (m *MockRunRepository) GetRunItems(ctx context.Context, runID string) ([]printjobs.RunItem, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]printjobs.RunItem), args.Error(1)
}
