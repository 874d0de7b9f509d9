package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"reportprint/domain/printjobs"
	"reportprint/infrastructure/scanner"
)

// MockSubmitter implements contracts.Submitter for testing
type MockSubmitter struct {
	mock.Mock
}

func (m *MockSubmitter) Submit(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

// MockSpoolStrategy implements spool.Strategy for testing
type MockSpoolStrategy struct {
	mock.Mock
}

func (m *MockSpoolStrategy) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockSpoolStrategy) PendingCount(ctx context.Context, printer string) (int, error) {
	args := m.Called(ctx, printer)
	return args.Int(0), args.Error(1)
}

// MockJobCollector implements application.JobCollector for testing
type MockJobCollector struct {
	mock.Mock
}

func (m *MockJobCollector) Collect(root string, date time.Time) (scanner.Result, error) {
	args := m.Called(root, date)
	return args.Get(0).(scanner.Result), args.Error(1)
}

// MockSpoolMonitor implements dispatch.SpoolMonitor for testing
type MockSpoolMonitor struct {
	mock.Mock
}

func (m *MockSpoolMonitor) PendingCount(ctx context.Context, printer string) printjobs.SpoolState {
	args := m.Called(ctx, printer)
	return args.Get(0).(printjobs.SpoolState)
}

func (m *MockSpoolMonitor) IsEmpty(ctx context.Context, printer string) bool {
	args := m.Called(ctx, printer)
	return args.Bool(0)
}
