package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"reportprint/domain/contracts"
	"reportprint/domain/printjobs"
	"reportprint/infrastructure/scanner"
)

type MockBatchRunner struct {
	mock.Mock
}

func (m *MockBatchRunner) Prepare(ctx context.Context, date time.Time, selection scanner.SelectOptions) (*Batch, error) {
	args := m.Called(ctx, date, selection)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Batch), args.Error(1)
}

func (m *MockBatchRunner) Execute(ctx context.Context, batch *Batch, trigger printjobs.Trigger) (*printjobs.PrintRun, printjobs.RunOutcome, error) {
	args := m.Called(ctx, batch, trigger)
	var run *printjobs.PrintRun
	if args.Get(0) != nil {
		run = args.Get(0).(*printjobs.PrintRun)
	}
	return run, args.Get(1).(printjobs.RunOutcome), args.Error(2)
}

func newTestScheduler(t *testing.T, runner BatchRunner, now time.Time) *Scheduler {
	t.Helper()
	s, err := NewScheduler(context.Background(), runner, "0 30 7 * * *", scanner.SelectOptions{})
	require.NoError(t, err)
	s.now = func() time.Time { return now }
	return s
}

func TestScheduler_RunOnce_PrintsTodaysBatch(t *testing.T) {
	// Arrange
	runner := &MockBatchRunner{}
	now := time.Date(2026, 10, 19, 7, 30, 0, 0, time.Local)
	midnight := time.Date(2026, 10, 19, 0, 0, 0, 0, time.Local)
	batch := testBatch()

	runner.On("Prepare", mock.Anything, midnight, scanner.SelectOptions{}).Return(batch, nil)
	runner.On("Execute", mock.Anything, batch, printjobs.TriggerScheduled).
		Return(&printjobs.PrintRun{ID: "sched-1"}, printjobs.Completed(2, 0), nil)

	// Act
	newTestScheduler(t, runner, now).RunOnce(context.Background())

	// Assert
	runner.AssertExpectations(t)
}

func TestScheduler_RunOnce_EmptyBatchSkipsExecute(t *testing.T) {
	// Arrange
	runner := &MockBatchRunner{}
	runner.On("Prepare", mock.Anything, mock.Anything, mock.Anything).Return(&Batch{}, nil)

	// Act
	newTestScheduler(t, runner, time.Now()).RunOnce(context.Background())

	// Assert
	runner.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
}

func TestScheduler_RunOnce_ToleratesFailures(t *testing.T) {
	tests := []struct {
		name       string
		prepareErr error
		executeErr error
	}{
		{"scan fails", errors.New("folder missing"), nil},
		{"run active", nil, contracts.ErrRunActive},
		{"run fails", nil, errors.New("no printer")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &MockBatchRunner{}
			if tt.prepareErr != nil {
				runner.On("Prepare", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.prepareErr)
			} else {
				runner.On("Prepare", mock.Anything, mock.Anything, mock.Anything).Return(testBatch(), nil)
				runner.On("Execute", mock.Anything, mock.Anything, printjobs.TriggerScheduled).
					Return(nil, printjobs.RunOutcome{}, tt.executeErr)
			}

			assert.NotPanics(t, func() {
				newTestScheduler(t, runner, time.Now()).RunOnce(context.Background())
			})
			runner.AssertExpectations(t)
		})
	}
}

func TestNewScheduler_InvalidSpec(t *testing.T) {
	_, err := NewScheduler(context.Background(), &MockBatchRunner{}, "every morning", scanner.SelectOptions{})
	assert.ErrorContains(t, err, "invalid schedule")
}

func TestScheduler_StartStop(t *testing.T) {
	s := newTestScheduler(t, &MockBatchRunner{}, time.Now())

	s.Start()
	stopped := s.Stop()

	select {
	case <-stopped.Done():
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
