package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"reportprint/domain/contracts"
	"reportprint/domain/events"
	"reportprint/domain/printjobs"
	"reportprint/infrastructure/scanner"
	"reportprint/logging"
	"reportprint/platform/dispatch"
)

// JobCollector builds job lists from the report folder tree.
type JobCollector interface {
	Collect(root string, date time.Time) (scanner.Result, error)
}

// PrintSettings are the per-installation values a run needs.
type PrintSettings struct {
	PrinterName  string
	ParentFolder string
	Dispatch     dispatch.Config
}

// PrintServiceDeps groups the collaborators of PrintServiceImpl.
type PrintServiceDeps struct {
	Collector JobCollector
	SubmitPDF contracts.Submitter
	SubmitDoc contracts.Submitter
	Spool     dispatch.SpoolMonitor
	Runs      contracts.RunRepository
	Events    events.RunEventPublisher
}

// PrintServiceImpl implements PrintService. At most one run is active at a time.
type PrintServiceImpl struct {
	deps     PrintServiceDeps
	settings PrintSettings
	logger   *logging.Logger

	mu      sync.RWMutex
	active  *dispatch.Runner
	current *printjobs.PrintRun
	last    *dispatch.Runner
}

var _ PrintService = (*PrintServiceImpl)(nil)

// NewPrintService creates a print service.
func NewPrintService(deps PrintServiceDeps, settings PrintSettings) *PrintServiceImpl {
	return &PrintServiceImpl{
		deps:     deps,
		settings: settings,
		logger:   logging.Default().WithComponent("print_service"),
	}
}

// Prepare scans the parent folder and applies the selection.
func (s *PrintServiceImpl) Prepare(ctx context.Context, date time.Time, selection scanner.SelectOptions) (*Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := s.deps.Collector.Collect(s.settings.ParentFolder, date)
	if err != nil {
		return nil, fmt.Errorf("failed to collect print targets: %w", err)
	}

	jobs, err := scanner.Select(result.Jobs, selection)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Batch prepared",
		"target_date", date.Format(scanner.DateLayout),
		"scanned", len(result.Jobs),
		"selected", len(jobs),
		"missing_companions", len(result.MissingCompanions))

	return &Batch{
		TargetDate:        date,
		Jobs:              jobs,
		MissingCompanions: result.MissingCompanions,
	}, nil
}

// Execute dispatches the batch and blocks until the completion detector
// confirms the spooler drained, or ctx ends.
func (s *PrintServiceImpl) Execute(ctx context.Context, batch *Batch, trigger printjobs.Trigger) (*printjobs.PrintRun, printjobs.RunOutcome, error) {
	run := &printjobs.PrintRun{
		ID:         uuid.NewString(),
		Printer:    s.settings.PrinterName,
		TargetDate: batch.TargetDate,
		Trigger:    trigger,
		Status:     printjobs.RunStatusRunning,
		Total:      len(batch.Jobs),
		StartedAt:  time.Now(),
	}
	runLogger := s.logger.WithRun(run.ID)

	runner, err := dispatch.NewRunner(s.deps.SubmitPDF, s.deps.SubmitDoc, s.settings.PrinterName, s.settings.Dispatch,
		dispatch.WithSpoolMonitor(s.deps.Spool),
		dispatch.WithLogger(runLogger),
		dispatch.WithEventSink(func(ev printjobs.ProgressEvent) {
			s.publishProgress(run.ID, ev)
		}),
	)
	if err != nil {
		return nil, printjobs.RunOutcome{}, fmt.Errorf("cannot start print run: %w", err)
	}

	if err := s.claim(runner, run); err != nil {
		return nil, printjobs.RunOutcome{}, err
	}
	defer s.release(runner)

	if s.deps.Runs != nil {
		if err := s.deps.Runs.CreateRun(ctx, run); err != nil {
			runLogger.Warn("Failed to record run start", "error", err)
		}
	}
	if s.deps.Events != nil {
		s.deps.Events.PublishRunStarted(events.RunStartedEvent{
			Run:       run,
			Jobs:      batch.Jobs.Clone(),
			Timestamp: time.Now(),
		})
	}

	outcome, runErr := runner.Run(ctx, batch.Jobs)

	s.mu.Lock()
	if err := run.Finish(outcome); err != nil {
		runLogger.Error("Failed to finish run", "error", err)
	}
	finished := *run
	s.mu.Unlock()

	if s.deps.Runs != nil {
		// The caller's context may already be cancelled; history must still be written.
		if err := s.deps.Runs.FinishRun(context.WithoutCancel(ctx), &finished); err != nil {
			runLogger.Warn("Failed to record run finish", "error", err)
		}
	}

	if s.deps.Events != nil {
		finishedEvent := events.RunFinishedEvent{
			Run:       &finished,
			Outcome:   outcome,
			Timestamp: time.Now(),
		}
		if runErr != nil {
			finishedEvent.Error = runErr.Error()
		}
		s.deps.Events.PublishRunFinished(finishedEvent)
	}

	runLogger.Info("Print run finished", "summary", finished.Summary())
	return &finished, outcome, runErr
}

func (s *PrintServiceImpl) claim(runner *dispatch.Runner, run *printjobs.PrintRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		return contracts.ErrRunActive
	}
	s.active = runner
	s.current = run
	return nil
}

func (s *PrintServiceImpl) release(runner *dispatch.Runner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == runner {
		s.active = nil
		s.last = runner
	}
}

func (s *PrintServiceImpl) publishProgress(runID string, ev printjobs.ProgressEvent) {
	if s.deps.Events == nil {
		return
	}
	s.deps.Events.PublishRunProgress(events.RunProgressEvent{
		RunID:     runID,
		Event:     ev,
		Timestamp: time.Now(),
	})
}

// Cancel requests cooperative cancellation of the active run.
func (s *PrintServiceImpl) Cancel() error {
	s.mu.RLock()
	runner := s.active
	s.mu.RUnlock()

	if runner == nil {
		return ErrNoActiveRun
	}
	runner.Cancel()
	return nil
}

// Current returns the active run, or the last finished one.
func (s *PrintServiceImpl) Current() (RunView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runner := s.active
	active := runner != nil
	if runner == nil {
		runner = s.last
	}
	if runner == nil || s.current == nil {
		return RunView{}, false
	}

	run := *s.current
	return RunView{
		Run:      &run,
		Progress: runner.Progress(),
		Active:   active,
	}, true
}

// History lists recent runs, newest first.
func (s *PrintServiceImpl) History(ctx context.Context, limit int) ([]*printjobs.PrintRun, error) {
	if s.deps.Runs == nil {
		return nil, nil
	}
	return s.deps.Runs.ListRuns(ctx, limit)
}
