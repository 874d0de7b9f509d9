package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"reportprint/domain/contracts"
	"reportprint/domain/printjobs"
	"reportprint/infrastructure/scanner"
	"reportprint/logging"
)

// BatchRunner is the part of PrintService the scheduler drives.
type BatchRunner interface {
	Prepare(ctx context.Context, date time.Time, selection scanner.SelectOptions) (*Batch, error)
	Execute(ctx context.Context, batch *Batch, trigger printjobs.Trigger) (*printjobs.PrintRun, printjobs.RunOutcome, error)
}

// Scheduler prints today's reports on a cron schedule.
type Scheduler struct {
	runner    BatchRunner
	selection scanner.SelectOptions
	cron      *cron.Cron
	now       func() time.Time
	logger    *logging.Logger
	ctx       context.Context
}

// NewScheduler parses spec, a six-field cron expression with seconds.
func NewScheduler(ctx context.Context, runner BatchRunner, spec string, selection scanner.SelectOptions) (*Scheduler, error) {
	logger := logging.Default().WithComponent("scheduler")
	cronLog := cronLogger{logger: logger}

	s := &Scheduler{
		runner:    runner,
		selection: selection,
		now:       time.Now,
		logger:    logger,
		ctx:       ctx,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
	}

	if _, err := s.cron.AddFunc(spec, func() { s.RunOnce(s.ctx) }); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins firing in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	for _, entry := range s.cron.Entries() {
		s.logger.Info("Schedule armed", "next", entry.Next.Format(time.RFC3339))
	}
}

// Stop stops firing and returns a context that is done once any running batch returns.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// RunOnce prints today's batch. A run already in progress makes this a no-op.
func (s *Scheduler) RunOnce(ctx context.Context) {
	today := s.now()
	date := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())

	batch, err := s.runner.Prepare(ctx, date, s.selection)
	if err != nil {
		s.logger.Error("Scheduled scan failed", "target_date", date.Format(scanner.DateLayout), "error", err)
		return
	}
	if len(batch.Jobs) == 0 {
		s.logger.Info("Nothing to print", "target_date", date.Format(scanner.DateLayout))
		return
	}

	run, outcome, err := s.runner.Execute(ctx, batch, printjobs.TriggerScheduled)
	switch {
	case errors.Is(err, contracts.ErrRunActive):
		s.logger.Warn("Skipping scheduled run, another run is active")
	case err != nil:
		s.logger.Error("Scheduled run failed", "error", err, "outcome", outcome.String())
	default:
		s.logger.Info("Scheduled run finished", "run_id", run.ID, "outcome", outcome.String())
	}
}

// cronLogger adapts the application logger to cron.Logger.
type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
