package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"reportprint/domain/contracts"
	"reportprint/domain/printjobs"
	"reportprint/logging"
	"reportprint/platform/spool"
)

var (
	ErrNoPrinter        = errors.New("no printer configured")
	ErrMissingSubmitter = errors.New("submitter not configured")
	ErrAlreadyRun       = errors.New("runner has already been used")
	ErrSubmitterSetup   = errors.New("submitter is not usable")
)

// EventSink receives every worker event, in order, on the foreground goroutine.
type EventSink func(printjobs.ProgressEvent)

// Option configures a Runner.
type Option func(*Runner)

func WithSpoolMonitor(m SpoolMonitor) Option {
	return func(r *Runner) { r.spool = m }
}

func WithEventSink(sink EventSink) Option {
	return func(r *Runner) { r.sink = sink }
}

func WithLogger(logger *logging.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// Runner executes a single dispatch run. It is not reusable.
type Runner struct {
	submitA contracts.Submitter
	submitB contracts.Submitter
	printer string
	cfg     Config

	spool    SpoolMonitor
	sink     EventSink
	logger   *logging.Logger
	cancel   *CancellationFlag
	reporter *ProgressReporter
	started  atomic.Bool
}

// NewRunner validates its arguments; nothing is submitted until Run.
func NewRunner(submitA, submitB contracts.Submitter, printer string, cfg Config, opts ...Option) (*Runner, error) {
	if submitA == nil {
		return nil, fmt.Errorf("%w: document A", ErrMissingSubmitter)
	}
	if submitB == nil {
		return nil, fmt.Errorf("%w: document B", ErrMissingSubmitter)
	}
	if strings.TrimSpace(printer) == "" {
		return nil, ErrNoPrinter
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := checkSubmitter("document A", submitA); err != nil {
		return nil, err
	}
	if err := checkSubmitter("document B", submitB); err != nil {
		return nil, err
	}

	r := &Runner{
		submitA:  submitA,
		submitB:  submitB,
		printer:  printer,
		cfg:      cfg,
		cancel:   NewCancellationFlag(),
		reporter: NewProgressReporter(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.spool == nil {
		r.spool = spool.NewDefaultMonitor()
	}
	if r.logger == nil {
		r.logger = logging.Default()
	}
	r.logger = r.logger.WithComponent("dispatch")
	return r, nil
}

func checkSubmitter(label string, s contracts.Submitter) error {
	checker, ok := s.(contracts.Checker)
	if !ok {
		return nil
	}
	if err := checker.Check(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSubmitterSetup, label, err)
	}
	return nil
}

// Cancel asks the run to stop submitting. Jobs already handed to a submitter
// finish, and Run still waits for the spooler to drain. Safe to call from any
// goroutine, any number of times.
func (r *Runner) Cancel() {
	if r.cancel.Set() {
		r.reporter.setCancelling()
		r.logger.Dispatch("cancellation requested")
	}
}

// Progress returns a snapshot of the live run.
func (r *Runner) Progress() Progress {
	return r.reporter.Snapshot()
}

// Run submits jobs in order and returns once the spooler has drained. If ctx
// ends, submissions stop and Run returns as soon as the worker has finished,
// without waiting for the drain; the error is then ctx.Err().
func (r *Runner) Run(ctx context.Context, jobs printjobs.JobList) (printjobs.RunOutcome, error) {
	if !r.started.CompareAndSwap(false, true) {
		return printjobs.RunOutcome{}, ErrAlreadyRun
	}

	start := time.Now()
	r.logger.Dispatch("run started", "printer", r.printer, "jobs", len(jobs))

	events := NewEventChannel()
	worker := newSubmissionWorker(jobs.Clone(), r.submitA, r.submitB, r.spool, r.printer, r.cfg, r.cancel, events, r.logger)

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.run(ctx)
	}()

	eventTicker := time.NewTicker(r.cfg.EventPollInterval)
	defer eventTicker.Stop()
	spoolTicker := time.NewTicker(r.cfg.SpoolCheckInterval)
	defer spoolTicker.Stop()

	detector := NewCompletionDetector(r.cfg.EmptyStreakRequired)
	checkResult := make(chan bool, 1)
	checking := false
	ctxDone := ctx.Done()
	abandoned := false

	finish := func() printjobs.RunOutcome {
		snap := r.reporter.Snapshot()
		outcome := detector.Outcome(r.cancel.IsSet(), snap.Done, snap.Errors)
		r.reporter.finish(outcome)
		r.logger.Dispatch("run finished",
			"outcome", outcome.String(),
			"duration_ms", time.Since(start).Milliseconds())
		return outcome
	}

	for {
		select {
		case <-eventTicker.C:
			r.drain(events, detector)
			if abandoned && detector.State() != StateAwaitingSubmissions {
				<-workerDone
				r.drain(events, detector)
				return finish(), ctx.Err()
			}

		case <-spoolTicker.C:
			if detector.State() != StateDraining || checking {
				continue
			}
			checking = true
			go func() {
				checkResult <- r.spool.IsEmpty(ctx, r.printer)
			}()

		case empty := <-checkResult:
			checking = false
			if abandoned {
				continue
			}
			r.reporter.setSpool(empty)
			r.logger.Spool("drain check", "empty", empty, "streak", detector.Streak())
			if detector.RecordCheck(empty) == StateDone {
				<-workerDone
				return finish(), nil
			}

		case <-ctxDone:
			ctxDone = nil
			abandoned = true
			r.Cancel()
		}
	}
}

func (r *Runner) drain(events *EventChannel, detector *CompletionDetector) {
	for _, ev := range events.Drain() {
		r.reporter.Apply(ev)
		detector.Observe(ev)
		if r.sink != nil {
			r.sink(ev)
		}
	}
}

// Run is a convenience wrapper around NewRunner and Runner.Run.
func Run(ctx context.Context, jobs printjobs.JobList, submitA, submitB contracts.Submitter, printer string, cfg Config, opts ...Option) (printjobs.RunOutcome, error) {
	r, err := NewRunner(submitA, submitB, printer, cfg, opts...)
	if err != nil {
		return printjobs.RunOutcome{}, err
	}
	return r.Run(ctx, jobs)
}
