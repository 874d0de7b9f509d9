package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"reportprint/domain/contracts"
	"reportprint/domain/printjobs"
	"reportprint/logging"
)

// SpoolMonitor is what the dispatcher needs from platform/spool.
type SpoolMonitor interface {
	PendingCount(ctx context.Context, printer string) printjobs.SpoolState
	IsEmpty(ctx context.Context, printer string) bool
}

// submissionWorker walks the job list on its own goroutine and reports every
// step on the event channel.
type submissionWorker struct {
	jobs    printjobs.JobList
	submitA contracts.Submitter
	submitB contracts.Submitter
	spool   SpoolMonitor
	printer string
	cfg     Config
	cancel  *CancellationFlag
	out     *EventChannel
	limiter *rate.Limiter
	logger  *logging.Logger

	// sleep returns false when ctx ended before d elapsed.
	sleep func(ctx context.Context, d time.Duration) bool
}

func newSubmissionWorker(
	jobs printjobs.JobList,
	submitA, submitB contracts.Submitter,
	spool SpoolMonitor,
	printer string,
	cfg Config,
	cancel *CancellationFlag,
	out *EventChannel,
	logger *logging.Logger,
) *submissionWorker {
	w := &submissionWorker{
		jobs:    jobs,
		submitA: submitA,
		submitB: submitB,
		spool:   spool,
		printer: printer,
		cfg:     cfg,
		cancel:  cancel,
		out:     out,
		logger:  logger,
		sleep:   sleepCtx,
	}
	if cfg.SubmitRatePerSec > 0 {
		w.limiter = rate.NewLimiter(rate.Limit(cfg.SubmitRatePerSec), 1)
	}
	return w
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// run emits Init, one StartItem plus one terminal event per attempted job,
// and finally SentAll, exactly once, however the loop ends.
func (w *submissionWorker) run(ctx context.Context) {
	// waitCtx ends as soon as the flag is raised so no wait outlives a cancel.
	waitCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() {
		select {
		case <-w.cancel.Done():
			stop()
		case <-waitCtx.Done():
		}
	}()

	// In-flight submissions always run to completion.
	submitCtx := context.WithoutCancel(ctx)

	w.out.Send(printjobs.InitEvent(len(w.jobs)))

	for i, job := range w.jobs {
		if w.cancel.IsSet() {
			w.logger.Dispatch("cancellation observed, stopping submissions", "next_index", i)
			break
		}

		if !w.waitForQueue(waitCtx) {
			w.logger.Dispatch("cancelled while waiting for printer queue", "next_index", i)
			break
		}

		if w.limiter != nil {
			if err := w.limiter.Wait(waitCtx); err != nil {
				break
			}
		}

		if w.cancel.IsSet() {
			break
		}

		w.out.Send(printjobs.StartItemEvent(i, job.DisplayName))

		start := time.Now()
		if err := w.submit(submitCtx, job); err != nil {
			w.logger.Warn("submission failed",
				"index", i,
				"name", job.DisplayName,
				"kind", job.Kind.String(),
				"error", err)
			w.out.Send(printjobs.ErrorItemEvent(i, job.DisplayName, err.Error()))
			continue
		}

		w.logger.Dispatch("submitted",
			"index", i,
			"name", job.DisplayName,
			"kind", job.Kind.String())
		w.logger.Performance("submit", time.Since(start),
			slog.Int("index", i),
			slog.String("kind", job.Kind.String()))
		w.out.Send(printjobs.DoneItemEvent(i, job.DisplayName))
	}

	w.out.Send(printjobs.SentAllEvent())
}

// waitForQueue blocks while the printer holds QueueLimit or more jobs. An
// unknown queue size never blocks. Returns false if the wait was cut short
// by cancellation.
func (w *submissionWorker) waitForQueue(ctx context.Context) bool {
	for {
		state := w.spool.PendingCount(ctx, w.printer)
		if ctx.Err() != nil {
			return false
		}
		if !state.Known || state.Count < w.cfg.QueueLimit {
			return true
		}

		w.logger.Debug("printer queue full, waiting",
			"pending", state.Count,
			"limit", w.cfg.QueueLimit,
			"interval", w.cfg.QueueWaitInterval)

		if !w.sleep(ctx, w.cfg.QueueWaitInterval) {
			return false
		}
	}
}

func (w *submissionWorker) submit(ctx context.Context, job printjobs.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("submitter panicked: %v", r)
		}
	}()

	switch job.Kind {
	case printjobs.KindDocumentA:
		return w.submitA.Submit(ctx, job.SourcePath)
	case printjobs.KindDocumentB:
		return w.submitB.Submit(ctx, job.SourcePath)
	default:
		return fmt.Errorf("unsupported job kind: %s", job.Kind)
	}
}
