package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportprint/domain/contracts"
	"reportprint/domain/printjobs"
	"reportprint/logging"
)

func newTestRunner(t *testing.T, sub *recordingSubmitter, sp SpoolMonitor, log *eventLog) *Runner {
	t.Helper()
	opts := []Option{WithSpoolMonitor(sp), WithLogger(logging.Discard())}
	if log != nil {
		opts = append(opts, WithEventSink(log.sink))
	}
	r, err := NewRunner(sub, sub, "Office Printer", fastConfig(), opts...)
	require.NoError(t, err)
	return r
}

func runWithTimeout(t *testing.T, r *Runner, ctx context.Context, jobs printjobs.JobList) (printjobs.RunOutcome, error) {
	t.Helper()
	type result struct {
		outcome printjobs.RunOutcome
		err     error
	}
	done := make(chan result, 1)
	go func() {
		o, err := r.Run(ctx, jobs)
		done <- result{o, err}
	}()
	select {
	case res := <-done:
		return res.outcome, res.err
	case <-time.After(5 * time.Second):
		t.Fatal("run did not finish")
		return printjobs.RunOutcome{}, nil
	}
}

func TestNewRunner_SetupErrors(t *testing.T) {
	sub := &recordingSubmitter{}

	_, err := NewRunner(nil, sub, "P", fastConfig())
	assert.ErrorIs(t, err, ErrMissingSubmitter)

	_, err = NewRunner(sub, nil, "P", fastConfig())
	assert.ErrorIs(t, err, ErrMissingSubmitter)

	_, err = NewRunner(sub, sub, "  ", fastConfig())
	assert.ErrorIs(t, err, ErrNoPrinter)

	cfg := fastConfig()
	cfg.EmptyStreakRequired = 0
	_, err = NewRunner(sub, sub, "P", cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Run(context.Background(), pdfJobs("a.pdf"), sub, sub, "", fastConfig())
	assert.ErrorIs(t, err, ErrNoPrinter)
	assert.Empty(t, sub.submitted())
}

func TestRun_UnusableSubmitterFailsBeforeAnyJob(t *testing.T) {
	// Arrange
	missing := errors.New("print executable not found: /nonexistent/soffice.com")
	pdf := &checkedSubmitter{recordingSubmitter: &recordingSubmitter{}}
	word := &checkedSubmitter{recordingSubmitter: &recordingSubmitter{}, checkErr: missing}
	log := &eventLog{}
	sp := newFakeSpool()
	jobs := printjobs.JobList{
		printjobs.NewJob(printjobs.KindDocumentA, "/reports/a.pdf", "a.pdf"),
		printjobs.NewJob(printjobs.KindDocumentB, "/reports/a.docx", "a.docx"),
		printjobs.NewJob(printjobs.KindDocumentB, "/reports/b.docx", "b.docx"),
	}

	// Act
	outcome, err := Run(context.Background(), jobs, pdf, word, "Office Printer", fastConfig(),
		WithSpoolMonitor(sp), WithEventSink(log.sink), WithLogger(logging.Discard()))

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSubmitterSetup)
	assert.ErrorIs(t, err, missing)
	assert.ErrorContains(t, err, "document B")
	assert.Equal(t, printjobs.RunOutcome{}, outcome)
	assert.Empty(t, log.all())
	assert.Empty(t, pdf.submitted())
	assert.Empty(t, word.submitted())
	assert.Zero(t, sp.pendingCalls())
	assert.Equal(t, 1, pdf.checks)
	assert.Equal(t, 1, word.checks)
}

func TestNewRunner_AcceptsFuncSubmitters(t *testing.T) {
	noop := contracts.SubmitterFunc(func(context.Context, string) error { return nil })

	_, err := NewRunner(noop, noop, "P", fastConfig())

	assert.NoError(t, err)
}

func TestRunner_AllSucceed(t *testing.T) {
	// Arrange
	sub := &recordingSubmitter{}
	log := &eventLog{}
	spool := newFakeSpool(printjobs.KnownSpool(0))
	r := newTestRunner(t, sub, spool, log)

	// Act
	outcome, err := runWithTimeout(t, r, context.Background(), pdfJobs("a.pdf", "b.pdf", "c.pdf"))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, printjobs.Completed(3, 0), outcome)
	assert.GreaterOrEqual(t, spool.emptyChecks(), 3)

	events := log.all()
	assert.Equal(t, printjobs.InitEvent(3), events[0])
	assert.Equal(t, printjobs.SentAllEvent(), events[len(events)-1])
	assert.Equal(t, 3, countType(events, printjobs.EventDoneItem))

	progress := r.Progress()
	assert.True(t, progress.Finished())
	assert.Equal(t, outcome, *progress.Outcome)
	assert.Equal(t, SpoolEmpty, progress.Spool)
}

func TestRunner_OneFailureDoesNotAbort(t *testing.T) {
	// Arrange
	sub := &recordingSubmitter{fail: map[string]error{"/reports/c.pdf": errPaperJam}}
	log := &eventLog{}
	r := newTestRunner(t, sub, newFakeSpool(), log)

	// Act
	outcome, err := runWithTimeout(t, r, context.Background(), pdfJobs("a.pdf", "b.pdf", "c.pdf", "d.pdf", "e.pdf"))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, printjobs.Completed(4, 1), outcome)
	assert.False(t, outcome.OK())
	assert.Len(t, sub.submitted(), 5)

	var failed []printjobs.ProgressEvent
	for _, ev := range log.all() {
		if ev.Type == printjobs.EventErrorItem {
			failed = append(failed, ev)
		}
	}
	require.Len(t, failed, 1)
	assert.Equal(t, 2, failed[0].Index)
	assert.Equal(t, "paper jam", failed[0].Message)
}

func TestRunner_CancelMidRunStillDrains(t *testing.T) {
	// Arrange
	sub := &recordingSubmitter{}
	log := &eventLog{}
	spool := newFakeSpool()
	r := newTestRunner(t, sub, spool, log)
	sub.hook = func(path string) {
		if path == "/reports/b.pdf" {
			r.Cancel()
		}
	}

	// Act
	outcome, err := runWithTimeout(t, r, context.Background(), pdfJobs("a.pdf", "b.pdf", "c.pdf", "d.pdf"))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, printjobs.Cancelled(2, 0), outcome)
	assert.Equal(t, []string{"/reports/a.pdf", "/reports/b.pdf"}, sub.submitted())
	assert.GreaterOrEqual(t, spool.emptyChecks(), 3)

	for _, ev := range log.all() {
		if ev.Type == printjobs.EventStartItem {
			assert.Less(t, ev.Index, 2)
		}
	}
	assert.True(t, r.Progress().Cancelling)
}

func TestRunner_UnknownSpoolNeverCompletesUntilContextEnds(t *testing.T) {
	// Arrange
	sub := &recordingSubmitter{}
	spool := newFakeSpool(printjobs.UnknownSpool)
	spool.drained = false
	r := newTestRunner(t, sub, spool, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	var outcome printjobs.RunOutcome
	var err error
	go func() {
		outcome, err = r.Run(ctx, pdfJobs("a.pdf", "b.pdf"))
		close(done)
	}()

	// Act
	select {
	case <-done:
		t.Fatal("run completed without a confirmed drain")
	case <-time.After(100 * time.Millisecond):
	}
	cancel()

	// Assert
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("run ignored context cancellation")
	}
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, printjobs.Cancelled(2, 0), outcome)
	assert.Len(t, sub.submitted(), 2)
	assert.True(t, r.Progress().SentAll)
}

func TestRunner_BusyReadingResetsStreak(t *testing.T) {
	// Arrange
	spool := newFakeSpool()
	spool.empties = []bool{true, true, false, true, true, true}
	r := newTestRunner(t, &recordingSubmitter{}, spool, nil)

	// Act
	outcome, err := runWithTimeout(t, r, context.Background(), pdfJobs("a.pdf"))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, printjobs.Completed(1, 0), outcome)
	assert.Equal(t, 6, spool.emptyChecks())
}

func TestRunner_EmptyJobList(t *testing.T) {
	// Arrange
	log := &eventLog{}
	r := newTestRunner(t, &recordingSubmitter{}, newFakeSpool(), log)

	// Act
	outcome, err := runWithTimeout(t, r, context.Background(), nil)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, printjobs.Completed(0, 0), outcome)
	assert.Equal(t, []printjobs.ProgressEvent{printjobs.InitEvent(0), printjobs.SentAllEvent()}, log.all())
}

func TestRunner_CannotRunTwice(t *testing.T) {
	// Arrange
	r := newTestRunner(t, &recordingSubmitter{}, newFakeSpool(), nil)
	_, err := runWithTimeout(t, r, context.Background(), pdfJobs("a.pdf"))
	require.NoError(t, err)

	// Act
	_, err = r.Run(context.Background(), pdfJobs("a.pdf"))

	// Assert
	assert.ErrorIs(t, err, ErrAlreadyRun)
}

func TestRunner_SinkSeesEveryStartBeforeItsTerminal(t *testing.T) {
	// Arrange
	log := &eventLog{}
	sub := &recordingSubmitter{fail: map[string]error{"/reports/b.pdf": errPaperJam}}
	r := newTestRunner(t, sub, newFakeSpool(), log)

	// Act
	_, err := runWithTimeout(t, r, context.Background(), pdfJobs("a.pdf", "b.pdf", "c.pdf"))

	// Assert
	require.NoError(t, err)
	started := map[int]bool{}
	sentAll := 0
	for _, ev := range log.all() {
		switch ev.Type {
		case printjobs.EventStartItem:
			started[ev.Index] = true
		case printjobs.EventDoneItem, printjobs.EventErrorItem:
			assert.True(t, started[ev.Index], "terminal before start for %d", ev.Index)
			assert.Zero(t, sentAll)
		case printjobs.EventSentAll:
			sentAll++
		}
	}
	assert.Equal(t, 1, sentAll)
}
