package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"reportprint/domain/contracts"
	"reportprint/domain/printjobs"
)

// fakeSpool returns scripted readings. When pending is exhausted the last
// value repeats.
type fakeSpool struct {
	mu      sync.Mutex
	pending []printjobs.SpoolState
	calls   int
	empties []bool
	drained bool
	checks  int
}

func newFakeSpool(states ...printjobs.SpoolState) *fakeSpool {
	return &fakeSpool{pending: states, drained: true}
}

func (f *fakeSpool) PendingCount(ctx context.Context, printer string) printjobs.SpoolState {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ctx.Err() != nil {
		return printjobs.UnknownSpool
	}
	f.calls++
	if len(f.pending) == 0 {
		return printjobs.KnownSpool(0)
	}
	state := f.pending[0]
	if len(f.pending) > 1 {
		f.pending = f.pending[1:]
	}
	return state
}

func (f *fakeSpool) IsEmpty(ctx context.Context, printer string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checks++
	if len(f.empties) > 0 {
		empty := f.empties[0]
		if len(f.empties) > 1 {
			f.empties = f.empties[1:]
		}
		return empty
	}
	return f.drained && ctx.Err() == nil
}

func (f *fakeSpool) emptyChecks() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.checks
}

func (f *fakeSpool) pendingCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// recordingSubmitter records every path it was asked to print.
type recordingSubmitter struct {
	mu    sync.Mutex
	paths []string
	fail  map[string]error
	hook  func(path string)
}

func (s *recordingSubmitter) Submit(ctx context.Context, path string) error {
	if s.hook != nil {
		s.hook(path)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths = append(s.paths, path)
	return s.fail[path]
}

func (s *recordingSubmitter) submitted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.paths))
	copy(out, s.paths)
	return out
}

// checkedSubmitter is a recordingSubmitter that also verifies its setup.
type checkedSubmitter struct {
	*recordingSubmitter
	checkErr error
	checks   int
}

func (s *checkedSubmitter) Check() error {
	s.checks++
	return s.checkErr
}

var errPaperJam = errors.New("paper jam")

func fastConfig() Config {
	return Config{
		QueueLimit:          6,
		QueueWaitInterval:   2 * time.Millisecond,
		EventPollInterval:   time.Millisecond,
		SpoolCheckInterval:  2 * time.Millisecond,
		EmptyStreakRequired: 3,
	}
}

func pdfJobs(names ...string) printjobs.JobList {
	jobs := make(printjobs.JobList, 0, len(names))
	for _, n := range names {
		jobs = append(jobs, printjobs.NewJob(printjobs.KindDocumentA, "/reports/"+n, n))
	}
	return jobs
}

// eventLog is a thread-safe EventSink.
type eventLog struct {
	mu     sync.Mutex
	events []printjobs.ProgressEvent
}

func (l *eventLog) sink(ev printjobs.ProgressEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) all() []printjobs.ProgressEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]printjobs.ProgressEvent, len(l.events))
	copy(out, l.events)
	return out
}

func countType(events []printjobs.ProgressEvent, t printjobs.EventType) int {
	n := 0
	for _, ev := range events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

var noopSubmitter = contracts.SubmitterFunc(func(context.Context, string) error { return nil })

// countingSleep replaces the worker's sleep and never actually waits.
type countingSleep struct {
	n atomic.Int32
}

func (c *countingSleep) sleep(ctx context.Context, d time.Duration) bool {
	c.n.Add(1)
	return ctx.Err() == nil
}
