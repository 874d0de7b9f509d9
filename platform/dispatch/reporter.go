package dispatch

import (
	"sync"

	"reportprint/domain/printjobs"
)

// SpoolStatus is the last drain reading shown to presentation layers.
type SpoolStatus string

const (
	SpoolUnchecked SpoolStatus = "unchecked"
	SpoolEmpty     SpoolStatus = "empty"
	SpoolPending   SpoolStatus = "pending"
)

// Progress is a point-in-time copy of a run's state.
type Progress struct {
	Total      int                           `json:"total"`
	Done       int                           `json:"done"`
	Errors     int                           `json:"errors"`
	Current    string                        `json:"current,omitempty"`
	SentAll    bool                          `json:"sent_all"`
	Spool      SpoolStatus                   `json:"spool"`
	Cancelling bool                          `json:"cancelling"`
	Outcome    *printjobs.RunOutcome         `json:"outcome,omitempty"`
	Outcomes   []printjobs.SubmissionOutcome `json:"-"`
}

// Processed is the number of jobs with a terminal event.
func (p Progress) Processed() int {
	return p.Done + p.Errors
}

// Finished reports whether the run reached its outcome.
func (p Progress) Finished() bool {
	return p.Outcome != nil
}

// ProgressReporter folds worker events into counters. Writes come from the
// foreground loop only; Snapshot may be called from anywhere.
type ProgressReporter struct {
	mu    sync.RWMutex
	state Progress
}

func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{state: Progress{Spool: SpoolUnchecked}}
}

// Apply folds one event.
func (r *ProgressReporter) Apply(ev printjobs.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch ev.Type {
	case printjobs.EventInit:
		r.state.Total = ev.Total
		r.state.Done = 0
		r.state.Errors = 0
		r.state.SentAll = false
		r.state.Outcomes = nil
	case printjobs.EventStartItem:
		r.state.Current = ev.Name
	case printjobs.EventDoneItem:
		r.state.Done++
	case printjobs.EventErrorItem:
		r.state.Errors++
	case printjobs.EventSentAll:
		r.state.SentAll = true
		r.state.Current = ""
	}

	if outcome, ok := printjobs.OutcomeFromEvent(ev); ok {
		r.state.Outcomes = append(r.state.Outcomes, outcome)
	}
}

func (r *ProgressReporter) setSpool(empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if empty {
		r.state.Spool = SpoolEmpty
	} else {
		r.state.Spool = SpoolPending
	}
}

func (r *ProgressReporter) setCancelling() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Cancelling = true
}

func (r *ProgressReporter) finish(outcome printjobs.RunOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Outcome = &outcome
	r.state.Current = ""
}

// Snapshot returns a copy of the current state.
func (r *ProgressReporter) Snapshot() Progress {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := r.state
	if r.state.Outcomes != nil {
		snap.Outcomes = make([]printjobs.SubmissionOutcome, len(r.state.Outcomes))
		copy(snap.Outcomes, r.state.Outcomes)
	}
	if r.state.Outcome != nil {
		outcome := *r.state.Outcome
		snap.Outcome = &outcome
	}
	return snap
}
