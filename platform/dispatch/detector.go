package dispatch

import "reportprint/domain/printjobs"

// DetectorState is the completion detector's position.
type DetectorState int

const (
	StateAwaitingSubmissions DetectorState = iota
	StateDraining
	StateDone
)

func (s DetectorState) String() string {
	switch s {
	case StateAwaitingSubmissions:
		return "awaiting_submissions"
	case StateDraining:
		return "draining"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// CompletionDetector decides when a run is really over: every submission has
// been attempted and the spooler has read empty several times in a row. A
// single empty reading is not trusted, the spooler can look empty between
// accepting one job and registering the next.
type CompletionDetector struct {
	required int
	state    DetectorState
	streak   int
}

func NewCompletionDetector(required int) *CompletionDetector {
	if required < 1 {
		required = 1
	}
	return &CompletionDetector{required: required}
}

// Observe feeds a worker event. Only SentAll changes state.
func (d *CompletionDetector) Observe(ev printjobs.ProgressEvent) {
	if ev.Type == printjobs.EventSentAll && d.state == StateAwaitingSubmissions {
		d.state = StateDraining
		d.streak = 0
	}
}

// RecordCheck feeds one IsEmpty reading. Readings outside Draining are ignored.
func (d *CompletionDetector) RecordCheck(empty bool) DetectorState {
	if d.state != StateDraining {
		return d.state
	}

	if empty {
		d.streak++
	} else {
		d.streak = 0
	}

	if d.streak >= d.required {
		d.state = StateDone
	}
	return d.state
}

func (d *CompletionDetector) State() DetectorState { return d.state }

func (d *CompletionDetector) Streak() int { return d.streak }

// Outcome labels the finished run.
func (d *CompletionDetector) Outcome(cancelled bool, succeeded, failed int) printjobs.RunOutcome {
	if cancelled {
		return printjobs.Cancelled(succeeded, failed)
	}
	return printjobs.Completed(succeeded, failed)
}
