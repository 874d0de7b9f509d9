package printjobs

import (
	"errors"
	"fmt"
)

// SubmissionOutcome records how one attempted job ended.
type SubmissionOutcome struct {
	JobIndex    int
	DisplayName string
	Err         error
}

// Succeeded reports whether the submission went through.
func (o SubmissionOutcome) Succeeded() bool {
	return o.Err == nil
}

// OutcomeFromEvent converts a terminal event into an outcome.
func OutcomeFromEvent(ev ProgressEvent) (SubmissionOutcome, bool) {
	switch ev.Type {
	case EventDoneItem:
		return SubmissionOutcome{JobIndex: ev.Index, DisplayName: ev.Name}, true
	case EventErrorItem:
		return SubmissionOutcome{JobIndex: ev.Index, DisplayName: ev.Name, Err: errors.New(ev.Message)}, true
	default:
		return SubmissionOutcome{}, false
	}
}

// RunStatus is the terminal label of a run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusCancelled RunStatus = "cancelled"
)

// RunOutcome is computed once, when a run reaches Done.
type RunOutcome struct {
	Status    RunStatus
	Succeeded int
	Failed    int
}

func Completed(succeeded, failed int) RunOutcome {
	return RunOutcome{Status: RunStatusCompleted, Succeeded: succeeded, Failed: failed}
}

func Cancelled(succeeded, failed int) RunOutcome {
	return RunOutcome{Status: RunStatusCancelled, Succeeded: succeeded, Failed: failed}
}

// OK is true only for a completed run with no failures.
func (o RunOutcome) OK() bool {
	return o.Status == RunStatusCompleted && o.Failed == 0
}

func (o RunOutcome) String() string {
	return fmt.Sprintf("%s(%d,%d)", o.Status, o.Succeeded, o.Failed)
}

// SpoolState is a single reading of the printer queue. Known is false when
// every query strategy failed.
type SpoolState struct {
	Count int
	Known bool
}

// UnknownSpool is the reading returned when no strategy could answer.
var UnknownSpool = SpoolState{}

// KnownSpool returns a successful reading.
func KnownSpool(count int) SpoolState {
	return SpoolState{Count: count, Known: true}
}

func (s SpoolState) String() string {
	if !s.Known {
		return "unknown"
	}
	return fmt.Sprintf("%d", s.Count)
}
