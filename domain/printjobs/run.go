package printjobs

import (
	"fmt"
	"time"
)

// Trigger records what started a run.
type Trigger string

const (
	TriggerManual    Trigger = "manual"
	TriggerScheduled Trigger = "scheduled"
)

// PrintRun is the persisted summary of one dispatch run.
type PrintRun struct {
	ID         string
	Printer    string
	TargetDate time.Time
	Trigger    Trigger
	Status     RunStatus
	Total      int
	Succeeded  int
	Failed     int
	StartedAt  time.Time
	FinishedAt *time.Time
}

// RunItem is the persisted outcome of one attempted job.
type RunItem struct {
	RunID       string
	JobIndex    int
	Kind        Kind
	SourcePath  string
	DisplayName string
	Error       string
	RecordedAt  time.Time
}

// IsActive returns true while the run has no terminal status.
func (r *PrintRun) IsActive() bool {
	return r.Status == RunStatusRunning
}

// Duration returns how long the run has been going, or its total duration if finished.
func (r *PrintRun) Duration() time.Duration {
	if r.FinishedAt != nil {
		return r.FinishedAt.Sub(r.StartedAt)
	}
	return time.Since(r.StartedAt)
}

// Finish applies the terminal outcome to the run.
func (r *PrintRun) Finish(outcome RunOutcome) error {
	if !r.IsActive() {
		return fmt.Errorf("cannot finish run in status: %s", r.Status)
	}
	if outcome.Status == RunStatusRunning {
		return fmt.Errorf("outcome is not terminal")
	}

	now := time.Now()
	r.Status = outcome.Status
	r.Succeeded = outcome.Succeeded
	r.Failed = outcome.Failed
	r.FinishedAt = &now
	return nil
}

// Summary returns a one-line human readable description.
func (r *PrintRun) Summary() string {
	return fmt.Sprintf("%s: %d/%d printed, %d failed (%s)",
		r.Status, r.Succeeded, r.Total, r.Failed, r.Duration().Round(time.Second))
}
