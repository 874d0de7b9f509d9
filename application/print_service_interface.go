package application

import (
	"context"
	"errors"
	"time"

	"reportprint/domain/printjobs"
	"reportprint/infrastructure/scanner"
	"reportprint/platform/dispatch"
)

// ErrNoActiveRun is returned by Cancel when nothing is printing.
var ErrNoActiveRun = errors.New("no print run in progress")

// Batch is a scanned and filtered job list, ready to print.
type Batch struct {
	TargetDate        time.Time
	Jobs              printjobs.JobList
	MissingCompanions []string
}

// RunView is what presentation layers show about the current or last run.
type RunView struct {
	Run      *printjobs.PrintRun `json:"run,omitempty"`
	Progress dispatch.Progress   `json:"progress"`
	Active   bool                `json:"active"`
}

// PrintService runs print batches: scan, select, dispatch, record.
type PrintService interface {
	// Prepare scans the report folder for date and applies the selection.
	Prepare(ctx context.Context, date time.Time, selection scanner.SelectOptions) (*Batch, error)

	// Execute dispatches the batch and blocks until the run is done.
	Execute(ctx context.Context, batch *Batch, trigger printjobs.Trigger) (*printjobs.PrintRun, printjobs.RunOutcome, error)

	// Cancel requests cooperative cancellation of the active run.
	Cancel() error

	// Current returns the active run, or the last finished one.
	Current() (RunView, bool)

	// History lists recent runs, newest first.
	History(ctx context.Context, limit int) ([]*printjobs.PrintRun, error)
}
