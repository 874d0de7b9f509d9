package events

import (
	"time"

	"reportprint/domain/printjobs"
)

// RunStartedEvent is published once the job list is handed to the dispatcher
type RunStartedEvent struct {
	Run       *printjobs.PrintRun
	Jobs      printjobs.JobList
	Timestamp time.Time
}

// RunProgressEvent wraps a single worker event as seen by the foreground loop
type RunProgressEvent struct {
	RunID     string
	Event     printjobs.ProgressEvent
	Timestamp time.Time
}

// RunFinishedEvent is published when the completion detector reaches Done,
// or when the run is abandoned because its context ended
type RunFinishedEvent struct {
	Run       *printjobs.PrintRun
	Outcome   printjobs.RunOutcome
	Error     string
	Timestamp time.Time
}
