package presenters

import (
	"fmt"
	"time"

	"reportprint/application"
	"reportprint/domain/printjobs"
	"reportprint/platform/dispatch"
)

// Run-related view data structures

// RunStatusView represents the live or last run for API responses and the progress page
type RunStatusView struct {
	ID         string `json:"id"`
	Printer    string `json:"printer"`
	TargetDate string `json:"target_date"`
	Trigger    string `json:"trigger"`
	Status     string `json:"status"`
	Progress   string `json:"progress"`
	Percentage int    `json:"percentage"`
	Current    string `json:"current,omitempty"`
	Stage      string `json:"stage"`
	Spool      string `json:"spool"`
	StartedAt  string `json:"started_at"`
	Duration   string `json:"duration"`
	IsActive   bool   `json:"is_active"`
	IsComplete bool   `json:"is_complete"`
	Cancelling bool   `json:"cancelling"`
	Outcome    string `json:"outcome,omitempty"`

	Items []RunItemView `json:"items,omitempty"`
}

// RunItemView is one attempted job.
type RunItemView struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Result string `json:"result"`
	Error  string `json:"error,omitempty"`
}

// RunSummaryView is one row of the history table.
type RunSummaryView struct {
	ID         string `json:"id"`
	TargetDate string `json:"target_date"`
	Trigger    string `json:"trigger"`
	Status     string `json:"status"`
	Total      int    `json:"total"`
	Succeeded  int    `json:"succeeded"`
	Failed     int    `json:"failed"`
	StartedAt  string `json:"started_at"`
	Duration   string `json:"duration"`
}

// RunListView represents a list of past runs
type RunListView struct {
	Runs []RunSummaryView `json:"runs"`
}

// RunPresenter transforms run state into UI-ready formats.
type RunPresenter struct{}

// NewRunPresenter creates a run presenter.
func NewRunPresenter() *RunPresenter {
	return &RunPresenter{}
}

// FormatRunStatus converts the service's run view into a status view.
func (p *RunPresenter) FormatRunStatus(view application.RunView) *RunStatusView {
	if view.Run == nil {
		return nil
	}

	run := view.Run
	progress := view.Progress

	result := &RunStatusView{
		ID:         run.ID,
		Printer:    run.Printer,
		TargetDate: run.TargetDate.Format("2006/01/02"),
		Trigger:    string(run.Trigger),
		Status:     string(run.Status),
		Progress:   fmt.Sprintf("%d/%d", progress.Processed(), progress.Total),
		Percentage: percentage(progress.Processed(), progress.Total),
		Current:    progress.Current,
		Stage:      p.stage(view),
		Spool:      string(progress.Spool),
		StartedAt:  run.StartedAt.Format(time.RFC3339),
		Duration:   run.Duration().Round(time.Second).String(),
		IsActive:   view.Active,
		IsComplete: progress.Finished(),
		Cancelling: progress.Cancelling,
	}
	if progress.Outcome != nil {
		result.Outcome = fmt.Sprintf("%d printed, %d failed", progress.Outcome.Succeeded, progress.Outcome.Failed)
	}

	for _, o := range progress.Outcomes {
		item := RunItemView{Index: o.JobIndex, Name: o.DisplayName, Result: "printed"}
		if !o.Succeeded() {
			item.Result = "failed"
			item.Error = o.Err.Error()
		}
		result.Items = append(result.Items, item)
	}

	return result
}

// stage names the phase of the run the way an operator thinks about it.
func (p *RunPresenter) stage(view application.RunView) string {
	progress := view.Progress
	switch {
	case progress.Finished() && progress.Outcome.Status == printjobs.RunStatusCancelled:
		return "Cancelled"
	case progress.Finished():
		return "Finished"
	case !view.Active:
		return "Stopped"
	case progress.Cancelling && !progress.SentAll:
		return "Cancelling"
	case !progress.SentAll:
		return "Sending"
	case progress.Spool == dispatch.SpoolEmpty:
		return "Confirming printer is idle"
	default:
		return "Waiting for printer"
	}
}

// FormatRunList converts history rows to summaries.
func (p *RunPresenter) FormatRunList(runs []*printjobs.PrintRun) *RunListView {
	view := &RunListView{Runs: make([]RunSummaryView, 0, len(runs))}
	for _, run := range runs {
		if run == nil {
			continue
		}
		summary := RunSummaryView{
			ID:         run.ID,
			TargetDate: run.TargetDate.Format("2006/01/02"),
			Trigger:    string(run.Trigger),
			Status:     string(run.Status),
			Total:      run.Total,
			Succeeded:  run.Succeeded,
			Failed:     run.Failed,
			StartedAt:  run.StartedAt.Format(time.RFC3339),
		}
		if run.FinishedAt != nil {
			summary.Duration = run.Duration().Round(time.Second).String()
		}
		view.Runs = append(view.Runs, summary)
	}
	return view
}

// FormatCancelMessage returns the text shown after a cancel request.
func (p *RunPresenter) FormatCancelMessage(err error) string {
	if err != nil {
		return "Nothing to cancel"
	}
	return "Cancelling: the file being sent will finish, then the run stops once the printer is idle"
}

func percentage(done, total int) int {
	if total <= 0 {
		return 100
	}
	return done * 100 / total
}
