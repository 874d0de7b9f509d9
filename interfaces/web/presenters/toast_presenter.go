package presenters

import (
	"context"
	"strings"
	"time"

	"reportprint/domain/printjobs"
	"reportprint/interfaces/web/templates/components/ui"
)

// ToastPresenter handles toast notification view logic and formatting.
type ToastPresenter struct{}

// NewToastPresenter creates a new toast presenter.
func NewToastPresenter() *ToastPresenter {
	return &ToastPresenter{}
}

// FormatToastNotification renders a toast notification using the template system.
func (p *ToastPresenter) FormatToastNotification(message, toastType string) (string, error) {
	var buf strings.Builder
	if err := ui.ToastNotification(message, toastType).Render(context.Background(), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatRunSummary renders the end-of-run card from the finished run.
func (p *ToastPresenter) FormatRunSummary(run *printjobs.PrintRun) (string, error) {
	var buf strings.Builder
	if err := ui.RichToastNotification(p.createToastViewFromRun(run)).Render(context.Background(), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// createToastViewFromRun transforms run data into the toast view model.
func (p *ToastPresenter) createToastViewFromRun(run *printjobs.PrintRun) ui.ToastNotificationView {
	stats := &ui.ToastStatsView{
		Total:     run.Total,
		Succeeded: run.Succeeded,
		Failed:    run.Failed,
	}

	var title, message, toastType string
	switch {
	case run.Status == printjobs.RunStatusCancelled:
		title = "Print Run Cancelled"
		message = "Remaining files were not sent"
		toastType = "warning"
	case run.Status == printjobs.RunStatusCompleted && run.Failed > 0:
		title = "Print Run Finished With Errors"
		message = "Some files could not be sent to the printer"
		toastType = "error"
	case run.Status == printjobs.RunStatusCompleted:
		title = "Print Run Complete"
		message = "All files printed for " + run.TargetDate.Format("2006/01/02")
		toastType = "success"
	default:
		title = "Print Run"
		message = string(run.Status)
		toastType = "info"
	}

	var duration string
	if run.FinishedAt != nil {
		duration = run.Duration().Round(time.Second).String()
	}

	return ui.ToastNotificationView{
		Title:     title,
		Message:   message,
		Type:      toastType,
		Duration:  duration,
		Stats:     stats,
		Timestamp: time.Now(),
	}
}
