package events

import (
	"fmt"

	"reportprint/domain/events"
	"reportprint/domain/printjobs"
	"reportprint/logging"
)

// SSEBroadcaster defines the interface for SSE broadcasting (implemented by handlers.SSEManager)
type SSEBroadcaster interface {
	BroadcastProgress(runID string, event printjobs.ProgressEvent)
	BroadcastRunFinished(run *printjobs.PrintRun)
	BroadcastToast(message, toastType string)
}

// NotificationEventHandlers turns run events into notifications for connected browsers
type NotificationEventHandlers struct {
	sseBroadcaster SSEBroadcaster
	logger         *logging.Logger
}

// NewNotificationEventHandlers creates event handlers for notifications
func NewNotificationEventHandlers(sseBroadcaster SSEBroadcaster) *NotificationEventHandlers {
	return &NotificationEventHandlers{
		sseBroadcaster: sseBroadcaster,
		logger:         logging.Default().WithComponent("notification_events"),
	}
}

// RegisterHandlers registers all notification event handlers with the event bus
func (h *NotificationEventHandlers) RegisterHandlers(eventBus *RunEventBus) {
	eventBus.OnRunStarted(h.handleRunStarted)
	eventBus.OnRunProgress(h.handleRunProgress)
	eventBus.OnRunFinished(h.handleRunFinished)
}

func (h *NotificationEventHandlers) handleRunStarted(event events.RunStartedEvent) {
	id := runID(event.Run)
	h.logger.Info("Handling run started event", "run_id", id, "jobs", len(event.Jobs))

	h.sseBroadcaster.BroadcastToast(fmt.Sprintf("Printing %d file(s)", len(event.Jobs)), "info")
}

func (h *NotificationEventHandlers) handleRunProgress(event events.RunProgressEvent) {
	h.sseBroadcaster.BroadcastProgress(event.RunID, event.Event)

	if event.Event.Type == printjobs.EventErrorItem {
		h.sseBroadcaster.BroadcastToast(
			fmt.Sprintf("Failed to print %s: %s", event.Event.Name, event.Event.Message), "error")
	}
}

func (h *NotificationEventHandlers) handleRunFinished(event events.RunFinishedEvent) {
	id := runID(event.Run)
	h.logger.Info("Handling run finished event",
		"run_id", id,
		"outcome", event.Outcome.String(),
		"error", event.Error)

	h.sseBroadcaster.BroadcastRunFinished(event.Run)

	toastType := "success"
	switch {
	case event.Outcome.Status == printjobs.RunStatusCancelled:
		toastType = "warning"
	case event.Outcome.Failed > 0:
		toastType = "error"
	}
	h.sseBroadcaster.BroadcastToast(
		fmt.Sprintf("Run %s: %d printed, %d failed", event.Outcome.Status, event.Outcome.Succeeded, event.Outcome.Failed),
		toastType)
}

func runID(run *printjobs.PrintRun) string {
	if run == nil {
		return "unknown"
	}
	return run.ID
}
