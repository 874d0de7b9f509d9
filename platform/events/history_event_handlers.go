package events

import (
	"context"
	"sync"
	"time"

	"reportprint/domain/contracts"
	"reportprint/domain/events"
	"reportprint/domain/printjobs"
	"reportprint/logging"
)

// HistoryEventHandlers writes one history item per finished job.
type HistoryEventHandlers struct {
	runs   contracts.RunRepository
	logger *logging.Logger

	mu   sync.Mutex
	jobs map[string]printjobs.JobList
}

// NewHistoryEventHandlers creates handlers that record items into runs.
func NewHistoryEventHandlers(runs contracts.RunRepository) *HistoryEventHandlers {
	return &HistoryEventHandlers{
		runs:   runs,
		logger: logging.Default().WithComponent("history_events"),
		jobs:   make(map[string]printjobs.JobList),
	}
}

// RegisterHandlers registers the history handlers with the event bus
func (h *HistoryEventHandlers) RegisterHandlers(eventBus *RunEventBus) {
	eventBus.OnRunStarted(h.handleRunStarted)
	eventBus.OnRunProgress(h.handleRunProgress)
	eventBus.OnRunFinished(h.handleRunFinished)
}

func (h *HistoryEventHandlers) handleRunStarted(event events.RunStartedEvent) {
	if event.Run == nil {
		return
	}
	h.mu.Lock()
	h.jobs[event.Run.ID] = event.Jobs
	h.mu.Unlock()
}

func (h *HistoryEventHandlers) handleRunProgress(event events.RunProgressEvent) {
	if !event.Event.IsTerminal() {
		return
	}

	h.mu.Lock()
	jobs, ok := h.jobs[event.RunID]
	h.mu.Unlock()
	if !ok || event.Event.Index < 0 || event.Event.Index >= len(jobs) {
		h.logger.Warn("Progress event for unknown job", "run_id", event.RunID, "event", event.Event.String())
		return
	}

	job := jobs[event.Event.Index]
	item := printjobs.RunItem{
		RunID:       event.RunID,
		JobIndex:    event.Event.Index,
		Kind:        job.Kind,
		SourcePath:  job.SourcePath,
		DisplayName: job.DisplayName,
		Error:       event.Event.Message,
		RecordedAt:  event.Timestamp,
	}
	if item.RecordedAt.IsZero() {
		item.RecordedAt = time.Now()
	}

	if err := h.runs.RecordItem(context.Background(), item); err != nil {
		h.logger.Error("Failed to record run item", "run_id", event.RunID, "index", item.JobIndex, "error", err)
	}
}

func (h *HistoryEventHandlers) handleRunFinished(event events.RunFinishedEvent) {
	if event.Run == nil {
		return
	}
	h.mu.Lock()
	delete(h.jobs, event.Run.ID)
	h.mu.Unlock()
}
