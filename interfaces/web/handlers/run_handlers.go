package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"reportprint/application"
	"reportprint/domain/printjobs"
	"reportprint/interfaces/web/presenters"
	"reportprint/interfaces/web/templates/pages"
	"reportprint/logging"
)

const defaultHistoryLimit = 50

// RunService is the part of the print service the web surface uses.
type RunService interface {
	Cancel() error
	Current() (application.RunView, bool)
	History(ctx context.Context, limit int) ([]*printjobs.PrintRun, error)
}

// HistoryExporter renders the run history as a workbook.
type HistoryExporter interface {
	ExportXLSX(ctx context.Context, limit int) ([]byte, error)
}

// RunHandlers serves the progress page, its JSON API and the run history.
type RunHandlers struct {
	runService   RunService
	exporter     HistoryExporter
	runPresenter *presenters.RunPresenter
	logger       *logging.Logger
}

// NewRunHandlers creates run handlers. exporter may be nil.
func NewRunHandlers(
	runService RunService,
	exporter HistoryExporter,
	runPresenter *presenters.RunPresenter,
) *RunHandlers {
	return &RunHandlers{
		runService:   runService,
		exporter:     exporter,
		runPresenter: runPresenter,
		logger:       logging.Default().WithComponent("run_handler"),
	}
}

func (h *RunHandlers) currentStatus() *presenters.RunStatusView {
	view, ok := h.runService.Current()
	if !ok {
		return nil
	}
	return h.runPresenter.FormatRunStatus(view)
}

// ProgressPage renders the full progress page
func (h *RunHandlers) ProgressPage(w http.ResponseWriter, r *http.Request) {
	RenderResponse(r.Context(), w, r, pages.ProgressPage(h.currentStatus()))
}

// ProgressPartial renders only the progress panel for HTMX refreshes
func (h *RunHandlers) ProgressPartial(w http.ResponseWriter, r *http.Request) {
	RenderResponse(r.Context(), w, r, pages.ProgressPanel(h.currentStatus()))
}

// GetProgress returns the live progress snapshot as JSON
func (h *RunHandlers) GetProgress(w http.ResponseWriter, r *http.Request) {
	status := h.currentStatus()
	if status == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// CancelRun requests cancellation of the active run
func (h *RunHandlers) CancelRun(w http.ResponseWriter, r *http.Request) {
	err := h.runService.Cancel()
	message := h.runPresenter.FormatCancelMessage(err)

	if errors.Is(err, application.ErrNoActiveRun) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": message})
		return
	}
	if err != nil {
		h.logger.Error("Failed to cancel run", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	h.logger.Info("Run cancellation requested", "remote_addr", r.RemoteAddr)
	writeJSON(w, http.StatusAccepted, map[string]string{"message": message})
}

// ListRuns returns recent runs, newest first
func (h *RunHandlers) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	runs, err := h.runService.History(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list runs", "error", err)
		http.Error(w, "Failed to list runs", http.StatusInternalServerError)
		return
	}

	view := h.runPresenter.FormatRunList(runs)
	if IsHTMXRequest(r) || wantsHTML(r) {
		RenderResponse(r.Context(), w, r, pages.HistoryTable(view))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HistoryPage renders the history page
func (h *RunHandlers) HistoryPage(w http.ResponseWriter, r *http.Request) {
	runs, err := h.runService.History(r.Context(), defaultHistoryLimit)
	if err != nil {
		h.logger.Error("Failed to list runs", "error", err)
		http.Error(w, "Failed to list runs", http.StatusInternalServerError)
		return
	}
	RenderResponse(r.Context(), w, r, pages.HistoryPage(h.runPresenter.FormatRunList(runs)))
}

// ExportRuns streams the history workbook
func (h *RunHandlers) ExportRuns(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		http.Error(w, "History export is not available", http.StatusNotFound)
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := h.exporter.ExportXLSX(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to export history", "error", err)
		http.Error(w, "Failed to export history", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("print-history-%s.xlsx", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Write(data)
}

func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultHistoryLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("invalid limit: %q", raw)
	}
	return limit, nil
}
