package handlers

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the progress surface on r.
func RegisterRoutes(r chi.Router, runs *RunHandlers, sse *SSEManager) {
	// Pages
	r.Get("/", runs.ProgressPage)
	r.Get("/history", runs.HistoryPage)
	r.Get("/partials/progress", runs.ProgressPartial)

	// Live updates
	r.Get("/events", sse.HandleSSEConnection)

	// API
	r.Route("/api", func(r chi.Router) {
		r.Get("/progress", runs.GetProgress)
		r.Post("/cancel", runs.CancelRun)
		r.Get("/runs", runs.ListRuns)
		r.Get("/runs/export.xlsx", runs.ExportRuns)
	})
}
