package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportprint/application"
	"reportprint/database"
	"reportprint/interfaces/web/handlers"
	"reportprint/logging"
)

func TestHealth_ReportsDatabaseAndConnectedClients(t *testing.T) {
	// Arrange
	cfg := database.DefaultConfig()
	cfg.Path = filepath.Join(t.TempDir(), "health.db")
	db, err := database.New(*cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	app := &App{
		DB:           db,
		Logger:       logging.Discard(),
		PrintService: application.NewPrintService(application.PrintServiceDeps{}, application.PrintSettings{}),
		SSEManager:   handlers.NewSSEManager(ctx),
	}
	r := chi.NewRouter()
	setupSystemRoutes(r, app)

	// Act
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(0), body["sse_clients"])
	assert.Contains(t, body, "database")
	assert.NotContains(t, body, "run_active")
}
