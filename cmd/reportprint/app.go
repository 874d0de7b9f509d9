package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v2"
	"github.com/joho/godotenv"

	"reportprint/application"
	"reportprint/database"
	"reportprint/domain/contracts"
	"reportprint/infrastructure/config"
	"reportprint/infrastructure/export"
	"reportprint/infrastructure/repositories"
	"reportprint/infrastructure/scanner"
	"reportprint/infrastructure/submitters"
	"reportprint/interfaces/web/handlers"
	"reportprint/interfaces/web/presenters"
	"reportprint/logging"
	"reportprint/platform/events"
	"reportprint/platform/spool"
)

// App holds every long-lived dependency, organized by layer.
type App struct {
	// Infrastructure
	Config *config.AppConfig
	DB     *database.Database
	Logger *logging.Logger

	// Repositories
	RunRepo contracts.RunRepository

	// Application Layer
	EventBus     *events.RunEventBus
	PrintService *application.PrintServiceImpl
	Exporter     *export.HistoryExporter

	// Presentation Layer
	SSEManager  *handlers.SSEManager
	RunHandlers *handlers.RunHandlers
}

func loadEnvironment() {
	// A missing .env is the normal case.
	_ = godotenv.Load()
}

func initializeLogging(cfg *config.AppConfig) *logging.Logger {
	logger := logging.NewLogger(cfg.Logging)
	logging.SetDefault(logger)

	logger.Info("Application starting",
		"version", version,
		"config", cfg.Source,
		"log_level", cfg.Logging.Level,
		"db_path", cfg.Database.Path,
	)

	return logger
}

func initializeDatabase(cfg *config.AppConfig, logger *logging.Logger) (*database.Database, error) {
	return database.New(*cfg.Database, logger.WithComponent("database"))
}

// buildApp creates all application dependencies. The caller closes App.DB.
func buildApp(appCtx context.Context, cfg *config.AppConfig, logger *logging.Logger) (*App, error) {
	db, err := initializeDatabase(cfg, logger)
	if err != nil {
		return nil, err
	}

	monitor, err := spool.NewMonitorByName(cfg.Dispatch.SpoolStrategies)
	if err != nil {
		db.Close()
		return nil, err
	}

	runRepo := repositories.NewSqlRunRepository(db)
	eventBus := events.NewRunEventBus()
	events.NewHistoryEventHandlers(runRepo).RegisterHandlers(eventBus)

	printService := application.NewPrintService(application.PrintServiceDeps{
		Collector: scanner.New(scanner.PDFPageCount),
		SubmitPDF: submitters.NewPDFToPrinter(cfg.PDFToPrinterPath, cfg.PrinterName),
		SubmitDoc: submitters.NewSOffice(cfg.SofficePath, cfg.PrinterName),
		Spool:     monitor,
		Runs:      runRepo,
		Events:    eventBus,
	}, application.PrintSettings{
		PrinterName:  cfg.PrinterName,
		ParentFolder: cfg.ParentFolder,
		Dispatch:     cfg.Dispatch.Runtime(),
	})

	exporter := export.NewHistoryExporter(runRepo)

	// Presentation: SSE fan-out is subscribed to the same bus as the history recorder
	sseManager := handlers.NewSSEManager(appCtx)
	events.NewNotificationEventHandlers(sseManager).RegisterHandlers(eventBus)
	runHandlers := handlers.NewRunHandlers(printService, exporter, presenters.NewRunPresenter())

	logger.Info("Spool monitor ready", "strategies", monitor.Strategies())

	return &App{
		Config:       cfg,
		DB:           db,
		Logger:       logger,
		RunRepo:      runRepo,
		EventBus:     eventBus,
		PrintService: printService,
		Exporter:     exporter,
		SSEManager:   sseManager,
		RunHandlers:  runHandlers,
	}, nil
}

func setupRoutes(app *App) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	setupHTTPLogging(r, app)
	r.Use(middleware.Recoverer)

	// System endpoints
	setupSystemRoutes(r, app)

	// Progress surface
	handlers.RegisterRoutes(r, app.RunHandlers, app.SSEManager)

	return r
}

func setupHTTPLogging(r *chi.Mux, app *App) {
	path := app.Config.Server.HTTPLogPath
	if path == "" {
		return
	}

	logFile, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		app.Logger.Error("Failed to open HTTP log file", "error", err, "path", path)
		return
	}
	// Note: logFile is not closed here as it needs to stay open for the server lifetime

	httpLogger := httplog.NewLogger("reportprint", httplog.Options{
		Writer: logFile,
		JSON:   true,
	})
	r.Use(httplog.RequestLogger(httpLogger))

	app.Logger.Info("HTTP request logging enabled", "path", path)
}

func setupSystemRoutes(r *chi.Mux, app *App) {
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		stats, err := app.DB.Health()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		response := map[string]interface{}{
			"status":      "ok",
			"database":    stats,
			"sse_clients": app.SSEManager.ClientCount(),
		}
		if view, ok := app.PrintService.Current(); ok {
			response["run_active"] = view.Active
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	})
}

// startServer serves the progress surface until ctx ends, then shuts down gracefully.
func startServer(ctx context.Context, app *App, addr string) <-chan error {
	server := &http.Server{Addr: addr, Handler: setupRoutes(app)}
	errCh := make(chan error, 1)

	go func() {
		app.Logger.Info("Server starting", "address", addr)
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			app.Logger.Error("Server failed", "error", err)
			errCh <- err
		}
		close(errCh)
	}()

	go func() {
		<-ctx.Done()

		// Close SSE connections first so Shutdown is not held open by streams
		app.SSEManager.CloseAll()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			app.Logger.Error("Server shutdown error", "error", err)
		}
		app.Logger.Info("Server stopped")
	}()

	return errCh
}
