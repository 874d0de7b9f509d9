package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"reportprint/domain/printjobs"
	"reportprint/interfaces/web/presenters"
	"reportprint/logging"
)

// SSEClient represents a connected Server-Sent Events client.
type SSEClient struct {
	id       string
	writer   http.ResponseWriter
	flusher  http.Flusher
	done     chan struct{}
	mu       sync.Mutex
	lastSent time.Time
}

// SSEManager manages Server-Sent Events connections and pushes run updates
// to every connected browser.
type SSEManager struct {
	clients        map[string]*SSEClient
	mu             sync.RWMutex
	logger         *logging.Logger
	toastPresenter *presenters.ToastPresenter
}

// NewSSEManager creates a new SSE connection manager. The keep-alive routine
// stops when ctx ends.
func NewSSEManager(ctx context.Context) *SSEManager {
	manager := &SSEManager{
		clients:        make(map[string]*SSEClient),
		logger:         logging.Default().WithComponent("sse_manager"),
		toastPresenter: presenters.NewToastPresenter(),
	}

	go manager.cleanupRoutine(ctx)

	return manager
}

// AddClient adds a new SSE client connection
func (s *SSEManager) AddClient(clientID string, w http.ResponseWriter) *SSEClient {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.logger.Error("Response writer does not support flushing")
		return nil
	}

	flusher.Flush()

	client := &SSEClient{
		id:       clientID,
		writer:   w,
		flusher:  flusher,
		done:     make(chan struct{}),
		lastSent: time.Now(),
	}

	s.mu.Lock()
	s.clients[clientID] = client
	total := len(s.clients)
	s.mu.Unlock()

	s.logger.Info("SSE client connected", "client_id", clientID, "total_clients", total)
	return client
}

// RemoveClient removes an SSE client connection
func (s *SSEManager) RemoveClient(clientID string) {
	s.mu.Lock()
	client, exists := s.clients[clientID]
	if exists {
		delete(s.clients, clientID)
	}
	s.mu.Unlock()

	if exists {
		// Close channel outside of lock to prevent double-close panic
		select {
		case <-client.done:
		default:
			close(client.done)
		}
		s.logger.Info("SSE client disconnected", "client_id", clientID)
	}
}

// CloseAll disconnects every client. Used on shutdown.
func (s *SSEManager) CloseAll() {
	s.mu.RLock()
	ids := make([]string, 0, len(s.clients))
	for id := range s.clients {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	for _, id := range ids {
		s.RemoveClient(id)
	}
}

// ClientCount returns the number of connected clients.
func (s *SSEManager) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// BroadcastProgress sends one worker event as JSON.
func (s *SSEManager) BroadcastProgress(runID string, event printjobs.ProgressEvent) {
	payload, err := json.Marshal(struct {
		RunID string `json:"run_id"`
		printjobs.ProgressEvent
	}{runID, event})
	if err != nil {
		s.logger.Error("Failed to encode progress event", "run_id", runID, "error", err)
		return
	}
	s.broadcast("progress", string(payload))
}

// BroadcastRunFinished sends the end-of-run summary card.
func (s *SSEManager) BroadcastRunFinished(run *printjobs.PrintRun) {
	if run == nil {
		return
	}
	summaryHTML, err := s.toastPresenter.FormatRunSummary(run)
	if err != nil {
		s.logger.Error("Failed to format run summary", "run_id", run.ID, "error", err)
		return
	}
	s.broadcast("run-finished", summaryHTML)
}

// BroadcastToast broadcasts a simple toast notification to all connected clients
func (s *SSEManager) BroadcastToast(message, toastType string) {
	toastHTML, err := s.toastPresenter.FormatToastNotification(message, toastType)
	if err != nil {
		s.logger.Error("Failed to format toast notification", "error", err, "message", message)
		return
	}
	s.broadcast("toast", toastHTML)
}

// broadcast sends event to every client and drops the ones that fail.
func (s *SSEManager) broadcast(event, data string) {
	// Copy clients list to avoid holding lock during I/O
	s.mu.RLock()
	if len(s.clients) == 0 {
		s.mu.RUnlock()
		return
	}
	clientList := make(map[string]*SSEClient, len(s.clients))
	for id, client := range s.clients {
		clientList[id] = client
	}
	s.mu.RUnlock()

	failedClients := []string{}
	for clientID, client := range clientList {
		if err := s.sendToClient(client, event, data); err != nil {
			s.logger.Warn("Failed to send event to client", "client_id", clientID, "event", event, "error", err)
			failedClients = append(failedClients, clientID)
		}
	}

	for _, clientID := range failedClients {
		s.RemoveClient(clientID)
	}

	s.logger.Debug("Broadcasted event",
		"event", event,
		"total_clients", len(clientList),
		"failed", len(failedClients))
}

// sendToClient sends an SSE message to a specific client
func (s *SSEManager) sendToClient(client *SSEClient, event, data string) error {
	select {
	case <-client.done:
		return fmt.Errorf("client connection closed")
	default:
	}

	var message string
	if event == "keepalive" || event == "connected" {
		// Comments keep the connection open without triggering HTMX swaps
		message = fmt.Sprintf(": %s\n\n", data)
	} else {
		message = fmt.Sprintf("event: %s\ndata: %s\n\n", event, data)
	}

	client.mu.Lock()
	defer client.mu.Unlock()

	if _, err := client.writer.Write([]byte(message)); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	client.flusher.Flush()
	client.lastSent = time.Now()

	return nil
}

// SendKeepAlive sends keep-alive messages to all clients
func (s *SSEManager) SendKeepAlive() {
	s.broadcast("keepalive", time.Now().Format(time.RFC3339))
}

// cleanupRoutine periodically pings clients so dead connections are dropped
func (s *SSEManager) cleanupRoutine(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SendKeepAlive()
		}
	}
}

// HandleSSEConnection handles the SSE endpoint
func (s *SSEManager) HandleSSEConnection(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		clientID = fmt.Sprintf("client_%d", time.Now().UnixNano())
	}

	client := s.AddClient(clientID, w)
	if client == nil {
		http.Error(w, "Failed to establish SSE connection", http.StatusInternalServerError)
		return
	}

	if err := s.sendToClient(client, "connected", fmt.Sprintf("Connected client %s", clientID)); err != nil {
		s.logger.Error("Failed to send initial message", "client_id", clientID, "error", err)
		s.RemoveClient(clientID)
		return
	}

	select {
	case <-r.Context().Done():
	case <-client.done:
	}
	s.RemoveClient(clientID)
}
