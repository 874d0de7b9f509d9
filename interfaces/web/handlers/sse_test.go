package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportprint/domain/printjobs"
)

func TestSSEManager_BroadcastsToConnectedClients(t *testing.T) {
	// Arrange
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	manager := NewSSEManager(ctx)
	w := httptest.NewRecorder()
	require.NotNil(t, manager.AddClient("c1", w))

	finished := time.Now()
	run := &printjobs.PrintRun{ID: "run-1", Status: printjobs.RunStatusCompleted, Total: 2, Succeeded: 2, FinishedAt: &finished, StartedAt: finished}

	// Act
	manager.BroadcastProgress("run-1", printjobs.DoneItemEvent(0, "a.pdf"))
	manager.BroadcastToast("Printing 2 file(s)", "info")
	manager.BroadcastRunFinished(run)

	// Assert
	body := w.Body.String()
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Contains(t, body, "event: progress\ndata: {\"run_id\":\"run-1\",\"type\":\"done_item\",\"index\":0,\"name\":\"a.pdf\"}\n\n")
	assert.Contains(t, body, "event: toast\ndata: ")
	assert.Contains(t, body, "Printing 2 file(s)")
	assert.Contains(t, body, "event: run-finished\ndata: ")
	assert.Contains(t, body, "Print Run Complete")
}

func TestSSEManager_RemovedClientGetsNothing(t *testing.T) {
	// Arrange
	manager := NewSSEManager(context.Background())
	w := httptest.NewRecorder()
	manager.AddClient("c1", w)
	manager.RemoveClient("c1")
	manager.RemoveClient("c1")

	// Act
	manager.BroadcastToast("hello", "info")

	// Assert
	assert.Equal(t, 0, manager.ClientCount())
	assert.NotContains(t, w.Body.String(), "hello")
}

func TestSSEManager_CloseAll(t *testing.T) {
	manager := NewSSEManager(context.Background())
	manager.AddClient("a", httptest.NewRecorder())
	manager.AddClient("b", httptest.NewRecorder())

	manager.CloseAll()

	assert.Equal(t, 0, manager.ClientCount())
}

func TestSSEManager_HandleSSEConnection_EndsWithRequest(t *testing.T) {
	// Arrange
	manager := NewSSEManager(context.Background())
	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events?client_id=browser-1", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		manager.HandleSSEConnection(w, req)
		close(done)
	}()

	require.Eventually(t, func() bool { return manager.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	// Act
	cancel()

	// Assert
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler did not return after the request ended")
	}
	assert.Equal(t, 0, manager.ClientCount())
	assert.True(t, strings.HasPrefix(w.Body.String(), ": Connected client browser-1"))
}
