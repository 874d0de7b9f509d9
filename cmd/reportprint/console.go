package main

import (
	"fmt"
	"io"
	"sync"

	domainevents "reportprint/domain/events"
	"reportprint/domain/printjobs"
	"reportprint/platform/events"
)

// consoleProgress prints one line per worker event.
type consoleProgress struct {
	out   io.Writer
	mu    sync.Mutex
	total int
}

func newConsoleProgress(out io.Writer) *consoleProgress {
	return &consoleProgress{out: out}
}

func (c *consoleProgress) RegisterHandlers(bus *events.RunEventBus) {
	bus.OnRunStarted(c.handleRunStarted)
	bus.OnRunProgress(c.handleRunProgress)
}

func (c *consoleProgress) handleRunStarted(event domainevents.RunStartedEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total = len(event.Jobs)
	if event.Run != nil {
		fmt.Fprintf(c.out, "Sending %d file(s) to %s\n", c.total, event.Run.Printer)
	}
}

func (c *consoleProgress) handleRunProgress(event domainevents.RunProgressEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ev := event.Event
	switch ev.Type {
	case printjobs.EventInit:
		c.total = ev.Total
	case printjobs.EventStartItem:
		fmt.Fprintf(c.out, "[%d/%d] %s\n", ev.Index+1, c.total, ev.Name)
	case printjobs.EventErrorItem:
		fmt.Fprintf(c.out, "      failed: %s\n", ev.Message)
	case printjobs.EventSentAll:
		fmt.Fprintln(c.out, "All files handed to the printer, waiting for the queue to empty...")
	}
}
