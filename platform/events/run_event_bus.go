package events

import (
	"sync"

	"reportprint/domain/events"
	"reportprint/logging"
)

// RunEventBus provides type-safe event publishing and subscription for print run events
type RunEventBus struct {
	mu     sync.RWMutex
	logger *logging.Logger

	runStartedHandlers  []func(events.RunStartedEvent)
	runProgressHandlers []func(events.RunProgressEvent)
	runFinishedHandlers []func(events.RunFinishedEvent)
}

// NewRunEventBus creates a new typed run event bus
func NewRunEventBus() *RunEventBus {
	return &RunEventBus{
		logger:              logging.Default().WithComponent("run_event_bus"),
		runStartedHandlers:  make([]func(events.RunStartedEvent), 0),
		runProgressHandlers: make([]func(events.RunProgressEvent), 0),
		runFinishedHandlers: make([]func(events.RunFinishedEvent), 0),
	}
}

// Subscribe methods for each event type

func (bus *RunEventBus) OnRunStarted(handler func(events.RunStartedEvent)) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.runStartedHandlers = append(bus.runStartedHandlers, handler)
}

func (bus *RunEventBus) OnRunProgress(handler func(events.RunProgressEvent)) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.runProgressHandlers = append(bus.runProgressHandlers, handler)
}

func (bus *RunEventBus) OnRunFinished(handler func(events.RunFinishedEvent)) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.runFinishedHandlers = append(bus.runFinishedHandlers, handler)
}

// Publish methods for each event type

// PublishRunStarted runs handlers synchronously so subscribers are ready
// before the first progress event arrives.
func (bus *RunEventBus) PublishRunStarted(event events.RunStartedEvent) {
	bus.mu.RLock()
	handlers := make([]func(events.RunStartedEvent), len(bus.runStartedHandlers))
	copy(handlers, bus.runStartedHandlers)
	bus.mu.RUnlock()

	for _, handler := range handlers {
		bus.safely("RunStarted", runID(event.Run), func() { handler(event) })
	}
}

// PublishRunProgress runs handlers synchronously, in subscription order, so
// every subscriber sees progress events in the order the worker emitted them.
func (bus *RunEventBus) PublishRunProgress(event events.RunProgressEvent) {
	bus.mu.RLock()
	handlers := make([]func(events.RunProgressEvent), len(bus.runProgressHandlers))
	copy(handlers, bus.runProgressHandlers)
	bus.mu.RUnlock()

	for _, handler := range handlers {
		bus.safely("RunProgress", event.RunID, func() { handler(event) })
	}
}

func (bus *RunEventBus) PublishRunFinished(event events.RunFinishedEvent) {
	bus.mu.RLock()
	handlers := make([]func(events.RunFinishedEvent), len(bus.runFinishedHandlers))
	copy(handlers, bus.runFinishedHandlers)
	bus.mu.RUnlock()

	// Execute handlers asynchronously to avoid blocking the publisher
	for _, handler := range handlers {
		go func(h func(events.RunFinishedEvent)) {
			bus.safely("RunFinished", runID(event.Run), func() { h(event) })
		}(handler)
	}
}

func (bus *RunEventBus) safely(eventName, id string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			bus.logger.Error("Event handler panicked in "+eventName,
				"run_id", id,
				"panic", r)
		}
	}()
	fn()
}
