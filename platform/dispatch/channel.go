package dispatch

import (
	"sync"
	"sync/atomic"

	"reportprint/domain/printjobs"
)

// CancellationFlag is set at most once per run and never cleared.
type CancellationFlag struct {
	set  atomic.Bool
	done chan struct{}
}

func NewCancellationFlag() *CancellationFlag {
	return &CancellationFlag{done: make(chan struct{})}
}

// Set raises the flag. It returns true only for the call that flipped it.
func (f *CancellationFlag) Set() bool {
	if f.set.CompareAndSwap(false, true) {
		close(f.done)
		return true
	}
	return false
}

func (f *CancellationFlag) IsSet() bool {
	return f.set.Load()
}

// Done is closed when the flag is set.
func (f *CancellationFlag) Done() <-chan struct{} {
	return f.done
}

// EventChannel is an unbounded FIFO between the submission worker and the
// foreground loop. Send never blocks and nothing is dropped.
type EventChannel struct {
	mu    sync.Mutex
	queue []printjobs.ProgressEvent
}

func NewEventChannel() *EventChannel {
	return &EventChannel{}
}

func (c *EventChannel) Send(ev printjobs.ProgressEvent) {
	c.mu.Lock()
	c.queue = append(c.queue, ev)
	c.mu.Unlock()
}

// Drain removes and returns every queued event in arrival order.
func (c *EventChannel) Drain() []printjobs.ProgressEvent {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.queue
	c.queue = nil
	return out
}
