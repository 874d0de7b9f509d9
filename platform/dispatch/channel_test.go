package dispatch

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"reportprint/domain/printjobs"
)

func TestEventChannel_PreservesOrder(t *testing.T) {
	// Arrange
	ch := NewEventChannel()

	// Act
	ch.Send(printjobs.InitEvent(2))
	ch.Send(printjobs.StartItemEvent(0, "a"))
	first := ch.Drain()
	ch.Send(printjobs.SentAllEvent())
	rest := ch.Drain()

	// Assert
	assert.Equal(t, []printjobs.ProgressEvent{printjobs.InitEvent(2), printjobs.StartItemEvent(0, "a")}, first)
	assert.Equal(t, []printjobs.ProgressEvent{printjobs.SentAllEvent()}, rest)
	assert.Empty(t, ch.Drain())
}

func TestEventChannel_ConcurrentProducerNeverDrops(t *testing.T) {
	// Arrange
	ch := NewEventChannel()
	const n = 500

	// Act
	go func() {
		for i := 0; i < n; i++ {
			ch.Send(printjobs.DoneItemEvent(i, "x"))
		}
	}()
	var got []printjobs.ProgressEvent
	deadline := time.Now().Add(2 * time.Second)
	for len(got) < n && time.Now().Before(deadline) {
		got = append(got, ch.Drain()...)
	}

	// Assert
	assert.Len(t, got, n)
	for i, ev := range got {
		assert.Equal(t, i, ev.Index)
	}
}

func TestCancellationFlag_SetOnce(t *testing.T) {
	// Arrange
	flag := NewCancellationFlag()
	var wg sync.WaitGroup
	var mu sync.Mutex
	flips := 0

	// Act
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if flag.Set() {
				mu.Lock()
				flips++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Assert
	assert.Equal(t, 1, flips)
	assert.True(t, flag.IsSet())
	select {
	case <-flag.Done():
	default:
		t.Fatal("done channel not closed")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero queue limit", func(c *Config) { c.QueueLimit = 0 }},
		{"zero wait", func(c *Config) { c.QueueWaitInterval = 0 }},
		{"zero event poll", func(c *Config) { c.EventPollInterval = 0 }},
		{"zero spool check", func(c *Config) { c.SpoolCheckInterval = 0 }},
		{"zero streak", func(c *Config) { c.EmptyStreakRequired = 0 }},
		{"negative rate", func(c *Config) { c.SubmitRatePerSec = -1 }},
	}

	assert.NoError(t, DefaultConfig().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}
