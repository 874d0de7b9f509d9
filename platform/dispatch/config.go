package dispatch

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned before a run starts when Config is unusable.
var ErrInvalidConfig = errors.New("invalid dispatch configuration")

// Config holds the tuning knobs of a dispatch run.
type Config struct {
	// QueueLimit pauses submission while the printer has at least this many pending jobs.
	QueueLimit int
	// QueueWaitInterval is the sleep between spooler checks while the queue is full.
	QueueWaitInterval time.Duration
	// EventPollInterval is how often the foreground drains the event channel.
	EventPollInterval time.Duration
	// SpoolCheckInterval is how often the foreground checks for a drained spooler.
	SpoolCheckInterval time.Duration
	// EmptyStreakRequired is the number of consecutive empty readings that confirm completion.
	EmptyStreakRequired int
	// SubmitRatePerSec caps submissions per second. Zero disables the cap.
	SubmitRatePerSec float64
}

// DefaultConfig returns the stock settings.
func DefaultConfig() Config {
	return Config{
		QueueLimit:          6,
		QueueWaitInterval:   time.Second,
		EventPollInterval:   150 * time.Millisecond,
		SpoolCheckInterval:  700 * time.Millisecond,
		EmptyStreakRequired: 3,
	}
}

// Validate checks every field and reports the first problem.
func (c Config) Validate() error {
	switch {
	case c.QueueLimit < 1:
		return fmt.Errorf("%w: queue limit must be at least 1, got %d", ErrInvalidConfig, c.QueueLimit)
	case c.QueueWaitInterval <= 0:
		return fmt.Errorf("%w: queue wait interval must be positive", ErrInvalidConfig)
	case c.EventPollInterval <= 0:
		return fmt.Errorf("%w: event poll interval must be positive", ErrInvalidConfig)
	case c.SpoolCheckInterval <= 0:
		return fmt.Errorf("%w: spool check interval must be positive", ErrInvalidConfig)
	case c.EmptyStreakRequired < 1:
		return fmt.Errorf("%w: empty streak must be at least 1, got %d", ErrInvalidConfig, c.EmptyStreakRequired)
	case c.SubmitRatePerSec < 0:
		return fmt.Errorf("%w: submit rate must not be negative", ErrInvalidConfig)
	}
	return nil
}
