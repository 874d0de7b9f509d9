// Package spool answers "how many jobs are waiting on this printer" using an
// ordered chain of query strategies.
package spool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"reportprint/domain/printjobs"
	"reportprint/logging"
)

// ErrStrategyUnavailable is returned by a strategy that cannot run on this
// host at all (missing API, missing binary).
var ErrStrategyUnavailable = errors.New("spool strategy unavailable")

// Strategy is one way of counting pending jobs. Implementations must not
// modify the queue.
type Strategy interface {
	Name() string
	PendingCount(ctx context.Context, printer string) (int, error)
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc struct {
	Label string
	Fn    func(ctx context.Context, printer string) (int, error)
}

func (f StrategyFunc) Name() string { return f.Label }

func (f StrategyFunc) PendingCount(ctx context.Context, printer string) (int, error) {
	return f.Fn(ctx, printer)
}

// Monitor tries each strategy in order and returns the first answer.
type Monitor struct {
	strategies []Strategy
	logger     *logging.Logger
}

// NewMonitor creates a monitor over the given strategies, tried in order.
func NewMonitor(strategies ...Strategy) *Monitor {
	return &Monitor{
		strategies: strategies,
		logger:     logging.Default().WithComponent("spool_monitor"),
	}
}

// NewDefaultMonitor uses the native spooler API first, then the OS shell listing.
func NewDefaultMonitor() *Monitor {
	return NewMonitor(NewNativeStrategy(), NewShellStrategy())
}

// NewMonitorByName builds a monitor from strategy names ("native", "shell").
// An empty list means the default chain.
func NewMonitorByName(names []string) (*Monitor, error) {
	if len(names) == 0 {
		return NewDefaultMonitor(), nil
	}

	strategies := make([]Strategy, 0, len(names))
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "native":
			strategies = append(strategies, NewNativeStrategy())
		case "shell":
			strategies = append(strategies, NewShellStrategy())
		default:
			return nil, fmt.Errorf("unknown spool strategy: %q", name)
		}
	}
	return NewMonitor(strategies...), nil
}

// Strategies returns the strategy names in query order.
func (m *Monitor) Strategies() []string {
	names := make([]string, len(m.strategies))
	for i, s := range m.strategies {
		names[i] = s.Name()
	}
	return names
}

// PendingCount returns the number of jobs queued on printer, or an Unknown
// state when every strategy failed. Failures are never returned as errors.
func (m *Monitor) PendingCount(ctx context.Context, printer string) printjobs.SpoolState {
	if printer == "" {
		return printjobs.UnknownSpool
	}

	for _, s := range m.strategies {
		if ctx.Err() != nil {
			return printjobs.UnknownSpool
		}

		count, err := s.PendingCount(ctx, printer)
		if err != nil {
			m.logger.Spool("spool strategy failed", "strategy", s.Name(), "printer", printer, "error", err)
			continue
		}
		if count < 0 {
			m.logger.Spool("spool strategy returned negative count", "strategy", s.Name(), "count", count)
			continue
		}

		m.logger.Spool("spool queried", "strategy", s.Name(), "printer", printer, "pending", count)
		return printjobs.KnownSpool(count)
	}

	return printjobs.UnknownSpool
}

// IsEmpty is true only when a query succeeded and reported zero jobs. Any
// failure or ambiguity reads as "not empty" so completion is never declared
// on missing data.
func (m *Monitor) IsEmpty(ctx context.Context, printer string) bool {
	state := m.PendingCount(ctx, printer)
	return state.Known && state.Count == 0
}
