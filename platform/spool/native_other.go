//go:build !windows

package spool

import (
	"context"
	"fmt"
	"runtime"
)

// NativeStrategy has no spooler API to call outside Windows; the chain falls
// through to the shell strategy.
type NativeStrategy struct{}

func NewNativeStrategy() *NativeStrategy { return &NativeStrategy{} }

func (s *NativeStrategy) Name() string { return "native" }

func (s *NativeStrategy) PendingCount(context.Context, string) (int, error) {
	return 0, fmt.Errorf("%w: no native spooler API on %s", ErrStrategyUnavailable, runtime.GOOS)
}
