package spool

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
)

// CommandRunner runs an external command and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// ShellStrategy counts jobs by asking the OS print listing. On Windows this
// is PowerShell's Get-PrintJob, elsewhere CUPS' lpstat.
type ShellStrategy struct {
	goos string
	run  CommandRunner
}

// NewShellStrategy creates a shell strategy for the current OS.
func NewShellStrategy() *ShellStrategy {
	return &ShellStrategy{goos: runtime.GOOS, run: execRunner}
}

// NewShellStrategyWith lets callers pick the OS flavour and command runner.
func NewShellStrategyWith(goos string, run CommandRunner) *ShellStrategy {
	return &ShellStrategy{goos: goos, run: run}
}

func (s *ShellStrategy) Name() string { return "shell" }

func (s *ShellStrategy) PendingCount(ctx context.Context, printer string) (int, error) {
	if s.goos == "windows" {
		return s.powershellCount(ctx, printer)
	}
	return s.lpstatCount(ctx, printer)
}

func (s *ShellStrategy) powershellCount(ctx context.Context, printer string) (int, error) {
	safeName := strings.ReplaceAll(printer, "'", "''")
	out, err := s.run(ctx, "powershell",
		"-NoProfile",
		"-Command",
		fmt.Sprintf("(Get-PrintJob -PrinterName '%s' | Measure-Object).Count", safeName),
	)
	if err != nil {
		return 0, wrapExecError("powershell", err)
	}
	return parseCount(out)
}

func (s *ShellStrategy) lpstatCount(ctx context.Context, printer string) (int, error) {
	out, err := s.run(ctx, "lpstat", "-o", printer)
	if err != nil {
		return 0, wrapExecError("lpstat", err)
	}
	return countLines(out), nil
}

func wrapExecError(name string, err error) error {
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("%w: %s not found", ErrStrategyUnavailable, name)
	}
	return fmt.Errorf("%s: %w", name, err)
}

// parseCount reads a single integer. Empty output counts as zero jobs.
func parseCount(out []byte) (int, error) {
	text := strings.TrimSpace(string(out))
	if text == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("unexpected spool output %q: %w", text, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("unexpected spool output %q", text)
	}
	return n, nil
}

func countLines(out []byte) int {
	n := 0
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) != "" {
			n++
		}
	}
	return n
}
