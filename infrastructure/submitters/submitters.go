package submitters

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"reportprint/logging"
)

// ErrExecutableNotFound is returned by Check, and by Submit, when the
// configured print program does not exist.
var ErrExecutableNotFound = errors.New("print executable not found")

// CommandRunner executes a program and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	hideWindow(cmd)
	err := cmd.Run()
	return out.Bytes(), err
}

// commandSubmitter is the shared body of both submitters: build the argument
// list, check the executable, run it, and turn a non-zero exit into an error.
type commandSubmitter struct {
	label      string
	executable string
	printer    string
	args       func(executable, printer, path string) []string
	run        CommandRunner
	stat       func(string) (os.FileInfo, error)
	logger     *logging.Logger
}

// Check reports whether the print program exists and is a regular file.
func (s *commandSubmitter) Check() error {
	info, err := s.stat(s.executable)
	if err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s: %s", ErrExecutableNotFound, s.label, s.executable)
	}
	return nil
}

// Submit runs the print program for one file. The program is checked again
// so a file removed mid-run fails only the jobs after it.
func (s *commandSubmitter) Submit(ctx context.Context, path string) error {
	if err := s.Check(); err != nil {
		return err
	}

	args := s.args(s.executable, s.printer, path)
	start := time.Now()
	out, err := s.run(ctx, s.executable, args...)
	s.logger.Debug("print command finished",
		"submitter", s.label,
		"path", path,
		"duration_ms", time.Since(start).Milliseconds(),
		"error", err)

	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%s failed for %s: %w: %s", s.label, path, err, msg)
		}
		return fmt.Errorf("%s failed for %s: %w", s.label, path, err)
	}
	return nil
}

// Option customises a submitter, mostly for tests.
type Option func(*commandSubmitter)

// WithRunner replaces process execution.
func WithRunner(run CommandRunner) Option {
	return func(s *commandSubmitter) { s.run = run }
}

// WithStat replaces the executable existence check.
func WithStat(stat func(string) (os.FileInfo, error)) Option {
	return func(s *commandSubmitter) { s.stat = stat }
}

func WithLogger(logger *logging.Logger) Option {
	return func(s *commandSubmitter) { s.logger = logger }
}

func newCommandSubmitter(label, executable, printer string, args func(string, string, string) []string, opts []Option) *commandSubmitter {
	s := &commandSubmitter{
		label:      label,
		executable: executable,
		printer:    printer,
		args:       args,
		run:        execRunner,
		stat:       os.Stat,
		logger:     logging.Default().WithComponent("submitter"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PDFToPrinter prints PDFs with PDFtoPrinter.exe: `<exe> <file> <printer>`.
type PDFToPrinter struct {
	*commandSubmitter
}

func NewPDFToPrinter(executable, printer string, opts ...Option) *PDFToPrinter {
	return &PDFToPrinter{newCommandSubmitter("PDFtoPrinter", executable, printer,
		func(_, printer, path string) []string {
			return []string{path, printer}
		}, opts)}
}

// SOffice prints office documents with LibreOffice in headless mode:
// `<soffice> --headless --pt <printer> <file>`.
type SOffice struct {
	*commandSubmitter
}

func NewSOffice(executable, printer string, opts ...Option) *SOffice {
	return &SOffice{newCommandSubmitter("soffice", executable, printer,
		func(_, printer, path string) []string {
			return []string{"--headless", "--pt", printer, path}
		}, opts)}
}
