package submitters

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportprint/logging"
)

type capturedCall struct {
	name string
	args []string
}

func fakeRunner(out string, err error, calls *[]capturedCall) CommandRunner {
	return func(_ context.Context, name string, args ...string) ([]byte, error) {
		*calls = append(*calls, capturedCall{name: name, args: args})
		return []byte(out), err
	}
}

type programInfo struct {
	os.FileInfo
	dir bool
}

func (p programInfo) IsDir() bool { return p.dir }

func statOK(string) (os.FileInfo, error) { return programInfo{}, nil }

func TestPDFToPrinter_Arguments(t *testing.T) {
	// Arrange
	var calls []capturedCall
	s := NewPDFToPrinter(`C:\tools\PDFtoPrinter.exe`, "Office Printer",
		WithRunner(fakeRunner("", nil, &calls)), WithStat(statOK), WithLogger(logging.Discard()))

	// Act
	err := s.Submit(context.Background(), `D:\reports\a\report.pdf`)

	// Assert
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, `C:\tools\PDFtoPrinter.exe`, calls[0].name)
	assert.Equal(t, []string{`D:\reports\a\report.pdf`, "Office Printer"}, calls[0].args)
}

func TestSOffice_Arguments(t *testing.T) {
	// Arrange
	var calls []capturedCall
	s := NewSOffice("/usr/bin/soffice", "Office Printer",
		WithRunner(fakeRunner("", nil, &calls)), WithStat(statOK), WithLogger(logging.Discard()))

	// Act
	err := s.Submit(context.Background(), "/reports/a/notes.docm")

	// Assert
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"--headless", "--pt", "Office Printer", "/reports/a/notes.docm"}, calls[0].args)
}

func TestSubmitter_MissingExecutable(t *testing.T) {
	// Arrange
	var calls []capturedCall
	s := NewSOffice("/nonexistent/soffice", "P",
		WithRunner(fakeRunner("", nil, &calls)), WithLogger(logging.Discard()))

	// Act
	err := s.Submit(context.Background(), "/reports/a.docx")

	// Assert
	assert.ErrorIs(t, err, ErrExecutableNotFound)
	assert.Contains(t, err.Error(), "/nonexistent/soffice")
	assert.Empty(t, calls)
}

func TestSubmitter_NonZeroExitIncludesOutput(t *testing.T) {
	// Arrange
	var calls []capturedCall
	exitErr := errors.New("exit status 1")
	s := NewPDFToPrinter("pdftoprinter", "P",
		WithRunner(fakeRunner("  printer offline\n", exitErr, &calls)), WithStat(statOK), WithLogger(logging.Discard()))

	// Act
	err := s.Submit(context.Background(), "a.pdf")

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, exitErr)
	assert.Equal(t, "PDFtoPrinter failed for a.pdf: exit status 1: printer offline", err.Error())
}

func TestSubmitter_Check(t *testing.T) {
	program := filepath.Join(t.TempDir(), "soffice.com")
	require.NoError(t, os.WriteFile(program, []byte("x"), 0o755))

	tests := []struct {
		name       string
		executable string
		wantErr    bool
	}{
		{"existing program", program, false},
		{"missing program", filepath.Join(t.TempDir(), "missing.exe"), true},
		{"directory", t.TempDir(), true},
		{"empty path", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewSOffice(tt.executable, "P", WithLogger(logging.Discard())).Check()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrExecutableNotFound)
				assert.ErrorContains(t, err, "soffice")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSubmitter_CheckUsesStat(t *testing.T) {
	var asked []string
	s := NewPDFToPrinter(`C:\tools\PDFtoPrinter.exe`, "P", WithLogger(logging.Discard()),
		WithStat(func(name string) (os.FileInfo, error) {
			asked = append(asked, name)
			return programInfo{dir: true}, nil
		}))

	err := s.Check()

	assert.ErrorIs(t, err, ErrExecutableNotFound)
	assert.Equal(t, []string{`C:\tools\PDFtoPrinter.exe`}, asked)
}
