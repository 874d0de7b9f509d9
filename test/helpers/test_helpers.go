package helpers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"reportprint/domain/printjobs"
)

// TestData provides simple builders for test data
type TestData struct{}

// NewTestData creates a test data builder
func NewTestData() *TestData {
	return &TestData{}
}

// TargetDate is the report date most tests print for.
func (td *TestData) TargetDate() time.Time {
	return time.Date(2026, 10, 19, 0, 0, 0, 0, time.Local)
}

// SimpleJobs builds one job per path; .pdf files are KindDocumentA, everything else KindDocumentB.
func (td *TestData) SimpleJobs(paths ...string) printjobs.JobList {
	jobs := make(printjobs.JobList, 0, len(paths))
	for _, path := range paths {
		kind := printjobs.KindDocumentB
		if strings.EqualFold(filepath.Ext(path), ".pdf") {
			kind = printjobs.KindDocumentA
		}
		jobs = append(jobs, printjobs.NewJob(kind, path, filepath.Base(path)))
	}
	return jobs
}

// SimpleRun creates a run that started a minute ago
func (td *TestData) SimpleRun(id string, status printjobs.RunStatus) *printjobs.PrintRun {
	return &printjobs.PrintRun{
		ID:         id,
		Printer:    "Office Printer",
		TargetDate: td.TargetDate(),
		Trigger:    printjobs.TriggerManual,
		Status:     status,
		StartedAt:  time.Now().Add(-time.Minute),
	}
}

// WriteReportFile creates path, including parent folders, with its mtime set to modTime.
func WriteReportFile(t testing.TB, path string, modTime time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, os.Chtimes(path, modTime, modTime))
}

