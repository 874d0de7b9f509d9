package scanner

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportprint/domain/printjobs"
	"reportprint/test/helpers"
)

func fixedPages(n int) PageCounter {
	return func(string) (int, error) { return n, nil }
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2026/10/19 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.Local), d)

	_, err = ParseDate("2026-10-19")
	assert.Error(t, err)
}

func TestCollect_MatchesPDFsByDateAndAddsCompanions(t *testing.T) {
	// Arrange
	root := t.TempDir()
	target := time.Date(2026, 10, 19, 14, 30, 0, 0, time.Local)
	other := target.AddDate(0, 0, -1)

	helpers.WriteReportFile(t, filepath.Join(root, "b-site", "report.pdf"), target)
	helpers.WriteReportFile(t, filepath.Join(root, "b-site", "old.pdf"), other)
	helpers.WriteReportFile(t, filepath.Join(root, "b-site", "notes.docm"), other)
	helpers.WriteReportFile(t, filepath.Join(root, "b-site", "~$notes.docm"), target)
	helpers.WriteReportFile(t, filepath.Join(root, "b-site", "readme.txt"), target)
	helpers.WriteReportFile(t, filepath.Join(root, "a-site", "summary.pdf"), target)
	helpers.WriteReportFile(t, filepath.Join(root, "a-site", "detail.PDF"), target)
	helpers.WriteReportFile(t, filepath.Join(root, "c-site", "stale.pdf"), other)
	helpers.WriteReportFile(t, filepath.Join(root, "c-site", "letter.docx"), target)
	helpers.WriteReportFile(t, filepath.Join(root, "loose.pdf"), target)

	s := New(fixedPages(2))

	// Act
	result, err := s.Collect(root, target)

	// Assert
	require.NoError(t, err)
	var names []string
	for _, j := range result.Jobs {
		names = append(names, j.DisplayName)
	}
	assert.Equal(t, []string{"detail.PDF", "summary.pdf", "report.pdf", "notes.docm"}, names)
	assert.Equal(t, printjobs.KindDocumentA, result.Jobs[0].Kind)
	assert.Equal(t, 2, result.Jobs[0].PageCount)
	assert.Equal(t, printjobs.KindDocumentB, result.Jobs[3].Kind)
	assert.Zero(t, result.Jobs[3].PageCount)
	assert.Equal(t, []string{"a-site"}, result.MissingCompanions)
}

func TestCollect_PageCountFailureIsNotFatal(t *testing.T) {
	// Arrange
	root := t.TempDir()
	target := time.Date(2026, 10, 19, 9, 0, 0, 0, time.Local)
	helpers.WriteReportFile(t, filepath.Join(root, "site", "broken.pdf"), target)
	s := New(func(string) (int, error) { return 0, errors.New("not a pdf") })

	// Act
	result, err := s.Collect(root, target)

	// Assert
	require.NoError(t, err)
	require.Len(t, result.Jobs, 1)
	assert.Zero(t, result.Jobs[0].PageCount)
}

func TestCollect_MissingRoot(t *testing.T) {
	_, err := New(fixedPages(1)).Collect(filepath.Join(t.TempDir(), "nope"), time.Now())
	assert.Error(t, err)
}

func TestSelect(t *testing.T) {
	jobs := printjobs.JobList{
		printjobs.NewJob(printjobs.KindDocumentA, "/r/a.pdf", "a.pdf"),
		printjobs.NewJob(printjobs.KindDocumentB, "/r/a.docx", "a.docx"),
		printjobs.NewJob(printjobs.KindDocumentA, "/r/draft-b.pdf", "draft-b.pdf"),
	}

	tests := []struct {
		name string
		opts SelectOptions
		want []string
	}{
		{"no filter", SelectOptions{}, []string{"a.pdf", "a.docx", "draft-b.pdf"}},
		{"pdf only", SelectOptions{Kinds: []printjobs.Kind{printjobs.KindDocumentA}}, []string{"a.pdf", "draft-b.pdf"}},
		{"exclude drafts", SelectOptions{Exclude: []string{"draft-*"}}, []string{"a.pdf", "a.docx"}},
		{"word minus all", SelectOptions{Kinds: []printjobs.Kind{printjobs.KindDocumentB}, Exclude: []string{"*.docx"}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(jobs, tt.opts)
			require.NoError(t, err)
			var names []string
			for _, j := range got {
				names = append(names, j.DisplayName)
			}
			assert.Equal(t, tt.want, names)
		})
	}

	_, err := Select(jobs, SelectOptions{Exclude: []string{"[bad"}})
	assert.Error(t, err)
}
