package pages

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportprint/interfaces/web/presenters"
)

func render(t *testing.T, c interface {
	Render(ctx context.Context, w io.Writer) error
}) string {
	t.Helper()
	var buf strings.Builder
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestProgressPanel_ActiveRun(t *testing.T) {
	html := render(t, ProgressPanel(&presenters.RunStatusView{
		Printer:    "Office Printer",
		TargetDate: "2026/10/19",
		Stage:      "Sending",
		Progress:   "1/3",
		Percentage: 33,
		Current:    "b<1>.pdf",
		IsActive:   true,
		Items: []presenters.RunItemView{
			{Index: 0, Name: "a.pdf", Result: "printed"},
			{Index: 1, Name: "c.pdf", Result: "failed", Error: "exit status 1"},
		},
	}))

	assert.Contains(t, html, `hx-get="/partials/progress"`)
	assert.Contains(t, html, `<progress class="w-full h-3" max="100" value="33">`)
	assert.Contains(t, html, "b&lt;1&gt;.pdf")
	assert.Contains(t, html, `hx-post="/api/cancel"`)
	assert.Contains(t, html, "<td>1</td><td>a.pdf</td><td>printed</td>")
	assert.Contains(t, html, "<td>2</td><td>c.pdf</td><td>failed: exit status 1</td>")
}

func TestProgressPanel_CancellingHidesButton(t *testing.T) {
	html := render(t, ProgressPanel(&presenters.RunStatusView{IsActive: true, Cancelling: true, Stage: "Cancelling"}))

	assert.NotContains(t, html, "/api/cancel")
}

func TestProgressPanel_NoRun(t *testing.T) {
	html := render(t, ProgressPanel(nil))

	assert.Contains(t, html, "No print run yet.")
	assert.True(t, strings.HasSuffix(html, "</section>"))
}

func TestHistoryPage_WrapsLayout(t *testing.T) {
	html := render(t, HistoryPage(&presenters.RunListView{Runs: []presenters.RunSummaryView{
		{TargetDate: "2026/10/19", Trigger: "scheduled", Status: "completed", Total: 3, Succeeded: 3},
	}}))

	assert.Contains(t, html, `<html lang="en">`)
	assert.Contains(t, html, `<title>Print history</title>`)
	assert.Contains(t, html, `aria-selected="true" class="px-3 py-2 bg-blue-50`)
	assert.Contains(t, html, "3/3")
	assert.Contains(t, html, `sse-connect="/events"`)
}

func TestProgressPage_MarksActiveTab(t *testing.T) {
	html := render(t, ProgressPage(nil))

	assert.Contains(t, html, `<a href="/" role="tab" aria-selected="true" class="px-3 py-2 bg-blue-50`)
	assert.Contains(t, html, `<a href="/history" role="tab" aria-selected="false" class="px-3 py-2 text-slate-600`)
	assert.Contains(t, html, "No print run yet.")
}
