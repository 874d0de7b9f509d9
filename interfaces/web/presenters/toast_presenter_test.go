package presenters

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportprint/domain/printjobs"
)

func TestToastPresenter_FormatToastNotification_EscapesMessage(t *testing.T) {
	html, err := NewToastPresenter().FormatToastNotification(`Failed to print <a&b>.pdf`, "error")

	require.NoError(t, err)
	assert.Contains(t, html, `data-type="error"`)
	assert.Contains(t, html, "&lt;a&amp;b&gt;.pdf")
	assert.NotContains(t, html, "<a&b>")
	assert.Contains(t, html, `onclick="this.remove()"`)
}

func TestToastPresenter_FormatRunSummary_IsOneLine(t *testing.T) {
	finished := time.Now()
	run := createTestRun("run", printjobs.RunStatusCompleted)
	run.Succeeded = 4
	run.FinishedAt = &finished

	html, err := NewToastPresenter().FormatRunSummary(run)

	require.NoError(t, err)
	assert.NotContains(t, html, "\n", "SSE data must fit on one line")
	assert.Contains(t, html, "4 printed, 0 failed of 4")
}

func TestToastPresenter_FormatRunSummary(t *testing.T) {
	finished := time.Now()

	tests := []struct {
		name        string
		status      printjobs.RunStatus
		failed      int
		expectTitle string
		expectType  string
	}{
		{"clean", printjobs.RunStatusCompleted, 0, "Print Run Complete", "success"},
		{"failures", printjobs.RunStatusCompleted, 2, "Print Run Finished With Errors", "error"},
		{"cancelled", printjobs.RunStatusCancelled, 0, "Print Run Cancelled", "warning"},
	}

	presenter := NewToastPresenter()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := createTestRun("run", tt.status)
			run.Succeeded = 4 - tt.failed
			run.Failed = tt.failed
			run.FinishedAt = &finished

			html, err := presenter.FormatRunSummary(run)

			require.NoError(t, err)
			assert.Contains(t, html, tt.expectTitle)
			assert.Contains(t, html, `data-type="`+tt.expectType+`"`)
			assert.Contains(t, html, "failed of 4")
		})
	}
}
