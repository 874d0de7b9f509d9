package export

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"reportprint/domain/contracts"
	"reportprint/domain/printjobs"
	"reportprint/logging"
)

const (
	runsSheet  = "Runs"
	itemsSheet = "Items"
)

var (
	runHeaders  = []string{"Run ID", "Target Date", "Printer", "Trigger", "Status", "Total", "Succeeded", "Failed", "Started", "Finished"}
	itemHeaders = []string{"Run ID", "#", "Kind", "File", "Path", "Result"}
)

// HistoryExporter writes run history to an XLSX workbook.
type HistoryExporter struct {
	runs   contracts.RunRepository
	logger *logging.Logger
}

func NewHistoryExporter(runs contracts.RunRepository) *HistoryExporter {
	return &HistoryExporter{
		runs:   runs,
		logger: logging.Default().WithComponent("export"),
	}
}

// ExportXLSX returns a workbook with one row per run on "Runs" and one row
// per attempted job on "Items". limit <= 0 exports every run.
func (e *HistoryExporter) ExportXLSX(ctx context.Context, limit int) ([]byte, error) {
	start := time.Now()

	runs, err := e.runs.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	// NewFile starts with "Sheet1"; rename it instead of leaving an empty tab.
	if err := f.SetSheetName("Sheet1", runsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(runsSheet)
	f.SetActiveSheet(activeIndex)

	writeRow(f, runsSheet, 1, toAny(runHeaders)...)
	writeRow(f, itemsSheet, 1, toAny(itemHeaders)...)

	itemRow := 2
	for i, run := range runs {
		finished := ""
		if run.FinishedAt != nil {
			finished = run.FinishedAt.Format(time.DateTime)
		}
		writeRow(f, runsSheet, i+2,
			run.ID,
			run.TargetDate.Format("2006/01/02"),
			run.Printer,
			string(run.Trigger),
			string(run.Status),
			run.Total,
			run.Succeeded,
			run.Failed,
			run.StartedAt.Format(time.DateTime),
			finished,
		)

		items, err := e.runs.GetRunItems(ctx, run.ID)
		if err != nil {
			return nil, fmt.Errorf("query items of run %s: %w", run.ID, err)
		}
		for _, item := range items {
			writeRow(f, itemsSheet, itemRow,
				item.RunID,
				item.JobIndex+1,
				item.Kind.String(),
				item.DisplayName,
				item.SourcePath,
				itemResult(item),
			)
			itemRow++
		}
	}

	_ = f.SetColWidth(runsSheet, "A", "A", 38) // uuid
	_ = f.SetColWidth(runsSheet, "B", "E", 16)
	_ = f.SetColWidth(runsSheet, "I", "J", 20) // timestamps
	_ = f.SetColWidth(itemsSheet, "A", "A", 38)
	_ = f.SetColWidth(itemsSheet, "D", "D", 32)
	_ = f.SetColWidth(itemsSheet, "E", "E", 60) // path
	_ = f.SetColWidth(itemsSheet, "F", "F", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	e.logger.Info("history exported",
		"runs", len(runs),
		"items", itemRow-2,
		"elapsed_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}

func itemResult(item printjobs.RunItem) string {
	if item.Error == "" {
		return "printed"
	}
	return "failed: " + item.Error
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) {
	for col, v := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
