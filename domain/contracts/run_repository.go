package contracts

import (
	"context"

	"reportprint/domain/printjobs"
)

// RunRepository persists print run history.
type RunRepository interface {
	CreateRun(ctx context.Context, run *printjobs.PrintRun) error
	RecordItem(ctx context.Context, item printjobs.RunItem) error
	FinishRun(ctx context.Context, run *printjobs.PrintRun) error

	GetRun(ctx context.Context, runID string) (*printjobs.PrintRun, error)
	ListRuns(ctx context.Context, limit int) ([]*printjobs.PrintRun, error)
	GetRunItems(ctx context.Context, runID string) ([]printjobs.RunItem, error)
}
