package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"reportprint/database"
	"reportprint/domain/contracts"
	"reportprint/domain/printjobs"
)

const targetDateLayout = "2006-01-02"

const runColumns = `id, printer, target_date, trigger_source, status, total, succeeded, failed, started_at, finished_at`

// SqlRunRepository implements contracts.RunRepository with read/write separation.
type SqlRunRepository struct {
	*BaseRepository
}

// NewSqlRunRepository creates a new run history repository.
func NewSqlRunRepository(database *database.Database) contracts.RunRepository {
	return &SqlRunRepository{
		BaseRepository: NewBaseRepository(database),
	}
}

// CreateRun inserts the run in its initial state.
func (r *SqlRunRepository) CreateRun(ctx context.Context, run *printjobs.PrintRun) error {
	_, err := r.WriteDB().ExecContext(ctx, `
		INSERT INTO print_runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Printer,
		run.TargetDate.Format(targetDateLayout),
		string(run.Trigger),
		string(run.Status),
		run.Total,
		run.Succeeded,
		run.Failed,
		run.StartedAt,
		r.ToNullTime(run.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create run %s: %w", run.ID, err)
	}
	return nil
}

// RecordItem stores the terminal outcome of one job and bumps the run's
// counters in the same transaction, so an interrupted run still has accurate
// totals.
func (r *SqlRunRepository) RecordItem(ctx context.Context, item printjobs.RunItem) error {
	recordedAt := item.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}

	succeeded, failed := 1, 0
	if item.Error != "" {
		succeeded, failed = 0, 1
	}

	err := r.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO print_run_items (run_id, job_index, kind, path, name, error, recorded_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			item.RunID,
			item.JobIndex,
			item.Kind.String(),
			item.SourcePath,
			item.DisplayName,
			item.Error,
			recordedAt,
		); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE print_runs
			SET succeeded = succeeded + ?, failed = failed + ?
			WHERE id = ?`,
			succeeded, failed, item.RunID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return contracts.ErrRunNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record item %d of run %s: %w", item.JobIndex, item.RunID, err)
	}
	return nil
}

// FinishRun writes the terminal status and counters.
func (r *SqlRunRepository) FinishRun(ctx context.Context, run *printjobs.PrintRun) error {
	res, err := r.WriteDB().ExecContext(ctx, `
		UPDATE print_runs
		SET status = ?, succeeded = ?, failed = ?, finished_at = ?
		WHERE id = ?`,
		string(run.Status),
		run.Succeeded,
		run.Failed,
		r.ToNullTime(run.FinishedAt),
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", run.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", contracts.ErrRunNotFound, run.ID)
	}
	return nil
}

// GetRun retrieves a single run.
func (r *SqlRunRepository) GetRun(ctx context.Context, runID string) (*printjobs.PrintRun, error) {
	row := r.ReadDB().QueryRowContext(ctx, `SELECT `+runColumns+` FROM print_runs WHERE id = ?`, runID)

	run, err := r.scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", contracts.ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", runID, err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first. A non-positive limit returns all.
func (r *SqlRunRepository) ListRuns(ctx context.Context, limit int) ([]*printjobs.PrintRun, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.ReadDB().QueryContext(ctx,
		`SELECT `+runColumns+` FROM print_runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*printjobs.PrintRun
	for rows.Next() {
		run, err := r.scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRunItems returns the recorded items of a run in job order.
func (r *SqlRunRepository) GetRunItems(ctx context.Context, runID string) ([]printjobs.RunItem, error) {
	rows, err := r.ReadDB().QueryContext(ctx, `
		SELECT run_id, job_index, kind, path, name, error, recorded_at
		FROM print_run_items
		WHERE run_id = ?
		ORDER BY job_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get items of run %s: %w", runID, err)
	}
	defer rows.Close()

	var items []printjobs.RunItem
	for rows.Next() {
		var (
			item printjobs.RunItem
			kind string
		)
		if err := rows.Scan(&item.RunID, &item.JobIndex, &kind, &item.SourcePath, &item.DisplayName, &item.Error, &item.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run item: %w", err)
		}
		if item.Kind, err = printjobs.ParseKind(kind); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SqlRunRepository) scanRun(row rowScanner) (*printjobs.PrintRun, error) {
	var (
		run        printjobs.PrintRun
		targetDate string
		trigger    string
		status     string
		finishedAt sql.NullTime
	)
	err := row.Scan(
		&run.ID,
		&run.Printer,
		&targetDate,
		&trigger,
		&status,
		&run.Total,
		&run.Succeeded,
		&run.Failed,
		&run.StartedAt,
		&finishedAt,
	)
	if err != nil {
		return nil, err
	}

	run.TargetDate, err = time.ParseInLocation(targetDateLayout, targetDate, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid target date %q: %w", targetDate, err)
	}
	run.Trigger = printjobs.Trigger(trigger)
	run.Status = printjobs.RunStatus(status)
	run.FinishedAt = r.FromNullTime(finishedAt)
	return &run, nil
}
