package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound reports a run id with no history entry.
var ErrNotFound = errors.New("run not found")

const runColumns = "id, list_file, strategy, resource_filter, status, started_at, finished_at, sections, failed_sections, converted, skipped, log_path"

// BeginRun inserts run with status running.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		return errors.New("begin run: empty id")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	_, err := s.exec(ctx,
		`INSERT INTO runs (id, list_file, strategy, resource_filter, status, started_at, sections, log_path)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.ListFile,
		run.Strategy,
		nullableString(run.Filter),
		RunRunning,
		formatTime(run.StartedAt),
		run.Sections,
		nullableString(run.LogPath),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecordConversion appends one per-file outcome to a run.
func (s *Store) RecordConversion(ctx context.Context, c Conversion) error {
	_, err := s.exec(ctx,
		`INSERT INTO conversions (run_id, section, resource_type, source, output, reason, error_message, duration_ms)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.RunID,
		c.Section,
		c.ResourceType,
		c.Source,
		nullableString(c.Output),
		nullableString(c.Reason),
		nullableString(c.ErrorMessage),
		c.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert conversion: %w", err)
	}
	return nil
}

// FinishRun stores the final status and totals of run.
func (s *Store) FinishRun(ctx context.Context, run Run) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	res, err := s.exec(ctx,
		`UPDATE runs
         SET status = ?, finished_at = ?, sections = ?, failed_sections = ?, converted = ?, skipped = ?
         WHERE id = ?`,
		run.Status,
		formatTime(run.FinishedAt),
		run.Sections,
		run.FailedSections,
		run.Converted,
		run.Skipped,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run %s: %w", run.ID, ErrNotFound)
	}
	return nil
}

// Get returns one run by id.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Conversions returns the per-file outcomes of a run in insertion order.
// When failedOnly is set only skipped files are returned.
func (s *Store) Conversions(ctx context.Context, runID string, failedOnly bool) ([]Conversion, error) {
	query := `SELECT run_id, section, resource_type, source, output, reason, error_message, duration_ms
              FROM conversions WHERE run_id = ?`
	if failedOnly {
		query += ` AND error_message IS NOT NULL`
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("list conversions: %w", err)
	}
	defer rows.Close()

	var out []Conversion
	for rows.Next() {
		var (
			c          Conversion
			output     sql.NullString
			reason     sql.NullString
			errMessage sql.NullString
			durationMS int64
		)
		if err := rows.Scan(&c.RunID, &c.Section, &c.ResourceType, &c.Source, &output, &reason, &errMessage, &durationMS); err != nil {
			return nil, fmt.Errorf("scan conversion: %w", err)
		}
		c.Output = output.String
		c.Reason = reason.String
		c.ErrorMessage = errMessage.String
		c.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, c)
	}
	return out, rows.Err()
}

// Prune deletes all but the newest keep runs and their conversions.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.exec(ctx,
		`DELETE FROM runs WHERE id NOT IN (
             SELECT id FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?
         )`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	if _, err := s.exec(ctx, `DELETE FROM conversions WHERE run_id NOT IN (SELECT id FROM runs)`); err != nil {
		return n, fmt.Errorf("prune conversions: %w", err)
	}
	return n, nil
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run      Run
		filter   sql.NullString
		status   string
		started  sql.NullString
		finished sql.NullString
		logPath  sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.ListFile,
		&run.Strategy,
		&filter,
		&status,
		&started,
		&finished,
		&run.Sections,
		&run.FailedSections,
		&run.Converted,
		&run.Skipped,
		&logPath,
	); err != nil {
		return Run{}, err
	}
	run.Filter = filter.String
	run.Status = RunStatus(status)
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseTime(finished)
	run.LogPath = logPath.String
	return run, nil
}
