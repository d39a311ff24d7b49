package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a run ID is not in the store.
var ErrNotFound = errors.New("run not found")

const runColumns = `id, manifest, compiler, started_at, policy, fingerprint, passed, failed, not_run, exit_code`

// ListRuns returns up to limit runs, newest first. A limit of zero or less
// returns every run. Case results are not loaded.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return collectRuns(rows)
}

// ListRunsForManifest is ListRuns restricted to one manifest name.
func (s *Store) ListRunsForManifest(ctx context.Context, manifest string, limit int) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE manifest = ?
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, manifest, sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list runs for %s: %w", manifest, err)
	}
	return collectRuns(rows)
}

// ReadRun loads one run with its case results in catalog order.
func (s *Store) ReadRun(ctx context.Context, id string) (RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("read run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("read run %s: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, path, kind, passed, reason, expected, actual, duration_ms
		FROM case_results
		WHERE run_id = ?
		ORDER BY seq ASC
	`, id)
	if err != nil {
		return RunRecord{}, fmt.Errorf("read run %s: %w", id, err)
	}
	defer rows.Close()

	run.Results = []CaseRecord{}
	for rows.Next() {
		var c CaseRecord
		var ms int64
		if err := rows.Scan(&c.Seq, &c.Path, &c.Kind, &c.Passed, &c.Reason, &c.Expected, &c.Actual, &ms); err != nil {
			return RunRecord{}, fmt.Errorf("read run %s: scan case: %w", id, err)
		}
		c.Duration = time.Duration(ms) * time.Millisecond
		run.Results = append(run.Results, c)
	}
	if err := rows.Err(); err != nil {
		return RunRecord{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return run, nil
}

// sqlLimit maps "no limit" to SQLite's -1.
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (RunRecord, error) {
	var r RunRecord
	var started string
	err := row.Scan(
		&r.ID,
		&r.Manifest,
		&r.Compiler,
		&started,
		&r.Policy,
		&r.Fingerprint,
		&r.Passed,
		&r.Failed,
		&r.NotRun,
		&r.ExitCode,
	)
	if err != nil {
		return RunRecord{}, err
	}
	r.StartedAt, err = parseTime(started)
	if err != nil {
		return RunRecord{}, fmt.Errorf("parse started_at %q: %w", started, err)
	}
	return r, nil
}

func collectRuns(rows *sql.Rows) ([]RunRecord, error) {
	defer rows.Close()

	runs := []RunRecord{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
