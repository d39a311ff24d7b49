package store

import (
	"context"
	"fmt"
)

// WriteRun inserts a run and its case results in one transaction. Writing
// an ID that already exists is an error; runs are never updated.
func (s *Store) WriteRun(ctx context.Context, run RunRecord) error {
	if run.ID == "" {
		return fmt.Errorf("write run: id is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, manifest, compiler, started_at, policy, fingerprint, passed, failed, not_run, exit_code)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Manifest,
		run.Compiler,
		formatTime(run.StartedAt),
		run.Policy,
		run.Fingerprint,
		run.Passed,
		run.Failed,
		run.NotRun,
		run.ExitCode,
	)
	if err != nil {
		return fmt.Errorf("write run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO case_results
		(run_id, seq, path, kind, passed, reason, expected, actual, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("write run %s: %w", run.ID, err)
	}
	defer stmt.Close()

	for _, c := range run.Results {
		_, err := stmt.ExecContext(ctx,
			run.ID,
			c.Seq,
			c.Path,
			c.Kind,
			c.Passed,
			c.Reason,
			c.Expected,
			c.Actual,
			c.Duration.Milliseconds(),
		)
		if err != nil {
			return fmt.Errorf("write run %s: case %d: %w", run.ID, c.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run %s: commit: %w", run.ID, err)
	}
	return nil
}
