package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Status is the state a run was last recorded in.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// Run is one recorded attempt at an exercise program. Position is the
// routine time reached, Duration the program's total length.
type Run struct {
	ID          string
	Program     string
	Fingerprint string
	StartedAt   time.Time
	FinishedAt  time.Time // zero while running
	Status      Status
	Position    time.Duration
	Duration    time.Duration
}

// Remaining returns how much routine time the run had left.
func (r Run) Remaining() time.Duration {
	return max(r.Duration-r.Position, 0)
}

// Checkpoint is a position recorded while a run was in progress.
type Checkpoint struct {
	RecordedAt time.Time
	Position   time.Duration
}

// Begin records the start of a run.
func (s *Store) Begin(ctx context.Context, run Run) error {
	if run.Status == "" {
		run.Status = StatusRunning
	}
	_, err := s.exec(ctx, `
		INSERT INTO runs (id, program, fingerprint, started_at, status, position_ns, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Program, run.Fingerprint, formatTime(run.StartedAt), string(run.Status),
		int64(run.Position), int64(run.Duration))
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// Checkpoint records the position a running run has reached.
func (s *Store) Checkpoint(ctx context.Context, runID string, position time.Duration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE runs SET position_ns = ? WHERE id = ?`, int64(position), runID)
	if err != nil {
		return fmt.Errorf("checkpoint run: %w", err)
	}
	if err := requireRow(res, runID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO checkpoints (run_id, recorded_at, position_ns) VALUES (?, ?, ?)
	`, runID, formatTime(time.Now()), int64(position)); err != nil {
		return fmt.Errorf("checkpoint run: %w", err)
	}
	return tx.Commit()
}

// Finish records how a run ended.
func (s *Store) Finish(ctx context.Context, runID string, status Status, position time.Duration) error {
	res, err := s.exec(ctx, `
		UPDATE runs SET status = ?, position_ns = ?, finished_at = ? WHERE id = ?
	`, string(status), int64(position), formatTime(time.Now()), runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return requireRow(res, runID)
}

// Get returns the run with the given ID.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return run, err
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// LastIncomplete returns the most recent run of the program with the given
// fingerprint that stopped before reaching its end. Runs that completed or
// failed are never resumed.
func (s *Store) LastIncomplete(ctx context.Context, fingerprint string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+` FROM runs
		WHERE fingerprint = ? AND status IN (?, ?) AND position_ns < duration_ns
		ORDER BY started_at DESC, rowid DESC LIMIT 1
	`, fingerprint, string(StatusRunning), string(StatusCancelled))
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no incomplete run of %s", ErrNotFound, fingerprint)
	}
	return run, err
}

// Checkpoints returns the recorded checkpoints of a run, oldest first.
func (s *Store) Checkpoints(ctx context.Context, runID string) ([]Checkpoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT recorded_at, position_ns FROM checkpoints WHERE run_id = ? ORDER BY rowid
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	defer rows.Close()

	var out []Checkpoint
	for rows.Next() {
		var recordedAt string
		var position int64
		if err := rows.Scan(&recordedAt, &position); err != nil {
			return nil, fmt.Errorf("scan checkpoint: %w", err)
		}
		at, _ := parseTime(recordedAt)
		out = append(out, Checkpoint{RecordedAt: at, Position: time.Duration(position)})
	}
	return out, rows.Err()
}

const runColumns = `id, program, fingerprint, started_at, finished_at, status, position_ns, duration_ns`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	var startedAt string
	var finishedAt sql.NullString
	var status string
	var position, duration int64

	err := row.Scan(&run.ID, &run.Program, &run.Fingerprint, &startedAt, &finishedAt, &status, &position, &duration)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}

	run.StartedAt, _ = parseTime(startedAt)
	if finishedAt.Valid {
		run.FinishedAt, _ = parseTime(finishedAt.String)
	}
	run.Status = Status(status)
	run.Position = time.Duration(position)
	run.Duration = time.Duration(duration)
	return &run, nil
}

func requireRow(res sql.Result, runID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	return nil
}

// timeLayout is fixed width so stored timestamps sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
