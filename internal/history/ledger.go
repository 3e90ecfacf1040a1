// Package history keeps a SQLite ledger of layout solve runs.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/piwi3910/ClinicLayout/internal/model"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Get for an unknown run ID.
var ErrNotFound = errors.New("run not found")

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Run is one ledger entry.
type Run struct {
	ID         string
	CreatedAt  time.Time
	Project    string
	Shell      model.Shell
	Rooms      int
	Status     model.LayoutStatus
	Objective  float64
	Efficiency float64
	Duration   time.Duration
	Violations int
}

// NewRun summarizes a layout result for the ledger. The run ID is the
// result's RunID when set.
func NewRun(project string, result model.LayoutResult, violations int) Run {
	return Run{
		ID:         result.RunID,
		Project:    project,
		Shell:      result.Shell,
		Rooms:      len(result.Rooms),
		Status:     result.Status,
		Objective:  result.Objective,
		Efficiency: result.Efficiency(),
		Duration:   result.SolveTime,
		Violations: violations,
	}
}

// Ledger wraps the run database.
type Ledger struct {
	db *sql.DB
}

// Open opens or creates the ledger at path and applies pending migrations.
func Open(ctx context.Context, path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	connStr := fmt.Sprintf("file:%s?_txlock=immediate&_timeout=5000", path)
	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000", "PRAGMA synchronous=NORMAL"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	return newLedger(ctx, db)
}

// NewInMemory creates an in-memory ledger, used by tests and one-off runs.
func NewInMemory(ctx context.Context) (*Ledger, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}
	// Each connection would get its own empty database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return newLedger(ctx, db)
}

func newLedger(ctx context.Context, db *sql.DB) (*Ledger, error) {
	l := &Ledger{db: db}
	version, err := l.migrate(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	slog.Debug("history ledger ready", "schema_version", version)
	return l, nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record inserts a run. An empty ID gets a new UUID and a zero CreatedAt
// the current time; both are written back to r.
func (l *Ledger) Record(ctx context.Context, r *Run) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO runs (
			id, created_at, project, shell_width, shell_height, rooms,
			status, objective, efficiency, duration_ms, violations
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.CreatedAt.UTC().Format(timeLayout),
		r.Project,
		r.Shell.Width,
		r.Shell.Height,
		r.Rooms,
		string(r.Status),
		r.Objective,
		r.Efficiency,
		r.Duration.Milliseconds(),
		r.Violations,
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	slog.Debug("run recorded", "id", r.ID, "status", r.Status, "project", r.Project)
	return nil
}

const selectRun = `
	SELECT id, created_at, project, shell_width, shell_height, rooms,
		status, objective, efficiency, duration_ms, violations
	FROM runs`

// List returns the most recent runs, newest first. A limit of zero or less
// returns every run.
func (l *Ledger) List(ctx context.Context, limit int) ([]Run, error) {
	query := selectRun + " ORDER BY created_at DESC, rowid DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// Get returns the run with the given ID, or ErrNotFound.
func (l *Ledger) Get(ctx context.Context, id string) (Run, error) {
	r, err := scanRun(l.db.QueryRowContext(ctx, selectRun+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var (
		r          Run
		createdAt  string
		status     string
		durationMS int64
	)
	err := s.Scan(&r.ID, &createdAt, &r.Project, &r.Shell.Width, &r.Shell.Height, &r.Rooms,
		&status, &r.Objective, &r.Efficiency, &durationMS, &r.Violations)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scanning run: %w", err)
	}
	r.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return Run{}, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
	}
	r.Status = model.LayoutStatus(status)
	r.Duration = time.Duration(durationMS) * time.Millisecond
	return r, nil
}

// withTransaction runs fn in a transaction, rolling back on error.
func (l *Ledger) withTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rolling back after error %v: %w", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
