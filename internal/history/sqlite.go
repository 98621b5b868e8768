package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	ferrors "git.home.luguber.info/inful/sitesmith/internal/foundation/errors"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (and creates) the history database.
// Use ":memory:" for an in-memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, historyError("create history directory", err).
				WithContext("path", dbPath).Build()
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, historyError("open sqlite database", err).
			WithContext("path", dbPath).Build()
	}
	// a single connection keeps ":memory:" databases shared across queries
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, historyError("initialize schema", err).
			WithContext("path", dbPath).Build()
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		recipe TEXT NOT NULL,
		run_trigger TEXT NOT NULL,
		commit_hash TEXT,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL,
		exit_code INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		failed_step TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	CREATE TABLE IF NOT EXISTS steps (
		run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		command TEXT NOT NULL,
		status TEXT NOT NULL,
		exit_code INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		error TEXT,
		PRIMARY KEY (run_id, position)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record stores a run and its steps in one transaction.
func (s *SQLiteStore) Record(ctx context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return historyError("begin transaction", err).Build()
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, recipe, run_trigger, commit_hash, started_at, finished_at, exit_code, outcome, failed_step)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Recipe, run.Trigger, run.Commit,
		run.Start.UnixMilli(), run.End.UnixMilli(), run.ExitCode, run.Outcome, run.FailedStep,
	)
	if err != nil {
		return historyError("insert run", err).Build()
	}
	for _, st := range run.Steps {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO steps (run_id, position, name, command, status, exit_code, duration_ms, error)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, st.Position, st.Name, st.Command, st.Status, st.ExitCode, st.Duration.Milliseconds(), st.Error,
		)
		if err != nil {
			return historyError("insert step", err).WithContext("step", st.Name).Build()
		}
	}
	if err := tx.Commit(); err != nil {
		return historyError("commit run", err).Build()
	}
	return nil
}

const runColumns = "run_id, recipe, run_trigger, commit_hash, started_at, finished_at, exit_code, outcome, failed_step"

// Recent returns the newest runs first, without their steps.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+runColumns+" FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?", limit)
	if err != nil {
		return nil, historyError("query runs", err).Build()
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
		return nil, historyError("iterate runs", err).Build()
	}
	return runs, nil
}

// Get returns one run including its steps.
func (s *SQLiteStore) Get(ctx context.Context, runID string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE run_id = ?", runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ferrors.NewError(ferrors.CategoryNotFound, fmt.Sprintf("run %s not found", runID)).Build()
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT position, name, command, status, exit_code, duration_ms, error FROM steps WHERE run_id = ? ORDER BY position", runID)
	if err != nil {
		return nil, historyError("query steps", err).Build()
	}
	defer rows.Close()
	for rows.Next() {
		var st StepRecord
		var ms int64
		var errText sql.NullString
		if err := rows.Scan(&st.Position, &st.Name, &st.Command, &st.Status, &st.ExitCode, &ms, &errText); err != nil {
			return nil, historyError("scan step", err).Build()
		}
		st.Duration = time.Duration(ms) * time.Millisecond
		st.Error = errText.String
		run.Steps = append(run.Steps, st)
	}
	if err := rows.Err(); err != nil {
		return nil, historyError("iterate steps", err).Build()
	}
	return &run, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var r Run
	var started, finished int64
	var commit, failed sql.NullString
	if err := row.Scan(&r.RunID, &r.Recipe, &r.Trigger, &commit, &started, &finished, &r.ExitCode, &r.Outcome, &failed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, historyError("scan run", err).Build()
	}
	r.Commit = commit.String
	r.FailedStep = failed.String
	r.Start = time.UnixMilli(started)
	r.End = time.UnixMilli(finished)
	return r, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func historyError(op string, err error) *ferrors.ErrorBuilder {
	return ferrors.HistoryError(op).WithCause(err)
}
