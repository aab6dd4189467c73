// Package history keeps a SQLite ledger of cache sync runs and the words
// each run could not cache.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Run is one recorded sync run.
type Run struct {
	ID         int64
	Trigger    string // "manual" or "scheduled"
	Started    time.Time
	Finished   time.Time
	Words      int
	Downloaded int
	Generated  int
	Skipped    int
	Failed     int
	Deferred   int
	Err        string // run-level error, empty on success

	Failures []Failure
}

// Failure is a word a run could not cache.
type Failure struct {
	Word  string
	Error string
}

// Ledger stores runs in a SQLite database.
type Ledger struct {
	db   *sql.DB
	path string
}

// Open opens or creates the ledger at path.
func Open(path string) (*Ledger, error) {
	if path == "" {
		return nil, fmt.Errorf("history path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			origin TEXT NOT NULL,
			started INTEGER NOT NULL,
			finished INTEGER NOT NULL,
			words INTEGER NOT NULL,
			downloaded INTEGER NOT NULL,
			tts_generated INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			postponed INTEGER NOT NULL,
			error TEXT NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS failures (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			word TEXT NOT NULL,
			error TEXT NOT NULL,
			PRIMARY KEY (run_id, word)
		);
		CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup history database: %w", err)
	}

	return &Ledger{db: db, path: path}, nil
}

// Path returns the database file.
func (l *Ledger) Path() string {
	return l.path
}

// Close closes the database connection
func (l *Ledger) Close() error {
	if l.db != nil {
		return l.db.Close()
	}
	return nil
}

// Record stores run with its failures and returns the new run ID.
func (l *Ledger) Record(ctx context.Context, run Run) (int64, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (origin, started, finished, words, downloaded, tts_generated, skipped, failed, postponed, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Trigger, run.Started.UnixMilli(), run.Finished.UnixMilli(), run.Words,
		run.Downloaded, run.Generated, run.Skipped, run.Failed, run.Deferred, run.Err)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	for _, f := range run.Failures {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO failures (run_id, word, error) VALUES (?, ?, ?)`,
			id, f.Word, f.Error); err != nil {
			return 0, fmt.Errorf("failed to insert failure for %s: %w", f.Word, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

// Recent returns up to limit runs, newest first.
func (l *Ledger) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT id, origin, started, finished, words, downloaded, tts_generated, skipped, failed, postponed, error
		FROM runs ORDER BY started DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished int64
		if err := rows.Scan(&r.ID, &r.Trigger, &started, &finished, &r.Words, &r.Downloaded,
			&r.Generated, &r.Skipped, &r.Failed, &r.Deferred, &r.Err); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.Started = time.UnixMilli(started)
		r.Finished = time.UnixMilli(finished)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		failures, err := l.failures(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Failures = failures
	}
	return runs, nil
}

func (l *Ledger) failures(ctx context.Context, runID int64) ([]Failure, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT word, error FROM failures WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query failures: %w", err)
	}
	defer rows.Close()

	var out []Failure
	for rows.Next() {
		var f Failure
		if err := rows.Scan(&f.Word, &f.Error); err != nil {
			return nil, fmt.Errorf("failed to scan failure: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Word < out[j].Word })
	return out, nil
}
