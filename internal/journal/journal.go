// Package journal persists run history in a local SQLite database so earlier
// setups can be inspected from the history command.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/flutterkit/flutterkit/internal/model"
	"github.com/flutterkit/flutterkit/internal/paths"
)

const (
	driverName         = "sqlite"
	defaultBusyTimeout = 5 * time.Second
	defaultListLimit   = 10
)

var migrations = [...]string{
	`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		project TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		exit_code INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);`,
	`CREATE TABLE IF NOT EXISTS run_stages (
		run_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		stage TEXT NOT NULL,
		status TEXT NOT NULL,
		message TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		duration_ms INTEGER NOT NULL,
		PRIMARY KEY (run_id, position)
	);`,
}

// Run is one persisted setup invocation.
type Run struct {
	ID        string
	Project   string
	StartedAt time.Time
	Duration  time.Duration
	ExitCode  int
}

// StageRecord is one persisted stage outcome within a run.
type StageRecord struct {
	Stage    string
	Status   string
	Message  string
	Error    string
	Duration time.Duration
}

// Journal wraps the SQLite connection holding run history.
type Journal struct {
	sql *sql.DB
}

// Open initialises the journal database at path, creating schema on first use.
func Open(ctx context.Context, path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("ensure journal dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", filepath.ToSlash(path), int(defaultBusyTimeout/time.Millisecond))
	conn, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := configureConnection(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, err
	}

	for _, stmt := range migrations {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("apply migration: %w", err)
		}
	}

	return &Journal{sql: conn}, nil
}

// OpenDefault opens the journal at its standard data-directory location.
func OpenDefault(ctx context.Context) (*Journal, error) {
	if _, err := paths.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}
	return Open(ctx, paths.JournalPath())
}

// Close shuts down the underlying connection.
func (j *Journal) Close() error {
	if j == nil || j.sql == nil {
		return nil
	}
	return j.sql.Close()
}

func configureConnection(ctx context.Context, conn *sql.DB) error {
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	statements := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=FULL;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, stmt := range statements {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute pragma %q: %w", stmt, err)
		}
	}
	return nil
}

// Record stores a run summary and its stage results in one transaction.
func (j *Journal) Record(ctx context.Context, summary *model.RunSummary) (err error) {
	if j == nil || summary == nil {
		return nil
	}

	tx, err := j.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin journal tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
INSERT INTO runs (id, project, started_at, duration_ms, exit_code)
VALUES (?, ?, ?, ?, ?)
`, summary.RunID, summary.Project, summary.StartedAt.UnixMilli(), summary.Duration().Milliseconds(), summary.ExitCode())
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, res := range summary.Results {
		errText := ""
		if res.Error != nil {
			errText = res.Error.Error()
		}
		_, err = tx.ExecContext(ctx, `
INSERT INTO run_stages (run_id, position, stage, status, message, error, duration_ms)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, summary.RunID, i, res.Stage, res.Status, res.Message, errText, res.Duration.Milliseconds())
		if err != nil {
			return fmt.Errorf("insert stage %s: %w", res.Stage, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("journal commit: %w", err)
	}
	return nil
}

// Recent returns up to limit persisted runs, newest first. A non-positive
// limit falls back to the default page size.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Run, error) {
	if j == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := j.sql.QueryContext(ctx, `
SELECT id, project, started_at, duration_ms, exit_code
FROM runs
ORDER BY started_at DESC, id DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var run Run
		var startedMillis, durationMillis int64
		if err := rows.Scan(&run.ID, &run.Project, &startedMillis, &durationMillis, &run.ExitCode); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = time.UnixMilli(startedMillis).UTC()
		run.Duration = time.Duration(durationMillis) * time.Millisecond
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("run rows: %w", err)
	}
	return out, nil
}

// Stages returns the recorded stage results for a run in execution order.
func (j *Journal) Stages(ctx context.Context, runID string) ([]StageRecord, error) {
	if j == nil {
		return nil, nil
	}

	rows, err := j.sql.QueryContext(ctx, `
SELECT stage, status, message, error, duration_ms
FROM run_stages
WHERE run_id = ?
ORDER BY position ASC
`, runID)
	if err != nil {
		return nil, fmt.Errorf("query stages: %w", err)
	}
	defer rows.Close()

	var out []StageRecord
	for rows.Next() {
		var rec StageRecord
		var durationMillis int64
		if err := rows.Scan(&rec.Stage, &rec.Status, &rec.Message, &rec.Error, &durationMillis); err != nil {
			return nil, fmt.Errorf("scan stage: %w", err)
		}
		rec.Duration = time.Duration(durationMillis) * time.Millisecond
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("stage rows: %w", err)
	}
	return out, nil
}
