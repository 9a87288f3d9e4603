// Package history records execution outcomes in a local SQLite database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one recorded execution.
type Entry struct {
	ID         int64     `json:"id"`
	Script     string    `json:"script"`
	Path       string    `json:"path"`
	Strategy   string    `json:"strategy"`
	Kind       string    `json:"kind"`
	Succeeded  bool      `json:"succeeded"`
	Message    string    `json:"message"`
	ExitCode   *int      `json:"exit_code,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	StartedAt  time.Time `json:"started_at"`
}

// Store persists entries. Safe for concurrent use; SQLite serializes
// writers behind the busy timeout.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies pending
// migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure history db: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Record inserts one entry and returns its id.
func (s *Store) Record(ctx context.Context, e Entry) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO executions (script, path, strategy, kind, succeeded, message, exit_code, duration_ms, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Script, e.Path, e.Strategy, e.Kind, boolToInt(e.Succeeded), e.Message,
		e.ExitCode, e.DurationMs, e.StartedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("record execution: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record execution: %w", err)
	}
	return id, nil
}

// Recent returns the newest entries, optionally filtered to one script.
// A script of "" means all scripts; limit <= 0 defaults to 20.
func (s *Store) Recent(ctx context.Context, script string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, script, path, strategy, kind, succeeded, message, exit_code, duration_ms, started_at
		FROM executions`
	args := []any{}
	if script != "" {
		query += ` WHERE script = ?`
		args = append(args, script)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var succeeded int
		var started string
		if err := rows.Scan(&e.ID, &e.Script, &e.Path, &e.Strategy, &e.Kind,
			&succeeded, &e.Message, &e.ExitCode, &e.DurationMs, &started); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		e.Succeeded = succeeded != 0
		if ts, err := time.Parse(time.RFC3339Nano, started); err == nil {
			e.StartedAt = ts
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return entries, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
