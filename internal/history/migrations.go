package history

import (
	"database/sql"
	"fmt"
)

// migrations run in order; the applied count is tracked in schema_version.
// Append only, never edit an entry that has shipped.
var migrations = []string{
	`CREATE TABLE executions (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		script      TEXT NOT NULL,
		path        TEXT NOT NULL,
		strategy    TEXT NOT NULL,
		kind        TEXT NOT NULL,
		succeeded   INTEGER NOT NULL,
		message     TEXT NOT NULL,
		exit_code   INTEGER,
		duration_ms INTEGER NOT NULL,
		started_at  TEXT NOT NULL
	)`,
	`CREATE INDEX idx_executions_script ON executions(script, started_at DESC)`,
}

func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}
	var version int
	err := db.QueryRow(`SELECT version FROM schema_version`).Scan(&version)
	if err == sql.ErrNoRows {
		if _, err := db.Exec(`INSERT INTO schema_version (version) VALUES (0)`); err != nil {
			return fmt.Errorf("init schema_version: %w", err)
		}
		version = 0
	} else if err != nil {
		return fmt.Errorf("read schema_version: %w", err)
	}

	for i := version; i < len(migrations); i++ {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", i+1, err)
		}
		if _, err := tx.Exec(migrations[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %d: %w", i+1, err)
		}
		if _, err := tx.Exec(`UPDATE schema_version SET version = ?`, i+1); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", i+1, err)
		}
	}
	return nil
}
