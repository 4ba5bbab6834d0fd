// Package storage keeps the invocation history in a local SQLite
// database.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// OpenDB opens the history database at path, creating the parent
// directory and schema as needed.
func OpenDB(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS invocations (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		call_id     TEXT NOT NULL,
		session_id  TEXT,
		timestamp   INTEGER NOT NULL,
		tool        TEXT NOT NULL,
		arguments   TEXT,
		ok          INTEGER NOT NULL,
		error       TEXT,
		duration_ms INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_invocations_tool ON invocations(tool);
	`

	_, err := db.Exec(schema)
	return err
}
