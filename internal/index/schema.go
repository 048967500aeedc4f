// Package index provides the SQLite-backed entity index: person and
// organization notes from the vault, queryable by the names mentioned in
// capture content.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS files (
	path       TEXT PRIMARY KEY,
	checksum   TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS entity_names (
	name        TEXT NOT NULL,
	name_lower  TEXT NOT NULL,
	first_token TEXT NOT NULL,
	kind        TEXT NOT NULL,
	path        TEXT NOT NULL,
	UNIQUE(name_lower, path)
);

CREATE INDEX IF NOT EXISTS idx_entity_names_token ON entity_names(first_token);
CREATE INDEX IF NOT EXISTS idx_entity_names_path ON entity_names(path);
`

// DB wraps a sql.DB with entity-index operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
