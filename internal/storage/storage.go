// Package storage is the per-session SQLite store that backs pass-map,
// player-list and ad-hoc SQL queries over the normalized events.
package storage

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// DB wraps a sql.DB for the session store.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database at the given path and applies the schema.
func Open(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Every connection to :memory: is a separate database.
	if path == MemoryPath {
		conn.SetMaxOpenConns(1)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Freeze makes the store read-only. Any later write fails, including DML
// sent through QueryRaw.
func (db *DB) Freeze() error {
	// query_only is per connection, so pin the pool to the one that carries it.
	db.conn.SetMaxOpenConns(1)
	if _, err := db.conn.Exec("PRAGMA query_only = ON"); err != nil {
		return fmt.Errorf("freeze store: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
