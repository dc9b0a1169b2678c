// Package storage persists a completed analysis to SQLite so the query
// commands work without re-scanning the project.
package storage

import (
	"database/sql"
	_ "embed"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// DB wraps the SQLite database holding one persisted analysis
type DB struct {
	conn *sql.DB
}

// Open opens or creates a SQLite database at the given path
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return nil, err
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, err
	}

	return &DB{conn: conn}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying database connection for advanced queries
func (db *DB) Conn() *sql.DB {
	return db.conn
}

var clearStmts = []string{
	"DELETE FROM usecase_steps",
	"DELETE FROM usecases",
	"DELETE FROM feature_members",
	"DELETE FROM features",
	"DELETE FROM boundary_members",
	"DELETE FROM boundaries",
	"DELETE FROM actor_endpoints",
	"DELETE FROM actors",
	"DELETE FROM edges",
	"DELETE FROM entities",
	"DELETE FROM meta",
}

// Clear removes all persisted analysis data
func (db *DB) Clear() error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := clearTx(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func clearTx(tx *sql.Tx) error {
	for _, stmt := range clearStmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
