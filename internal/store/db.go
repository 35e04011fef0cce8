// Package store reads package versions from stack's pantry database, the
// local sqlite cache of the Hackage index.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"
)

// ErrNotInitialized is returned when the database has no pantry tables.
var ErrNotInitialized = errors.New("pantry database is not initialized: run 'stack update' first")

// Store provides read access to a pantry database.
type Store struct {
	db *sql.DB
}

// New creates a new Store with the specified database path.
// Use ":memory:" for in-memory databases (useful for testing).
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection, so per-connection pragmas and :memory: contents are
	// shared by every query.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &Store{db: db}, nil
}

// Open opens an existing pantry database without permitting writes. Stack
// owns the file.
func Open(dbPath string) (*Store, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("failed to open pantry database: %w", err)
	}
	s, err := New(dbPath)
	if err != nil {
		return nil, err
	}
	if err := s.ReadOnly(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// ReadOnly rejects any further writes on this connection.
func (s *Store) ReadOnly() error {
	if _, err := s.db.Exec("PRAGMA query_only = ON"); err != nil {
		return fmt.Errorf("failed to make database read-only: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateSchema creates the subset of the pantry tables the queries use.
func (s *Store) CreateSchema() error {
	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// wrapErr maps "no such table" errors to ErrNotInitialized.
func wrapErr(err error, format string, args ...any) error {
	if err != nil && strings.Contains(err.Error(), "no such table") {
		return fmt.Errorf(format+": %w", append(args, ErrNotInitialized)...)
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
