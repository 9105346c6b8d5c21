package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store holds the database handle and provides access to repositories.
type Store struct {
	db  *sql.DB
	seq *sequenceCounter
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates missing tables.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	seq, err := newSequenceCounter(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, seq: seq}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// EventRepo returns the event repository backed by this store.
func (s *Store) EventRepo() *EventStore {
	return &EventStore{db: s.db, seq: s.seq}
}

// builder returns an ent SQL builder for the SQLite dialect.
func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// applyPragmas configures SQLite for a single-process service.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. STEPWISE_DB environment variable
// 2. $XDG_DATA_HOME/stepwise/stepwise.db
// 3. ~/.local/share/stepwise/stepwise.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("STEPWISE_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "stepwise", "stepwise.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
