package sqlite

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the engine connection.
type DB struct {
	db       *sql.DB
	readOnly bool
}

// Open opens (or, in read-write mode, creates) a database file.
//
// The connection is configured with:
//   - WAL mode for concurrent reads during writes (read-write only)
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//   - foreign key enforcement
func Open(path string, readOnly bool) (*DB, error) {
	dsn := "file:" + path
	if readOnly {
		dsn += "?mode=ro"
	}
	return open(dsn, readOnly)
}

// OpenInMemory opens a fresh private in-memory database.
func OpenInMemory() (*DB, error) {
	return open(":memory:", false)
}

func open(dsn string, readOnly bool) (*DB, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// One connection: SQLite supports a single writer, and the store's
	// execution loop is the only caller anyway. For in-memory databases
	// this also keeps the database alive between calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db, readOnly); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	return &DB{db: db, readOnly: readOnly}, nil
}

func applyPragmas(db *sql.DB, readOnly bool) error {
	pragmas := []string{
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	if !readOnly {
		// Changing the journal mode writes to the file.
		pragmas = append([]string{"PRAGMA journal_mode = WAL"}, pragmas...)
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Close closes the connection.
func (d *DB) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}
