// Package history persists command line history in SQLite and cycles
// through it while typing.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/zjrosen/vimg/internal/log"
)

// DefaultLimit is the number of entries kept when no limit is configured.
const DefaultLimit = 100

const schema = `
CREATE TABLE IF NOT EXISTS history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	text TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// Store is the history table.
type Store struct {
	db    *sql.DB
	limit int
}

// Open opens the history database at path, creating the file, its directory
// and the table as needed. An empty path keeps history in memory.
func Open(path string, limit int) (*Store, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	dsn := ":memory:"
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
		dsn = "file:" + path
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// A single connection keeps :memory: databases alive across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history table: %w", err)
	}
	log.Debug(log.CatHistory, "Opened history", "path", path, "limit", limit)
	return &Store{db: db, limit: limit}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Limit returns the maximum number of entries kept.
func (s *Store) Limit() int { return s.limit }

// Add appends text as the newest entry. An older identical entry is removed,
// and the oldest entries beyond the limit are dropped.
func (s *Store) Add(text string) error {
	if text == "" {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin history transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM history WHERE text = ?`, text); err != nil {
		return fmt.Errorf("failed to remove duplicate history entry: %w", err)
	}
	if _, err := tx.Exec(`INSERT INTO history (text) VALUES (?)`, text); err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}
	if _, err := tx.Exec(
		`DELETE FROM history WHERE id NOT IN (SELECT id FROM history ORDER BY id DESC LIMIT ?)`,
		s.limit,
	); err != nil {
		return fmt.Errorf("failed to trim history: %w", err)
	}
	return tx.Commit()
}

// List returns the entries, oldest first.
func (s *Store) List() ([]string, error) {
	rows, err := s.db.Query(`SELECT text FROM history ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, text)
	}
	return entries, rows.Err()
}
