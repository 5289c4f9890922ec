package cache

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// Store persists build state between runs in a SQLite database: the input
// snapshot of the previous build and the image variant cache.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens or creates the build state database. Use ":memory:" for an
// ephemeral store.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open build cache: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize build cache schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS files (
		path TEXT PRIMARY KEY,
		hash TEXT NOT NULL,
		kind TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS variants (
		path TEXT PRIMARY KEY,
		key TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// LoadSnapshot returns the snapshot recorded by the previous build. An empty
// store yields an empty snapshot, which diffs as everything-modified.
func (s *Store) LoadSnapshot() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT path, hash, kind FROM files")
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close()

	snap := Snapshot{}
	for rows.Next() {
		var path, hash, kind string
		if err := rows.Scan(&path, &hash, &kind); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		snap[path] = Entry{Hash: hash, Kind: FileKind(kind)}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}
	return snap, nil
}

// SaveSnapshot replaces the recorded snapshot with the given one.
func (s *Store) SaveSnapshot(snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM files"); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	stmt, err := tx.Prepare("INSERT INTO files (path, hash, kind) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare snapshot insert: %w", err)
	}
	defer stmt.Close()

	for path, entry := range snap {
		if _, err := stmt.Exec(path, entry.Hash, string(entry.Kind)); err != nil {
			return fmt.Errorf("insert snapshot row: %w", err)
		}
	}
	return tx.Commit()
}

// IsFresh reports whether an image variant cache entry matches the given
// key. Implements the asset pipeline's variant cache.
func (s *Store) IsFresh(path, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stored string
	err := s.db.QueryRow("SELECT key FROM variants WHERE path = ?", path).Scan(&stored)
	return err == nil && stored == key
}

// Mark records that the variants for path were generated with key.
func (s *Store) Mark(path, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"INSERT INTO variants (path, key) VALUES (?, ?) ON CONFLICT(path) DO UPDATE SET key = excluded.key",
		path, key,
	)
	if err != nil {
		return fmt.Errorf("record variant cache entry: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
