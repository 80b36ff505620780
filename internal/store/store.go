// Package store persists idea records and their event log in SQLite.
// A single connection with WAL journaling keeps writes serialized; the
// sweep's workers funnel through it without stepping on each other.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"dossier/internal/logging"
)

// ErrIdeaNotFound is returned when no record exists for an owner/idea pair.
var ErrIdeaNotFound = errors.New("store: idea not found")

// Store is the SQLite-backed idea repository and event log.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// New initializes the SQLite database at the given path.
func New(path string) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryStore, "New")
	defer timer.Stop()

	logging.Store("Initializing store at path: %s", path)

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite journal_mode=WAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite synchronous=NORMAL: %v", err)
	}

	store := &Store{db: db, dbPath: path}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	logging.StoreDebug("Database schema initialized")
	return store, nil
}

// initialize creates the required tables.
func (s *Store) initialize() error {
	ideasTable := `
	CREATE TABLE IF NOT EXISTS ideas (
		owner_id TEXT NOT NULL,
		idea_id TEXT NOT NULL,
		title TEXT NOT NULL,
		raw_input TEXT NOT NULL,
		status TEXT NOT NULL,
		confidence_score REAL NOT NULL DEFAULT 0,
		swot_json TEXT NOT NULL,
		latest_report_json TEXT,
		report_viewed INTEGER,
		created_at INTEGER NOT NULL,
		last_updated_at INTEGER NOT NULL,
		last_viewed_at INTEGER NOT NULL,
		PRIMARY KEY (owner_id, idea_id)
	);
	CREATE INDEX IF NOT EXISTS idx_ideas_status ON ideas(status);
	`

	eventsTable := `
	CREATE TABLE IF NOT EXISTS events (
		event_id TEXT PRIMARY KEY,
		idea_id TEXT NOT NULL,
		ts INTEGER NOT NULL,
		type TEXT NOT NULL,
		summary TEXT NOT NULL,
		confidence_delta REAL,
		new_source_count INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_events_idea_ts ON events(idea_id, ts);
	`

	for _, table := range []string{
		ideasTable,
		eventsTable,
	} {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	logging.Store("Closing store database connection")
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}
