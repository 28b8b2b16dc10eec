package tracelog

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/nicola-lissandrini/modflow/pkg/modflow"
)

// SQLiteStore persists trace entries to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// Compile-time interface check.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite trace store.
// The path should be a file path (e.g., "./trace.db") or ":memory:" for
// testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS trace_entries (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id TEXT NOT NULL,
			parent_id TEXT,
			depth INTEGER NOT NULL,
			module TEXT NOT NULL,
			channel TEXT NOT NULL,
			slot TEXT,
			connections INTEGER NOT NULL,
			at TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_trace_entries_channel
		ON trace_entries(channel)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Record implements modflow.TraceRecorder.
func (s *SQLiteStore) Record(e modflow.TraceEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`
		INSERT INTO trace_entries
			(event_id, parent_id, depth, module, channel, slot, connections, at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.EventID, e.ParentID, e.Depth, e.Module, e.Channel, e.Slot,
		e.Connections, e.At.UTC().Format(time.RFC3339Nano))

	if err != nil {
		return fmt.Errorf("record trace entry: %w", err)
	}
	return nil
}

// List implements Store.
func (s *SQLiteStore) List() ([]modflow.TraceEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT event_id, parent_id, depth, module, channel, slot, connections, at
		FROM trace_entries ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("list trace entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ListChannel implements Store.
func (s *SQLiteStore) ListChannel(channel string) ([]modflow.TraceEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT event_id, parent_id, depth, module, channel, slot, connections, at
		FROM trace_entries WHERE channel = ? ORDER BY seq
	`, channel)
	if err != nil {
		return nil, fmt.Errorf("list trace entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]modflow.TraceEntry, error) {
	var entries []modflow.TraceEntry
	for rows.Next() {
		var e modflow.TraceEntry
		var at string
		if err := rows.Scan(&e.EventID, &e.ParentID, &e.Depth, &e.Module,
			&e.Channel, &e.Slot, &e.Connections, &at); err != nil {
			return nil, fmt.Errorf("scan trace entry: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("parse trace timestamp: %w", err)
		}
		e.At = ts
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear implements Store.
func (s *SQLiteStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.Exec(`DELETE FROM trace_entries`); err != nil {
		return fmt.Errorf("clear trace entries: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
