// Package syncstate persists per-note sync records in SQLite.
//
// One record per note_id tracks the fingerprint of the last rendered
// content and the vault path it was written to. The Reconciler reads this
// state; only the Writer mutates it, and only after a file operation
// succeeds.
package syncstate

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/veland/grimsync/internal/apperr"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sync_records (
	note_id     TEXT PRIMARY KEY,
	fingerprint TEXT NOT NULL,
	path        TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_sync_records_path ON sync_records(path);
`

// Record is the persisted sync tuple for one note.
type Record struct {
	NoteID      string
	Fingerprint string
	Path        string
}

// Store wraps a sql.DB with sync-state operations.
type Store struct {
	conn *sql.DB
}

// Open opens (or creates) the state database and applies the schema.
//
// A database file that cannot be opened or fails the schema check is
// treated as corrupt: it is moved aside to <path>.corrupt with a loud
// warning and a fresh store is created, which makes the next cycle a full
// resync. Corruption is never swallowed silently.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("syncstate: mkdir: %w", err)
		}
	}

	store, err := open(path)
	if err == nil {
		return store, nil
	}

	logger.Warn("syncstate: state database unreadable, moving aside and starting fresh (full resync)",
		slog.String("path", path),
		slog.String("error", err.Error()))

	if mvErr := os.Rename(path, path+".corrupt"); mvErr != nil {
		return nil, fmt.Errorf("syncstate: move corrupt db aside: %w", errors.Join(apperr.ErrCorruptState, err, mvErr))
	}
	return open(path)
}

func open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("syncstate: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("syncstate: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("syncstate: apply schema: %w", err)
	}
	return &Store{conn: conn}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Get returns the record for a note, or nil when none exists.
func (s *Store) Get(noteID string) (*Record, error) {
	var r Record
	err := s.conn.QueryRow(
		`SELECT note_id, fingerprint, path FROM sync_records WHERE note_id = ?`, noteID,
	).Scan(&r.NoteID, &r.Fingerprint, &r.Path)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("syncstate: get %s: %w", noteID, err)
	}
	return &r, nil
}

// Put inserts or replaces the record for a note. The upsert runs in a
// single statement, so a crash never leaves a partially written record.
func (s *Store) Put(r Record) error {
	_, err := s.conn.Exec(`
		INSERT INTO sync_records (note_id, fingerprint, path)
		VALUES (?, ?, ?)
		ON CONFLICT(note_id) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			path        = excluded.path
	`, r.NoteID, r.Fingerprint, r.Path)
	if err != nil {
		return fmt.Errorf("syncstate: put %s: %w", r.NoteID, err)
	}
	return nil
}

// Delete removes the record for a note. Missing records are not an error.
func (s *Store) Delete(noteID string) error {
	if _, err := s.conn.Exec(`DELETE FROM sync_records WHERE note_id = ?`, noteID); err != nil {
		return fmt.Errorf("syncstate: delete %s: %w", noteID, err)
	}
	return nil
}

// Clear removes every record. It deletes no vault files; the next cycle
// simply classifies every note as new (forced full resync).
func (s *Store) Clear() error {
	if _, err := s.conn.Exec(`DELETE FROM sync_records`); err != nil {
		return fmt.Errorf("syncstate: clear: %w", err)
	}
	return nil
}

// All returns every record keyed by note_id.
func (s *Store) All() (map[string]Record, error) {
	rows, err := s.conn.Query(`SELECT note_id, fingerprint, path FROM sync_records`)
	if err != nil {
		return nil, fmt.Errorf("syncstate: all: %w", err)
	}
	defer rows.Close()

	out := make(map[string]Record)
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.NoteID, &r.Fingerprint, &r.Path); err != nil {
			return nil, err
		}
		out[r.NoteID] = r
	}
	return out, rows.Err()
}
