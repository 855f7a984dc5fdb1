// file: internal/database/audit.go
// version: 2.0.0
// guid: 3a4b5c6d-7e8f-9a0b-1c2d-3e4f5a6b7c8e

// Package database holds the session-adjacent stores: a sqlite audit
// log of scans and commits, and a pebble cache for raw provider
// responses. Resolved metadata itself is never persisted; records
// live only in memory until committed into the files.
package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// AuditStore records what happened, not what the metadata was: scan
// roots with counts, and per-file commit outcomes.
type AuditStore struct {
	db *sql.DB
}

// ScanEntry is one recorded directory scan.
type ScanEntry struct {
	ID         int       `json:"id"`
	Root       string    `json:"root"`
	TrackCount int       `json:"track_count"`
	ScannedAt  time.Time `json:"scanned_at"`
}

// CommitEntry is one recorded file write outcome.
type CommitEntry struct {
	ID          int       `json:"id"`
	BatchID     string    `json:"batch_id"`
	Path        string    `json:"path"`
	Ok          bool      `json:"ok"`
	Error       string    `json:"error,omitempty"`
	CommittedAt time.Time `json:"committed_at"`
}

// OpenAudit opens (and migrates) the audit store at path.
func OpenAudit(path string) (*AuditStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open audit store: %w", err)
	}
	s := &AuditStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *AuditStore) Close() error {
	return s.db.Close()
}

func (s *AuditStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scans (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			root TEXT NOT NULL,
			track_count INTEGER NOT NULL,
			scanned_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS commits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			batch_id TEXT NOT NULL,
			path TEXT NOT NULL,
			ok INTEGER NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			committed_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_commits_batch ON commits(batch_id)`,
		`CREATE INDEX IF NOT EXISTS idx_commits_path ON commits(path)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate audit store: %w", err)
		}
	}
	return nil
}

// RecordScan logs one completed directory scan.
func (s *AuditStore) RecordScan(root string, trackCount int) error {
	_, err := s.db.Exec(
		`INSERT INTO scans (root, track_count) VALUES (?, ?)`,
		root, trackCount,
	)
	return err
}

// RecentScans returns the most recent scan roots, newest first, with
// duplicate roots collapsed to their latest entry.
func (s *AuditStore) RecentScans(limit int) ([]ScanEntry, error) {
	if limit < 1 {
		limit = 10
	}
	rows, err := s.db.Query(
		`SELECT id, root, track_count, MAX(scanned_at) AS scanned_at
		 FROM scans GROUP BY root ORDER BY scanned_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []ScanEntry
	for rows.Next() {
		var e ScanEntry
		if err := rows.Scan(&e.ID, &e.Root, &e.TrackCount, &e.ScannedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RecordCommit logs one file write outcome under a batch identifier.
func (s *AuditStore) RecordCommit(batchID, path string, commitErr error) error {
	ok := 1
	msg := ""
	if commitErr != nil {
		ok = 0
		msg = commitErr.Error()
	}
	_, err := s.db.Exec(
		`INSERT INTO commits (batch_id, path, ok, error) VALUES (?, ?, ?, ?)`,
		batchID, path, ok, msg,
	)
	return err
}

// CommitsForBatch returns every outcome recorded under batchID.
func (s *AuditStore) CommitsForBatch(batchID string) ([]CommitEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, batch_id, path, ok, error, committed_at
		 FROM commits WHERE batch_id = ? ORDER BY id`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []CommitEntry
	for rows.Next() {
		var e CommitEntry
		var ok int
		if err := rows.Scan(&e.ID, &e.BatchID, &e.Path, &ok, &e.Error, &e.CommittedAt); err != nil {
			return nil, err
		}
		e.Ok = ok == 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LastOutcome returns the most recent commit outcome for a path, or
// nil when the path has never been committed.
func (s *AuditStore) LastOutcome(path string) (*CommitEntry, error) {
	row := s.db.QueryRow(
		`SELECT id, batch_id, path, ok, error, committed_at
		 FROM commits WHERE path = ? ORDER BY id DESC LIMIT 1`, path)

	var e CommitEntry
	var ok int
	if err := row.Scan(&e.ID, &e.BatchID, &e.Path, &ok, &e.Error, &e.CommittedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	e.Ok = ok == 1
	return &e, nil
}
