// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history records completed export runs in a local SQLite
// database so past exports can be listed and re-run.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrNotFound      = errors.New("export record not found")
	ErrDatabaseError = errors.New("database error")
)

// =============================================================================
// RECORD TYPES
// =============================================================================

// Status is the terminal state of an export run.
type Status string

const (
	// StatusComplete indicates the export finished and the file was written
	StatusComplete Status = "Complete"

	// StatusCancelled indicates the export was stopped early; the file
	// contains the messages fetched before the stop
	StatusCancelled Status = "Cancelled"

	// StatusFailed indicates the export errored and no file was written
	StatusFailed Status = "Failed"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsValid checks if the status is a known terminal state.
func (s Status) IsValid() bool {
	switch s {
	case StatusComplete, StatusCancelled, StatusFailed:
		return true
	}
	return false
}

// Record is one export run.
type Record struct {
	// ID is a unique identifier for the run
	ID string

	// ChannelID and ChannelName identify the exported channel
	ChannelID   string
	ChannelName string

	// MessageCount is the number of messages written
	MessageCount int

	// OutputPath is the written file, empty for failed runs
	OutputPath string

	// Status is the terminal state of the run
	Status Status

	// Error holds the failure message for failed runs
	Error string

	// StartedAt and FinishedAt bound the run
	StartedAt  time.Time
	FinishedAt time.Time
}

// NewRecord creates a record for a run starting now.
func NewRecord(channelID, channelName string) *Record {
	return &Record{
		ID:          uuid.New().String(),
		ChannelID:   channelID,
		ChannelName: channelName,
		StartedAt:   time.Now(),
	}
}

// =============================================================================
// STORE
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS exports (
    id TEXT PRIMARY KEY,
    channel_id TEXT NOT NULL,
    channel_name TEXT NOT NULL,
    message_count INTEGER NOT NULL,
    output_path TEXT NOT NULL,
    status TEXT NOT NULL,
    error TEXT NOT NULL,
    started_at INTEGER NOT NULL,  -- Unix milliseconds
    finished_at INTEGER NOT NULL  -- Unix milliseconds
);

CREATE INDEX IF NOT EXISTS idx_exports_channel_id ON exports(channel_id);
CREATE INDEX IF NOT EXISTS idx_exports_started_at ON exports(started_at);
`

// Store persists export records.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the default history database location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".chanmark", "history.db"), nil
}

// Open opens (and if needed creates) the history database.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add inserts a finished export record.
func (s *Store) Add(ctx context.Context, rec *Record) error {
	if !rec.Status.IsValid() {
		return fmt.Errorf("invalid status %q", rec.Status)
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.FinishedAt.IsZero() {
		rec.FinishedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO exports (id, channel_id, channel_name, message_count,
			output_path, status, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ChannelID, rec.ChannelName, rec.MessageCount,
		rec.OutputPath, rec.Status.String(), rec.Error,
		rec.StartedAt.UnixMilli(), rec.FinishedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// Get returns a single record by id.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, channel_id, channel_name, message_count, output_path,
			status, error, started_at, finished_at
		FROM exports WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return rec, nil
}

// List returns the most recent records, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, channel_id, channel_name, message_count, output_path,
			status, error, started_at, finished_at
		FROM exports ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return records, nil
}

// ListByChannel returns records for one channel, newest first.
func (s *Store) ListByChannel(ctx context.Context, channelID string, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, channel_id, channel_name, message_count, output_path,
			status, error, started_at, finished_at
		FROM exports WHERE channel_id = ? ORDER BY started_at DESC LIMIT ?`,
		channelID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return records, nil
}

// Prune deletes records older than the cutoff, returning the number
// removed.
func (s *Store) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM exports WHERE started_at < ?`, olderThan.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return n, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*Record, error) {
	var rec Record
	var status string
	var startedMs, finishedMs int64

	err := s.Scan(&rec.ID, &rec.ChannelID, &rec.ChannelName, &rec.MessageCount,
		&rec.OutputPath, &status, &rec.Error, &startedMs, &finishedMs)
	if err != nil {
		return nil, err
	}

	rec.Status = Status(status)
	rec.StartedAt = time.UnixMilli(startedMs)
	rec.FinishedAt = time.UnixMilli(finishedMs)
	return &rec, nil
}
