// ============================================================================
// RoboGrid - Roboter-Raster-Interpreter
// ============================================================================
//
// Package:     journal
// Description: Persistent journal of run outcomes
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/msto63/robogrid/internal/engine"
	"github.com/msto63/robogrid/internal/grid"
)

// Entry is one journaled outcome. Program text is never stored.
type Entry struct {
	ID           int64         `json:"id"`
	RunID        string        `json:"run_id"`
	Timestamp    time.Time     `json:"timestamp"`
	Kind         string        `json:"kind"`
	Code         string        `json:"code,omitempty"`
	Message      string        `json:"message"`
	Steps        int           `json:"steps"`
	CommandCount int           `json:"command_count"`
	Final        grid.Position `json:"final"`
}

// EntryFromOutcome converts an engine outcome
func EntryFromOutcome(o engine.Outcome) *Entry {
	ts := o.At
	if ts.IsZero() {
		ts = time.Now()
	}
	return &Entry{
		RunID:        o.RunID,
		Timestamp:    ts.UTC(),
		Kind:         o.Kind.String(),
		Code:         string(o.Code),
		Message:      o.Message,
		Steps:        o.Steps,
		CommandCount: o.Commands,
		Final:        o.Position,
	}
}

// Filter defines criteria for listing entries
type Filter struct {
	Kind  string
	Since time.Time
	Limit int
}

// Stats summarises the journal
type Stats struct {
	Total     int64            `json:"total"`
	ByKind    map[string]int64 `json:"by_kind"`
	AvgSteps  float64          `json:"avg_steps"`
	LastEntry time.Time        `json:"last_entry,omitempty"`
}

// Store defines the interface for outcome persistence
type Store interface {
	Record(ctx context.Context, entry *Entry) error
	List(ctx context.Context, filter Filter) ([]*Entry, error)
	Stats(ctx context.Context) (*Stats, error)
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// SQLiteConfig holds configuration for the SQLite store
type SQLiteConfig struct {
	Path string
}

// DefaultConfig returns default configuration
func DefaultConfig() SQLiteConfig {
	return SQLiteConfig{Path: "./data/journal.db"}
}

// NewSQLiteStore opens (and creates) the journal database
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// initSchema creates the necessary tables
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS outcomes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		kind TEXT NOT NULL,
		code TEXT,
		message TEXT NOT NULL,
		steps INTEGER NOT NULL,
		command_count INTEGER NOT NULL,
		final_x INTEGER NOT NULL,
		final_y INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_outcomes_timestamp ON outcomes(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_outcomes_kind ON outcomes(kind);
	CREATE INDEX IF NOT EXISTS idx_outcomes_run_id ON outcomes(run_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record inserts an entry and sets its ID
func (s *SQLiteStore) Record(ctx context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO outcomes (run_id, timestamp, kind, code, message, steps, command_count, final_x, final_y)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.RunID, entry.Timestamp.UTC(), entry.Kind, entry.Code, entry.Message,
		entry.Steps, entry.CommandCount, entry.Final.X, entry.Final.Y)
	if err != nil {
		return fmt.Errorf("failed to insert outcome: %w", err)
	}

	entry.ID, _ = res.LastInsertId()
	return nil
}

// List returns entries newest first
func (s *SQLiteStore) List(ctx context.Context, filter Filter) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, run_id, timestamp, kind, code, message, steps, command_count, final_x, final_y
		FROM outcomes WHERE 1=1`
	var args []interface{}

	if filter.Kind != "" {
		query += " AND kind = ?"
		args = append(args, filter.Kind)
	}
	if !filter.Since.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filter.Since.UTC())
	}

	query += " ORDER BY timestamp DESC, id DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		var code sql.NullString
		if err := rows.Scan(&e.ID, &e.RunID, &e.Timestamp, &e.Kind, &code, &e.Message,
			&e.Steps, &e.CommandCount, &e.Final.X, &e.Final.Y); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		e.Code = code.String
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read outcomes: %w", err)
	}
	return entries, nil
}

// Stats returns counts per kind and the average step count
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{ByKind: make(map[string]int64)}

	var avg sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*), AVG(steps) FROM outcomes`).Scan(&stats.Total, &avg); err != nil {
		return nil, fmt.Errorf("failed to count outcomes: %w", err)
	}
	stats.AvgSteps = avg.Float64

	rows, err := s.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM outcomes GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("failed to group outcomes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var kind string
		var count int64
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("failed to scan outcome counts: %w", err)
		}
		stats.ByKind[kind] = count
	}

	if stats.Total > 0 {
		var last time.Time
		err := s.db.QueryRowContext(ctx, `SELECT timestamp FROM outcomes ORDER BY timestamp DESC LIMIT 1`).Scan(&last)
		if err != nil {
			return nil, fmt.Errorf("failed to read last outcome: %w", err)
		}
		stats.LastEntry = last
	}
	return stats, nil
}

// Prune removes entries older than the specified duration
func (s *SQLiteStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan).UTC()
	res, err := s.db.ExecContext(ctx, `DELETE FROM outcomes WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune outcomes: %w", err)
	}
	return res.RowsAffected()
}

// Ping checks the database connection
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// MemoryStore is an in-memory implementation for tests and journal-less runs
type MemoryStore struct {
	mu      sync.RWMutex
	entries []*Entry
	nextID  int64
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Record stores a copy of entry
func (s *MemoryStore) Record(ctx context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	entry.ID = s.nextID
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	cp := *entry
	s.entries = append(s.entries, &cp)
	return nil
}

// List returns entries newest first
func (s *MemoryStore) List(ctx context.Context, filter Filter) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Entry
	for _, e := range s.entries {
		if filter.Kind != "" && e.Kind != filter.Kind {
			continue
		}
		if !filter.Since.IsZero() && e.Timestamp.Before(filter.Since) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID > out[j].ID
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Stats returns counts per kind and the average step count
func (s *MemoryStore) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{ByKind: make(map[string]int64)}
	var steps int64
	for _, e := range s.entries {
		stats.Total++
		stats.ByKind[e.Kind]++
		steps += int64(e.Steps)
		if e.Timestamp.After(stats.LastEntry) {
			stats.LastEntry = e.Timestamp
		}
	}
	if stats.Total > 0 {
		stats.AvgSteps = float64(steps) / float64(stats.Total)
	}
	return stats, nil
}

// Prune removes entries older than the specified duration
func (s *MemoryStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	kept := s.entries[:0]
	var removed int64
	for _, e := range s.entries {
		if e.Timestamp.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	return removed, nil
}

// Ping always succeeds
func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

// Close is a no-op
func (s *MemoryStore) Close() error { return nil }
