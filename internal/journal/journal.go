// Package journal persists served decisions in a local SQLite database.
//
// Recording is best effort and happens after the response is written; a
// broken journal must never cost a caller its decision.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Entry is one served decision.
type Entry struct {
	ID           string
	RequestedAt  time.Time
	Decision     string
	StopLoss     float64
	TakeProfit   float64
	LotSize      float64
	TrailActive  bool
	Reason       string
	Dialect      string
	Outcome      string // "ok" or "fallback"
	FailureClass string // error class when Outcome is "fallback"
	Model        string
	DurationMS   int64
}

// Stats summarizes the journal contents.
type Stats struct {
	Total         int64
	ByDecision    map[string]int64
	Fallbacks     int64
	AvgDurationMS float64
}

// Store is a SQLite-backed decision journal.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the journal database.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for concurrent access
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &Store{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the decisions table and indexes.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS decisions (
		id TEXT PRIMARY KEY,
		requested_at DATETIME NOT NULL,
		decision TEXT NOT NULL,
		sl REAL NOT NULL,
		tp REAL NOT NULL,
		lot_size REAL NOT NULL,
		trail_active INTEGER NOT NULL,
		reason TEXT,
		dialect TEXT,
		outcome TEXT NOT NULL,
		failure_class TEXT,
		model TEXT,
		duration_ms INTEGER,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_decisions_requested_at ON decisions(requested_at);
	CREATE INDEX IF NOT EXISTS idx_decisions_outcome ON decisions(outcome);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts one served decision.
func (s *Store) Record(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO decisions (id, requested_at, decision, sl, tp, lot_size, trail_active, reason, dialect, outcome, failure_class, model, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.RequestedAt.UTC(), e.Decision, e.StopLoss, e.TakeProfit, e.LotSize, e.TrailActive,
		e.Reason, e.Dialect, e.Outcome, e.FailureClass, e.Model, e.DurationMS)
	if err != nil {
		return fmt.Errorf("failed to insert decision: %w", err)
	}
	return nil
}

// Recent returns the latest entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, requested_at, decision, sl, tp, lot_size, trail_active, reason, dialect, outcome, failure_class, model, duration_ms
		FROM decisions
		ORDER BY requested_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.RequestedAt, &e.Decision, &e.StopLoss, &e.TakeProfit, &e.LotSize,
			&e.TrailActive, &e.Reason, &e.Dialect, &e.Outcome, &e.FailureClass, &e.Model, &e.DurationMS); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Stats aggregates the journal.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{ByDecision: make(map[string]int64)}

	rows, err := s.db.QueryContext(ctx, `
		SELECT decision, COUNT(*) FROM decisions GROUP BY decision
	`)
	if err != nil {
		return stats, fmt.Errorf("failed to query decision counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var count int64
		if err := rows.Scan(&kind, &count); err != nil {
			return stats, fmt.Errorf("failed to scan decision count: %w", err)
		}
		stats.ByDecision[kind] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM decisions WHERE outcome = 'fallback'
	`).Scan(&stats.Fallbacks)
	if err != nil {
		return stats, fmt.Errorf("failed to query fallback count: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(AVG(duration_ms), 0) FROM decisions
	`).Scan(&stats.AvgDurationMS)
	if err != nil {
		return stats, fmt.Errorf("failed to query average duration: %w", err)
	}

	return stats, nil
}
