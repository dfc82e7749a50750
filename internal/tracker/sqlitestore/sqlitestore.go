//go:build catalyst_sqlite

// Package sqlitestore is the tracker's opt-in indexed backend, built
// only with the catalyst_sqlite tag since it pulls in cgo via
// mattn/go-sqlite3. Selected at build time by a feature flag; callers use
// the same tracker.Store interface the file-log backend implements.
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/basket/catalyst/internal/tracker"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS file_modifications (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	file_path TEXT NOT NULL,
	tool TEXT NOT NULL,
	timestamp INTEGER NOT NULL,
	category TEXT NOT NULL,
	has_async BOOLEAN NOT NULL,
	has_try_catch BOOLEAN NOT NULL,
	has_api_call BOOLEAN NOT NULL,
	line_count INTEGER NOT NULL,
	unknown BOOLEAN NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_file_modifications_session ON file_modifications(session_id);
CREATE INDEX IF NOT EXISTS idx_file_modifications_category ON file_modifications(category);
CREATE UNIQUE INDEX IF NOT EXISTS idx_file_modifications_key ON file_modifications(session_id, file_path, timestamp);
`

// Store wraps an *sql.DB against one SQLite file with WAL mode and a
// bounded busy-retry helper (1ms-50ms backoff, 5 attempts).
type Store struct {
	db *sql.DB
}

// Open creates or opens the database file at path, configuring WAL mode
// and a busy_timeout, then ensures the schema exists.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create tracker db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_busy_timeout=5000&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite3: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &Store{db: db}
	if err := store.configurePragmas(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init tracker schema: %w", err)
	}
	return store, nil
}

func (s *Store) configurePragmas(ctx context.Context) error {
	for _, q := range []string{"PRAGMA journal_mode=WAL;", "PRAGMA synchronous=NORMAL;"} {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("set pragma %q: %w", q, err)
		}
	}
	return nil
}

// retryOnBusy retries f when SQLite reports BUSY or LOCKED, with bounded
// exponential backoff (min 1ms, max 50ms), making at most maxRetries+1
// attempts in all.
func retryOnBusy(ctx context.Context, maxRetries int, f func() error) error {
	const baseDelay = 1 * time.Millisecond
	const maxDelay = 50 * time.Millisecond

	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err = f()
		if err == nil {
			return nil
		}
		if !isSQLiteBusy(err) {
			return err
		}
		if attempt == maxRetries {
			return err
		}
		delay := baseDelay << uint(attempt)
		if delay > maxDelay {
			delay = maxDelay
		}
		jitter := time.Duration(rand.Int63n(int64(delay/2) + 1))
		delay = delay - delay/4 + jitter

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "(5)") ||
		strings.Contains(msg, "(6)")
}

// Append inserts rec under a single-statement transaction, retrying on a
// busy signal and failing the invocation (not crashing) once exhausted.
// INSERT OR IGNORE against the (session_id, file_path, timestamp) unique
// index makes re-recording the same Key() a no-op rather than a duplicate
// row.
func (s *Store) Append(ctx context.Context, rec tracker.FileChangeRecord) error {
	return retryOnBusy(ctx, 4, func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT OR IGNORE INTO file_modifications
				(session_id, file_path, tool, timestamp, category, has_async, has_try_catch, has_api_call, line_count, unknown)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.SessionID, rec.Path, rec.Tool, rec.Timestamp.UnixNano(), string(rec.Category),
			rec.HasAsync, rec.HasTryCatch, rec.HasAPICall, rec.LineCount, rec.Unknown,
		)
		if err != nil {
			return fmt.Errorf("insert file modification: %w", err)
		}
		return nil
	})
}

// RecentPaths returns up to limit most-recently-inserted distinct paths.
func (s *Store) RecentPaths(ctx context.Context, sessionID string, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT file_path FROM file_modifications
		WHERE session_id = ?
		GROUP BY file_path
		ORDER BY MAX(id) DESC
		LIMIT ?`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent paths: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return out, fmt.Errorf("scan recent path: %w", err)
		}
		out = append(out, path)
	}
	return out, rows.Err()
}

// RiskyFiles returns records with has_async && !has_try_catch.
func (s *Store) RiskyFiles(ctx context.Context, sessionID string) ([]tracker.FileChangeRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, file_path, tool, timestamp, category, has_async, has_try_catch, has_api_call, line_count, unknown
		FROM file_modifications
		WHERE session_id = ? AND has_async = 1 AND has_try_catch = 0
		ORDER BY id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query risky files: %w", err)
	}
	defer rows.Close()

	var out []tracker.FileChangeRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Stats aggregates counts by category and content flag.
func (s *Store) Stats(ctx context.Context, sessionID string) (tracker.Stats, error) {
	stats := tracker.Stats{SessionID: sessionID, ByCategory: map[tracker.Category]int{}}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category, has_async, has_try_catch, has_api_call, unknown
		FROM file_modifications WHERE session_id = ?`, sessionID)
	if err != nil {
		return stats, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var category string
		var hasAsync, hasTryCatch, hasAPICall, unknown bool
		if err := rows.Scan(&category, &hasAsync, &hasTryCatch, &hasAPICall, &unknown); err != nil {
			return stats, fmt.Errorf("scan stats row: %w", err)
		}
		stats.TotalFiles++
		stats.ByCategory[tracker.Category(category)]++
		if unknown {
			stats.UnmodeledCount++
			continue
		}
		if hasAsync {
			stats.AsyncCount++
		}
		if hasTryCatch {
			stats.TryCatchCount++
		}
		if hasAPICall {
			stats.APICallCount++
		}
	}
	return stats, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scanner) (tracker.FileChangeRecord, error) {
	var rec tracker.FileChangeRecord
	var category string
	var unixNano int64
	if err := row.Scan(&rec.SessionID, &rec.Path, &rec.Tool, &unixNano, &category,
		&rec.HasAsync, &rec.HasTryCatch, &rec.HasAPICall, &rec.LineCount, &rec.Unknown); err != nil {
		return rec, fmt.Errorf("scan file modification: %w", err)
	}
	rec.Category = tracker.Category(category)
	rec.Timestamp = time.Unix(0, unixNano).UTC()
	return rec, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
