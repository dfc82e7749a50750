// Package filelog is the tracker's default, zero-dependency backend: an
// append-only newline-delimited JSON log per session. Readers scan
// linearly, suitable for write-heavy, read-rare use.
package filelog

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/basket/catalyst/internal/tracker"
)

// Store appends one JSON record per line under <dir>/<session_id>.log.
// O_APPEND writes of single-line records under PIPE_BUF give durability
// and no-interleaving guarantees across concurrent processes without
// additional locking.
type Store struct {
	dir string
	mu  sync.Mutex // serializes this process's own writers; cross-process safety comes from O_APPEND
}

// Open ensures dir exists and returns a Store rooted there.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create tracker state dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) logPath(sessionID string) string {
	return filepath.Join(s.dir, sessionID+".log")
}

// Append writes rec as one JSON line, unless a record with the same
// Key() (session_id, path, timestamp) has already been recorded for this
// session, in which case it is a no-op. The encoded line, including its
// trailing newline, must stay under PIPE_BUF (historically 4096 bytes on
// Linux) for atomic interleave-free appends; callers should not embed
// unbounded content in a FileChangeRecord.
func (s *Store) Append(ctx context.Context, rec tracker.FileChangeRecord) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.scan(rec.SessionID)
	if err != nil {
		return err
	}
	sessionID, path, timestamp := rec.Key()
	for _, e := range existing {
		eSessionID, ePath, eTimestamp := e.Key()
		if eSessionID == sessionID && ePath == path && eTimestamp.Equal(timestamp) {
			return nil
		}
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal file change record: %w", err)
	}
	line = append(line, '\n')

	f, err := os.OpenFile(s.logPath(rec.SessionID), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open tracker log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("append tracker record: %w", err)
	}
	return nil
}

func (s *Store) scan(sessionID string) ([]tracker.FileChangeRecord, error) {
	f, err := os.Open(s.logPath(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open tracker log: %w", err)
	}
	defer f.Close()

	var out []tracker.FileChangeRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec tracker.FileChangeRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			continue // a partially written final line is tolerated, not fatal
		}
		out = append(out, rec)
	}
	if err := scanner.Err(); err != nil {
		return out, fmt.Errorf("scan tracker log: %w", err)
	}
	return out, nil
}

// RecentPaths returns up to limit most-recently-appended distinct paths,
// most recent first. O(N) scan of the session's log.
func (s *Store) RecentPaths(ctx context.Context, sessionID string, limit int) ([]string, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	records, err := s.scan(sessionID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(records))
	var out []string
	for i := len(records) - 1; i >= 0 && len(out) < limit; i-- {
		p := records[i].Path
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out, nil
}

// RiskyFiles returns records with has_async && !has_try_catch.
func (s *Store) RiskyFiles(ctx context.Context, sessionID string) ([]tracker.FileChangeRecord, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	records, err := s.scan(sessionID)
	if err != nil {
		return nil, err
	}
	var risky []tracker.FileChangeRecord
	for _, r := range records {
		if r.HasAsync && !r.HasTryCatch {
			risky = append(risky, r)
		}
	}
	return risky, nil
}

// Stats aggregates counts by category and content flag.
func (s *Store) Stats(ctx context.Context, sessionID string) (tracker.Stats, error) {
	stats := tracker.Stats{SessionID: sessionID, ByCategory: map[tracker.Category]int{}}
	if ctx.Err() != nil {
		return stats, ctx.Err()
	}
	records, err := s.scan(sessionID)
	if err != nil {
		return stats, err
	}
	for _, r := range records {
		stats.TotalFiles++
		stats.ByCategory[r.Category]++
		if r.Unknown {
			stats.UnmodeledCount++
			continue
		}
		if r.HasAsync {
			stats.AsyncCount++
		}
		if r.HasTryCatch {
			stats.TryCatchCount++
		}
		if r.HasAPICall {
			stats.APICallCount++
		}
	}
	return stats, nil
}

// Close is a no-op: the file-log backend holds no long-lived handle.
func (s *Store) Close() error {
	return nil
}
