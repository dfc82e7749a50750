//go:build catalyst_sqlite

package sqlitestore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/basket/catalyst/internal/tracker"
	"github.com/basket/catalyst/internal/tracker/sqlitestore"
)

func openTestStoreAt(t *testing.T, path string) *sqlitestore.Store {
	t.Helper()
	store, err := sqlitestore.Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func openTestStore(t *testing.T) *sqlitestore.Store {
	t.Helper()
	return openTestStoreAt(t, filepath.Join(t.TempDir(), "nested", "tracker.db"))
}

func rec(sessionID, path string, async, tryCatch bool) tracker.FileChangeRecord {
	return tracker.FileChangeRecord{
		SessionID:  sessionID,
		Path:       path,
		Tool:       "Edit",
		Timestamp:  time.Now().UTC(),
		Category:   tracker.CategoryBackend,
		HasAsync:   async,
		HasTryCatch: tryCatch,
	}
}

func TestOpenCreatesParentDirAndSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "tracker.db")
	store := openTestStoreAt(t, dbPath)

	if _, err := os.Stat(filepath.Dir(dbPath)); err != nil {
		t.Fatalf("expected parent dir to be created: %v", err)
	}

	ctx := context.Background()
	if err := store.Append(ctx, rec("s1", "main.go", false, false)); err != nil {
		t.Fatalf("append: %v", err)
	}
}

func TestAppendAndRecentPaths(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, p := range []string{"a.go", "b.go", "a.go", "c.go"} {
		if err := store.Append(ctx, rec("sess-1", p, false, false)); err != nil {
			t.Fatalf("append %s: %v", p, err)
		}
	}

	paths, err := store.RecentPaths(ctx, "sess-1", 2)
	if err != nil {
		t.Fatalf("recent paths: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 recent paths, got %v", paths)
	}
	if paths[0] != "c.go" {
		t.Fatalf("expected most recent path c.go first, got %q", paths[0])
	}
}

func TestRiskyFilesFiltersAsyncWithoutTryCatch(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Append(ctx, rec("sess-2", "risky.go", true, false)); err != nil {
		t.Fatalf("append risky: %v", err)
	}
	if err := store.Append(ctx, rec("sess-2", "safe.go", true, true)); err != nil {
		t.Fatalf("append safe: %v", err)
	}

	risky, err := store.RiskyFiles(ctx, "sess-2")
	if err != nil {
		t.Fatalf("risky files: %v", err)
	}
	if len(risky) != 1 || risky[0].Path != "risky.go" {
		t.Fatalf("expected only risky.go, got %+v", risky)
	}
}

func TestStatsAggregatesByCategory(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Append(ctx, rec("sess-3", "one.go", true, true)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Append(ctx, rec("sess-3", "two.go", false, false)); err != nil {
		t.Fatalf("append: %v", err)
	}

	stats, err := store.Stats(ctx, "sess-3")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalFiles != 2 {
		t.Fatalf("expected 2 total files, got %d", stats.TotalFiles)
	}
	if stats.AsyncCount != 1 {
		t.Fatalf("expected 1 async file, got %d", stats.AsyncCount)
	}
	if stats.ByCategory[tracker.CategoryBackend] != 2 {
		t.Fatalf("expected 2 backend files, got %d", stats.ByCategory[tracker.CategoryBackend])
	}
}

func TestAppendSameKeyIsNoOp(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	fixed := tracker.FileChangeRecord{
		SessionID: "sess-dup",
		Path:      "repeat.go",
		Tool:      "Edit",
		Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Category:  tracker.CategoryBackend,
	}
	for i := 0; i < 3; i++ {
		if err := store.Append(ctx, fixed); err != nil {
			t.Fatalf("append #%d: %v", i, err)
		}
	}

	stats, err := store.Stats(ctx, "sess-dup")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalFiles != 1 {
		t.Fatalf("expected 1 file (re-recording the same tuple must be a no-op), got %d", stats.TotalFiles)
	}

	distinct := fixed
	distinct.Timestamp = fixed.Timestamp.Add(time.Second)
	if err := store.Append(ctx, distinct); err != nil {
		t.Fatalf("append distinct timestamp: %v", err)
	}
	stats, err = store.Stats(ctx, "sess-dup")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalFiles != 2 {
		t.Fatalf("expected 2 files after a distinct-timestamp record, got %d", stats.TotalFiles)
	}
}
