package filelog

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/basket/catalyst/internal/tracker"
)

func TestAppendAndRecentPaths(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	base := time.Now().UTC()
	paths := []string{"a.go", "b.go", "c.go"}
	for i, p := range paths {
		rec := tracker.FileChangeRecord{
			SessionID: "sess-1", Path: p, Tool: "Edit",
			Timestamp: base.Add(time.Duration(i) * time.Second),
			Category:  tracker.CategoryBackend,
		}
		if err := store.Append(ctx, rec); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	recent, err := store.RecentPaths(ctx, "sess-1", 2)
	if err != nil {
		t.Fatalf("RecentPaths: %v", err)
	}
	if len(recent) != 2 || recent[0] != "c.go" || recent[1] != "b.go" {
		t.Fatalf("RecentPaths = %v, want [c.go b.go]", recent)
	}
}

func TestRiskyFiles(t *testing.T) {
	dir := t.TempDir()
	store, _ := Open(dir)
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UTC()
	_ = store.Append(ctx, tracker.FileChangeRecord{SessionID: "s", Path: "risky.go", HasAsync: true, HasTryCatch: false, Timestamp: now})
	_ = store.Append(ctx, tracker.FileChangeRecord{SessionID: "s", Path: "safe.go", HasAsync: true, HasTryCatch: true, Timestamp: now})

	risky, err := store.RiskyFiles(ctx, "s")
	if err != nil {
		t.Fatalf("RiskyFiles: %v", err)
	}
	if len(risky) != 1 || risky[0].Path != "risky.go" {
		t.Fatalf("RiskyFiles = %+v, want only risky.go", risky)
	}
}

func TestStatsAggregatesByCategory(t *testing.T) {
	dir := t.TempDir()
	store, _ := Open(dir)
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UTC()
	_ = store.Append(ctx, tracker.FileChangeRecord{SessionID: "s", Path: "a.go", Category: tracker.CategoryBackend, HasAsync: true, Timestamp: now})
	_ = store.Append(ctx, tracker.FileChangeRecord{SessionID: "s", Path: "b.tsx", Category: tracker.CategoryFrontend, Timestamp: now})
	_ = store.Append(ctx, tracker.FileChangeRecord{SessionID: "s", Path: "c.go", Category: tracker.CategoryBackend, Unknown: true, Timestamp: now})

	stats, err := store.Stats(ctx, "s")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalFiles != 3 {
		t.Fatalf("TotalFiles = %d, want 3", stats.TotalFiles)
	}
	if stats.ByCategory[tracker.CategoryBackend] != 2 {
		t.Fatalf("ByCategory[backend] = %d, want 2", stats.ByCategory[tracker.CategoryBackend])
	}
	if stats.UnmodeledCount != 1 {
		t.Fatalf("UnmodeledCount = %d, want 1", stats.UnmodeledCount)
	}
	if stats.AsyncCount != 1 {
		t.Fatalf("AsyncCount = %d, want 1", stats.AsyncCount)
	}
}

func TestConcurrentAppendsNeverLoseARecord(t *testing.T) {
	dir := t.TempDir()
	store, _ := Open(dir)
	defer store.Close()

	ctx := context.Background()
	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Append(ctx, tracker.FileChangeRecord{
				SessionID: "concurrent",
				Path:      filepath.Join("pkg", "file.go"),
				Timestamp: time.Now().UTC(),
			})
		}(i)
	}
	wg.Wait()

	stats, err := store.Stats(ctx, "concurrent")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalFiles != n {
		t.Fatalf("TotalFiles = %d, want %d (no record loss under concurrent append)", stats.TotalFiles, n)
	}
}

func TestAppendSameKeyIsNoOp(t *testing.T) {
	dir := t.TempDir()
	store, _ := Open(dir)
	defer store.Close()

	ctx := context.Background()
	rec := tracker.FileChangeRecord{
		SessionID: "sess-dup", Path: "repeat.go", Tool: "Edit",
		Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Category:  tracker.CategoryBackend,
	}
	for i := 0; i < 3; i++ {
		if err := store.Append(ctx, rec); err != nil {
			t.Fatalf("Append #%d: %v", i, err)
		}
	}

	stats, err := store.Stats(ctx, "sess-dup")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalFiles != 1 {
		t.Fatalf("TotalFiles = %d, want 1 (re-recording the same tuple must be a no-op)", stats.TotalFiles)
	}

	// A record that shares session_id and path but differs in timestamp
	// is a distinct tuple and must still be appended.
	rec2 := rec
	rec2.Timestamp = rec.Timestamp.Add(time.Second)
	if err := store.Append(ctx, rec2); err != nil {
		t.Fatalf("Append rec2: %v", err)
	}
	stats, err = store.Stats(ctx, "sess-dup")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalFiles != 2 {
		t.Fatalf("TotalFiles = %d, want 2 after a distinct-timestamp record", stats.TotalFiles)
	}
}

func TestRecentPathsMissingSessionReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	store, _ := Open(dir)
	defer store.Close()

	paths, err := store.RecentPaths(context.Background(), "never-seen", 10)
	if err != nil {
		t.Fatalf("RecentPaths: %v", err)
	}
	if len(paths) != 0 {
		t.Fatalf("expected empty result for unseen session, got %v", paths)
	}
}
