// Package tracker implements hook B (post-tool-use): records file
// mutations per session into a persistent store with two interchangeable
// backends, and exposes the query surface the activation engine and
// status command read from.
package tracker

import (
	"context"
	"regexp"
	"time"
)

// Category buckets a path for the tracker's aggregate stats.
type Category string

const (
	CategoryBackend  Category = "backend"
	CategoryFrontend Category = "frontend"
	CategoryOther    Category = "other"
)

// FileChangeRecord is one recorded mutation.
type FileChangeRecord struct {
	SessionID   string    `json:"session_id"`
	Path        string    `json:"path"`
	Tool        string    `json:"tool"`
	Timestamp   time.Time `json:"timestamp"`
	Category    Category  `json:"category"`
	HasAsync    bool      `json:"has_async"`
	HasTryCatch bool      `json:"has_try_catch"`
	HasAPICall  bool      `json:"has_api_call"`
	LineCount   int       `json:"line_count"`
	Unknown     bool      `json:"unknown"` // true when content flags could not be computed
}

// Key identifies a record for the no-op-on-repeat invariant.
func (r FileChangeRecord) Key() (sessionID, path string, timestamp time.Time) {
	return r.SessionID, r.Path, r.Timestamp
}

// Stats aggregates counts by category and content flag for one session.
type Stats struct {
	SessionID      string           `json:"session_id"`
	TotalFiles     int              `json:"total_files"`
	ByCategory     map[Category]int `json:"by_category"`
	AsyncCount     int              `json:"async_count"`
	TryCatchCount  int              `json:"try_catch_count"`
	APICallCount   int              `json:"api_call_count"`
	UnmodeledCount int              `json:"unmodeled_count"` // records whose flags are Unknown
}

// Store is the backend-agnostic interface both the file-log and indexed
// backends satisfy; callers must never branch on which implementation they
// hold.
type Store interface {
	Append(ctx context.Context, rec FileChangeRecord) error
	RecentPaths(ctx context.Context, sessionID string, limit int) ([]string, error)
	RiskyFiles(ctx context.Context, sessionID string) ([]FileChangeRecord, error)
	Stats(ctx context.Context, sessionID string) (Stats, error)
	Close() error
}

// backendPatterns are the precompiled content-classification regexes
// shared by both backends' classify step.
var (
	asyncPattern    = regexp.MustCompile(`\basync\s+(def|function|\()|\bawait\b|\bgo\s+func\b`)
	tryCatchPattern = regexp.MustCompile(`\btry\s*[:{]|\bcatch\s*\(|\bexcept\b|\bdefer\b|\brecover\(\)`)
	apiCallPattern  = regexp.MustCompile(`\brequests\.|fetch\(|\bhttp\.(Get|Post|NewRequest)\b|axios\.`)
)

// sourceExtensions is the default extension allow-list: "source
// code extensions"; non-matching paths are filtered before Append.
var sourceExtensions = map[string]bool{
	".go": true, ".rs": true, ".py": true, ".js": true, ".jsx": true,
	".ts": true, ".tsx": true, ".java": true, ".rb": true, ".c": true,
	".cc": true, ".cpp": true, ".h": true, ".hpp": true, ".cs": true,
	".php": true, ".swift": true, ".kt": true, ".scala": true, ".vue": true,
	".svelte": true,
}

// IsSourceExtension reports whether path's extension is in the tracker's
// allow-list.
func IsSourceExtension(ext string) bool {
	return sourceExtensions[ext]
}

// frontendExtensions narrows Category classification within the source
// allow-list.
var frontendExtensions = map[string]bool{
	".js": true, ".jsx": true, ".ts": true, ".tsx": true, ".vue": true, ".svelte": true,
}

// Classify derives a Category from a path's extension alone; the
// directory part of path is not consulted. This is advisory, not semantic.
func Classify(path, ext string) Category {
	if frontendExtensions[ext] {
		return CategoryFrontend
	}
	if sourceExtensions[ext] {
		return CategoryBackend
	}
	return CategoryOther
}
