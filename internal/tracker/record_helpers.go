package tracker

import (
	"context"
	"path/filepath"
	"time"
)

// NewRecord builds a FileChangeRecord for path, running content
// classification and deriving Category. Returns (rec, ok) where ok is
// false when path's extension is not in the source allow-list and the
// caller should skip recording it entirely.
func NewRecord(sessionID, path, tool string, now time.Time) (FileChangeRecord, bool) {
	ext := filepath.Ext(path)
	if !IsSourceExtension(ext) {
		return FileChangeRecord{}, false
	}

	hasAsync, hasTryCatch, hasAPICall, lineCount, unknown := classifyContent(path)
	return FileChangeRecord{
		SessionID:   sessionID,
		Path:        path,
		Tool:        tool,
		Timestamp:   now,
		Category:    Classify(path, ext),
		HasAsync:    hasAsync,
		HasTryCatch: hasTryCatch,
		HasAPICall:  hasAPICall,
		LineCount:   lineCount,
		Unknown:     unknown,
	}, true
}

// RecordAll filters paths to recordable extensions, builds a record for
// each, and appends every one to store. Errors from individual appends are
// collected but do not stop processing remaining paths — a single
// unwritable record must not drop the rest of a multi-edit batch.
func RecordAll(ctx context.Context, store Store, sessionID, tool string, paths []string, now time.Time) (recorded int, errs []error) {
	for _, p := range paths {
		rec, ok := NewRecord(sessionID, p, tool, now)
		if !ok {
			continue
		}
		if err := store.Append(ctx, rec); err != nil {
			errs = append(errs, err)
			continue
		}
		recorded++
	}
	return recorded, errs
}
