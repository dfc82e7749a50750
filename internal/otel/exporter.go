package otel

import (
	"context"
	"encoding/json"
	"os"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// spanRecord is the on-disk JSON shape for one exported span.
type spanRecord struct {
	Name       string            `json:"name"`
	TraceID    string            `json:"trace_id"`
	SpanID     string            `json:"span_id"`
	ParentID   string            `json:"parent_span_id,omitempty"`
	StartedAt  time.Time         `json:"started_at"`
	EndedAt    time.Time         `json:"ended_at"`
	DurationMS int64             `json:"duration_ms"`
	StatusCode string            `json:"status_code"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// ExportSpans appends data.Name, span/trace IDs, and attributes for every
// finished span to the configured file, one JSON object per line.
func (e *fileSpanExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	if len(spans) == 0 {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	f, err := os.OpenFile(e.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, s := range spans {
		rec := spanRecord{
			Name:       s.Name(),
			TraceID:    s.SpanContext().TraceID().String(),
			SpanID:     s.SpanContext().SpanID().String(),
			StartedAt:  s.StartTime(),
			EndedAt:    s.EndTime(),
			DurationMS: s.EndTime().Sub(s.StartTime()).Milliseconds(),
			StatusCode: s.Status().Code.String(),
			Attributes: attrsToMap(s),
		}
		if s.Parent().IsValid() {
			rec.ParentID = s.Parent().SpanID().String()
		}
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}

// Shutdown is a no-op: every ExportSpans call already flushes to disk.
func (e *fileSpanExporter) Shutdown(context.Context) error { return nil }

func attrsToMap(s sdktrace.ReadOnlySpan) map[string]string {
	attrs := s.Attributes()
	if len(attrs) == 0 {
		return nil
	}
	out := make(map[string]string, len(attrs))
	for _, kv := range attrs {
		out[string(kv.Key)] = kv.Value.Emit()
	}
	return out
}
