package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Standard attribute keys for catalyst spans.
var (
	AttrProjectRoot = attribute.Key("catalyst.project_root")
	AttrSkillID     = attribute.Key("catalyst.skill.id")
	AttrPhase       = attribute.Key("catalyst.phase")
	AttrForced      = attribute.Key("catalyst.forced")
	AttrTraceID     = attribute.Key("catalyst.trace_id")
)

// StartSpan starts an internal-kind span with the given attributes, the
// orchestrator's phases (init/update/status) are never servers or clients
// of anything — they run entirely within the catalyst process.
func StartSpan(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}
