package otel

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestInitDisabled(t *testing.T) {
	p, err := Init(context.Background(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("Init disabled: %v", err)
	}
	defer p.Shutdown(context.Background())

	if p.Tracer == nil {
		t.Fatal("expected non-nil tracer (noop)")
	}
	if p.Meter == nil {
		t.Fatal("expected non-nil meter (noop)")
	}
}

func TestInitDisabledShutdownNoop(t *testing.T) {
	p, err := Init(context.Background(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

func TestInitEnabledWritesSpanFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spans.jsonl")

	p, err := Init(context.Background(), Config{Enabled: true, SpanLogPath: path, Version: "0.1.0"})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	ctx, span := StartSpan(context.Background(), p.Tracer, "catalyst.test",
		AttrProjectRoot.String("/tmp/project"),
	)
	span.End()
	_ = ctx

	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read span log: %v", err)
	}
	var rec spanRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("decode span record: %v", err)
	}
	if rec.Name != "catalyst.test" {
		t.Fatalf("Name = %q, want catalyst.test", rec.Name)
	}
	if rec.Attributes["catalyst.project_root"] != "/tmp/project" {
		t.Fatalf("unexpected attributes: %+v", rec.Attributes)
	}
}

func TestInitServiceNameDefault(t *testing.T) {
	dir := t.TempDir()
	p, err := Init(context.Background(), Config{Enabled: true, SpanLogPath: filepath.Join(dir, "spans.jsonl")})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer p.Shutdown(context.Background())
	if p.TracerProvider == nil {
		t.Fatal("expected non-nil TracerProvider")
	}
}

func TestFromEndpointDisabledWhenEmpty(t *testing.T) {
	if cfg := FromEndpoint("", "0.1.0"); cfg.Enabled {
		t.Fatal("expected Enabled=false for an empty endpoint")
	}
}

func TestFromEndpointEnabledWhenSet(t *testing.T) {
	cfg := FromEndpoint("/tmp/spans.jsonl", "0.1.0")
	if !cfg.Enabled {
		t.Fatal("expected Enabled=true for a non-empty endpoint")
	}
	if cfg.SpanLogPath != "/tmp/spans.jsonl" {
		t.Fatalf("SpanLogPath = %q, want /tmp/spans.jsonl", cfg.SpanLogPath)
	}
}
