// Package otel provides OpenTelemetry integration for catalyst's
// orchestrator phases (init/update/status). It wraps a tracer and meter
// provider with cleanup. When disabled — the common case, since catalyst
// is a short-lived CLI rather than a long-running service — every
// operation is a no-op with zero overhead.
package otel

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

const (
	// TracerName is the instrumentation scope name for catalyst spans.
	TracerName = "catalyst"
	// MeterName is the instrumentation scope name for catalyst metrics.
	MeterName = "catalyst"
)

// Config holds OTel configuration, derived from config.Config.OTELEndpoint.
type Config struct {
	// Enabled turns tracing on. False means every call below is a no-op.
	Enabled bool
	// SpanLogPath is the file spans are appended to, one JSON object per
	// line. CATALYST_OTEL_ENDPOINT is repurposed as this path rather than
	// an OTLP collector address: catalyst's phases are seconds-long CLI
	// runs, not a service with an always-on collector to talk to.
	SpanLogPath string
	// ServiceName defaults to "catalyst" when empty.
	ServiceName string
	// Version is reported as the catalyst.version resource attribute.
	Version string
}

// FromEndpoint builds a Config from the CATALYST_OTEL_ENDPOINT value
// (empty means disabled).
func FromEndpoint(endpoint, version string) Config {
	return Config{Enabled: endpoint != "", SpanLogPath: endpoint, Version: version}
}

// Provider wraps OTel tracer and meter providers with cleanup.
type Provider struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  metric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	shutdown       func(context.Context) error
}

// Init sets up OpenTelemetry with the given config. The returned Provider
// must be Shutdown() on exit. If cfg.Enabled is false, returns a no-op
// provider and never touches the filesystem.
func Init(ctx context.Context, cfg Config) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{
			Tracer:        nooptrace.NewTracerProvider().Tracer(TracerName),
			Meter:         noopmetric.NewMeterProvider().Meter(MeterName),
			MeterProvider: noopmetric.NewMeterProvider(),
			shutdown:      func(context.Context) error { return nil },
		}, nil
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "catalyst"
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			attribute.String("catalyst.version", cfg.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	exporter, err := newFileSpanExporter(cfg.SpanLogPath)
	if err != nil {
		return nil, fmt.Errorf("create span exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithResource(res))
	otel.SetMeterProvider(mp)

	return &Provider{
		TracerProvider: tp,
		MeterProvider:  mp,
		Tracer:         tp.Tracer(TracerName),
		Meter:          mp.Meter(MeterName),
		shutdown: func(ctx context.Context) error {
			tErr := tp.Shutdown(ctx)
			mErr := mp.Shutdown(ctx)
			if tErr != nil {
				return tErr
			}
			return mErr
		},
	}, nil
}

// Shutdown flushes and shuts down the provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.shutdown == nil {
		return nil
	}
	return p.shutdown(ctx)
}

// fileSpanExporter appends each finished span as one JSON line. It exists
// because catalyst has no always-on OTLP collector to export to; this is
// the simplest SpanExporter that still lets CATALYST_OTEL_ENDPOINT produce
// inspectable output.
type fileSpanExporter struct {
	path string
	mu   sync.Mutex
}

func newFileSpanExporter(path string) (*fileSpanExporter, error) {
	return &fileSpanExporter{path: path}, nil
}
