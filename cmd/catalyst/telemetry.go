package main

import (
	"context"
	"log/slog"

	"github.com/basket/catalyst/internal/config"
	"github.com/basket/catalyst/internal/orchestrator"
	catotel "github.com/basket/catalyst/internal/otel"
	"github.com/basket/catalyst/internal/shared"
	"github.com/basket/catalyst/internal/telemetry"
)

// setupLogging installs a JSON slog.Logger writing to
// <catalyst home>/logs/system.jsonl (and stdout) as the process default,
// mirroring a typical CLI startup sequence, and returns a context carrying
// a fresh trace_id (shared.NewTraceID) that every log line and span from
// this invocation shares. A config load or logger-init failure falls back
// to the stdlib default logger rather than aborting — logging is
// diagnostic, never load-bearing for init/status/update's actual file
// operations.
func setupLogging() context.Context {
	traceID := shared.NewTraceID()
	ctx := shared.WithTraceID(context.Background(), traceID)

	cfg, err := config.Load()
	if err != nil {
		return ctx
	}
	logger, _, err := telemetry.NewLogger(cfg.HomeDir, cfg.LogLevel, traceID, false)
	if err != nil {
		return ctx
	}
	slog.SetDefault(logger)
	return ctx
}

// setupTracing reads CATALYST_OTEL_ENDPOINT (via config.Load) and returns a
// Provider ready to wrap init/update with a root span. On any config load
// error it falls back to a disabled (no-op) provider rather than failing
// the command — tracing is diagnostic, never load-bearing.
func setupTracing(ctx context.Context) *catotel.Provider {
	cfg, err := config.Load()
	endpoint := ""
	if err == nil {
		endpoint = cfg.OTELEndpoint
	}
	provider, err := catotel.Init(ctx, catotel.FromEndpoint(endpoint, orchestrator.Version))
	if err != nil {
		provider, _ = catotel.Init(ctx, catotel.Config{})
	}
	return provider
}
