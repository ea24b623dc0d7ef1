package infrastructure

import (
	"context"
	"log/slog"
)

type contextKey string

// RunIDContextKey carries the scenario run identifier through the call
// chain so every log record can be tied back to one run.
const RunIDContextKey contextKey = "run_id"

// WithRunID stores a run ID in the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDContextKey, runID)
}

// GetRunID retrieves the run ID from the context, or "".
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDContextKey).(string); ok {
		return runID
	}
	return ""
}

// LoggerFromContext returns the global logger bound to the context's run
// ID when one is present.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	logger := GetLogger()
	if runID := GetRunID(ctx); runID != "" {
		return logger.With("run_id", runID)
	}
	return logger
}
