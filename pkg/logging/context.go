package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey int

const (
	// loggerKey is the context key for the logger.
	loggerKey contextKey = iota
	// queryIDKey is the context key for the resolution-pass query ID.
	queryIDKey
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from context, or returns the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}

	if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
		return logger
	}

	return Default()
}

// Ctx returns a logger from the context or the default logger.
// This is a shorter alias for FromContext.
func Ctx(ctx context.Context) *zerolog.Logger {
	return FromContext(ctx)
}

// WithQueryID tags the context logger with the query driving a resolution
// pass, so every adapter and merge log line can be traced back to it.
func WithQueryID(ctx context.Context, queryID string) context.Context {
	ctx = context.WithValue(ctx, queryIDKey, queryID)

	logger := FromContext(ctx)
	newLogger := logger.With().Str("query_id", queryID).Logger()
	return WithLogger(ctx, &newLogger)
}

// QueryID extracts the query ID from context.
func QueryID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(queryIDKey).(string); ok {
		return id
	}
	return ""
}

// WithAdapter returns a context whose logger carries the adapter name.
func WithAdapter(ctx context.Context, adapter string) context.Context {
	logger := FromContext(ctx).With().Str("adapter", adapter).Logger()
	return WithLogger(ctx, &logger)
}
