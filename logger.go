package halfbuf

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with halfbuf-specific helpers so operations log
// with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithName adds a blob name field to the logger.
func (l *Logger) WithName(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("name", name),
	}
}

// WithLength adds an element count field to the logger.
func (l *Logger) WithLength(n int) *Logger {
	return &Logger{
		Logger: l.Logger.With("length", n),
	}
}

// LogSave logs a store save.
func (l *Logger) LogSave(ctx context.Context, name string, length, size int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "save failed",
			"name", name,
			"length", length,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "save completed",
			"name", name,
			"length", length,
			"bytes", size,
		)
	}
}

// LogSaveAll logs a concurrent batch save.
func (l *Logger) LogSaveAll(ctx context.Context, count int, err error) {
	if err != nil {
		l.WarnContext(ctx, "batch save failed",
			"count", count,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "batch save completed",
			"count", count,
		)
	}
}

// LogLoad logs a store load.
func (l *Logger) LogLoad(ctx context.Context, name string, length int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"name", name,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "load completed",
			"name", name,
			"length", length,
		)
	}
}

// LogDelete logs a store delete.
func (l *Logger) LogDelete(ctx context.Context, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "delete failed",
			"name", name,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "delete completed",
			"name", name,
		)
	}
}

// LogMatMul logs a matrix multiply dispatched to a compute backend.
func (l *Logger) LogMatMul(ctx context.Context, backend string, n int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "matmul failed",
			"backend", backend,
			"n", n,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "matmul completed",
			"backend", backend,
			"n", n,
		)
	}
}
