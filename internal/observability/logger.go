// Package observability provides the process-wide structured logger.
package observability

import (
	"log/slog"
	"os"
	"sync"
)

var (
	mu     sync.RWMutex
	logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
)

// Logger returns the process-wide logger.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// SetDebug replaces the logger with one that emits debug-level records.
func SetDebug() {
	mu.Lock()
	defer mu.Unlock()
	logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// WithFields returns a logger with additional fields attached.
func WithFields(kv ...any) *slog.Logger {
	return Logger().With(kv...)
}
