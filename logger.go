package rq

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the package logger. Queues created without WithLogger
// read it on every log call, so SetLogger takes effect for running queues.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger used by queues that were not given one
// with WithLogger. By default rq produces no log output.
//
// Pass nil to restore the silent default. SetLogger is safe for concurrent use.
//
// Log levels used by rq:
//   - [slog.LevelDebug]: per-drain diagnostics (trigger, bytes, duration)
//   - [slog.LevelInfo]: flusher start and stop
//   - [slog.LevelWarn]: swallowed executor failures
//   - [slog.LevelError]: fatal executor failures
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current package logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
