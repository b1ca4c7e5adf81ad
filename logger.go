package jester

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

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger used by jester and its backends.
// By default nothing is logged. Pass nil to restore the silent default.
//
// Log levels used by jester:
//   - [slog.LevelDebug]: per-frame batch statistics (RunConfig.Debug)
//   - [slog.LevelInfo]: lifecycle events (init, scene switches, shutdown)
//   - [slog.LevelWarn]: recoverable faults (asset load failures, dropped
//     sprites, transient backend errors)
//
// Example:
//
//	jester.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger. Backend packages call this so they share
// the same configuration.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
