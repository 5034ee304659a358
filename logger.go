package stage

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/stage/device"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for stage and its sub-packages.
// By default, stage produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use. Pass nil to restore the default
// silent behavior.
//
// Log levels used by stage:
//   - [slog.LevelDebug]: system wiring, context identities, texture GC runs
//   - [slog.LevelInfo]: lifecycle events (context acquired or restored, hello banner)
//   - [slog.LevelWarn]: deprecated calls, context loss, release errors
//
// Example:
//
//	stage.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	device.SetLogger(l)
}

// Logger returns the current package logger.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// deprecated records which deprecation notices were already logged.
var deprecated sync.Map

// warnDeprecated logs a deprecation notice for name once per process.
func warnDeprecated(l *slog.Logger, name, replacement string) {
	if _, seen := deprecated.LoadOrStore(name, struct{}{}); seen {
		return
	}
	l.Warn("stage: deprecated call", "method", name, "use", replacement)
}
