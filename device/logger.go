package device

import (
	"log/slog"
	"sync/atomic"
)

// loggerPtr stores the package logger. Accessed atomically for thread safety.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(slog.DiscardHandler))
}

func logger() *slog.Logger { return loggerPtr.Load() }

// SetLogger sets the logger used for device acquisition diagnostics.
// Pass nil to silence it.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	loggerPtr.Store(l)
}
