package objpool

import (
	"log/slog"
	"sync/atomic"
)

// logger holds the caller-supplied logger, nil until SetLogger is called.
// An atomic pointer lets SetLogger race freely with pool operations that log.
var logger atomic.Pointer[slog.Logger]

// Logger returns the logger used by the pools. With no logger set, each call
// derives one from slog.Default() with a component attribute. The pools only
// log rare lifecycle events (close, clear, discarded releases), so deriving
// on demand keeps the code simple and always reflects the current
// slog.Default(); callers on a hot logging path should install their own
// logger via SetLogger.
func Logger() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return slog.Default().With("component", "objpool")
}

// SetLogger installs l as the logger for all pools in the process. Passing
// nil reverts to deriving from slog.Default(). The logger should already
// carry any attributes the caller wants; objpool adds none to it.
//
// Safe to call at any time, concurrently with pool operations.
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}
