// Package corolog provides the package-level structured logger shared by
// coroio's components.
//
// This design allows external integration with whatever logging backend an
// embedding application already uses, by swapping the logiface.Logger via
// SetDefault, while providing a sensible slog-backed default out of the
// box.
//
// Usage:
//
//	corolog.SetDefault(myLogger) // e.g. at process startup
package corolog

import (
	"log/slog"
	"os"
	"sync"

	"github.com/joeycumines/logiface"
	logifaceslog "github.com/joeycumines/logiface-slog"
)

var (
	mu      sync.RWMutex
	current *logiface.Logger[*logifaceslog.Event]
)

// Default returns the current package-level logger, building the default
// slog-backed one on first use.
func Default() *logiface.Logger[*logifaceslog.Event] {
	mu.RLock()
	l := current
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if current == nil {
		current = newDefaultLogger()
	}
	return current
}

// SetDefault overrides the package-level logger. Safe for concurrent use
// with Default.
func SetDefault(l *logiface.Logger[*logifaceslog.Event]) {
	mu.Lock()
	defer mu.Unlock()
	current = l
}

func newDefaultLogger() *logiface.Logger[*logifaceslog.Event] {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	return logiface.New[*logifaceslog.Event](logifaceslog.NewLogger(handler))
}
