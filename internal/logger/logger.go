// Package logger holds the process-wide slog.Logger, set once by the CLI
// entry point and read by every package that needs to log without threading
// a logger through every constructor.
package logger

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
)

var (
	global       *slog.Logger
	debugEnabled bool
	mu           sync.RWMutex
)

// SetGlobal installs logger as the process-wide logger and records whether
// debug-level logging is enabled.
func SetGlobal(l *slog.Logger, debug bool) {
	mu.Lock()
	defer mu.Unlock()

	global = l
	debugEnabled = debug
}

// Get returns the process-wide logger, falling back to a stderr text
// handler at Info level (or Debug, if SetGlobal last enabled it) when no
// logger has been installed yet.
func Get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()

	if global != nil {
		return global
	}

	level := slog.LevelInfo
	if debugEnabled {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// IsDebug reports whether the installed logger is running at debug level.
func IsDebug() bool {
	mu.RLock()
	defer mu.RUnlock()

	return debugEnabled
}

// ForQuery binds a "query" attribute to log, so every log line an evaluation
// emits can be traced back to the query text that produced it without the
// caller repeating it at every call site.
func ForQuery(log *slog.Logger, query fmt.Stringer) *slog.Logger {
	return log.With("query", query.String())
}
