// Package logger provides verbose logging for the DueDiligence CLI.
// When verbose mode is enabled via the --verbose flag, debug records are
// written to stderr to help users follow polling, retries and cache writes.
// Warnings and errors are always written.
package logger

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	level   = new(slog.LevelVar)
	output  io.Writer = os.Stderr
	root              = newRoot(os.Stderr)
)

func init() {
	level.Set(slog.LevelWarn)
}

func newRoot(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	if v {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelWarn)
	}
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	root = newRoot(w)
}

// Output returns the current log writer.
func Output() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return output
}

// For returns a logger tagged with a component attribute.
// Loggers obtained before SetOutput keep writing to the old writer.
func For(component string) *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root.With("component", component)
}

// Debug logs a debug record on the root logger.
func Debug(msg string, args ...any) {
	For("cli").Debug(msg, args...)
}

// Warn logs a warning on the root logger.
func Warn(msg string, args ...any) {
	For("cli").Warn(msg, args...)
}
