// Package logger writes structured logs to a file so they never interleave
// with the terminal UI. Until Init is called, records are discarded.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

var (
	mu       sync.Mutex
	levelVar = new(slog.LevelVar)
	l        = slog.New(slog.NewTextHandler(io.Discard, nil))
	logFile  *os.File
	logPath  string
)

// Init opens path for appending and routes all records there. Calling it
// again with a different path switches files.
func Init(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil && path == logPath {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	if logFile != nil {
		logFile.Close()
	}
	logFile, logPath = f, path
	l = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: levelVar}))
	l.Info("logger initialized", "path", path)
	return nil
}

// SetDebug toggles debug records.
func SetDebug(enabled bool) {
	if enabled {
		levelVar.Set(slog.LevelDebug)
	} else {
		levelVar.Set(slog.LevelInfo)
	}
}

// Path returns the current log file, or "" when logging is discarded.
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	return logPath
}

func get() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return l
}

func Debug(msg string, args ...any) { get().Debug(msg, args...) }
func Info(msg string, args ...any)  { get().Info(msg, args...) }
func Warn(msg string, args ...any)  { get().Warn(msg, args...) }
func Error(msg string, args ...any) { get().Error(msg, args...) }

// Close flushes and closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// Reset returns the logger to its discarding state. Used by tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
	}
	logFile, logPath = nil, ""
	l = slog.New(slog.NewTextHandler(io.Discard, nil))
	levelVar.Set(slog.LevelInfo)
}
