// Package logging provides a simple leveled logger on top of log/slog.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelError + 4
	}
}

// ParseLevel parses a log level string.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger is a leveled printf-style logger. The zero value is not usable;
// use New or Discard.
type Logger struct {
	mu     sync.Mutex
	level  *slog.LevelVar
	output io.Writer
	slog   *slog.Logger
}

// New creates a logger writing text records to stderr.
func New(level Level) *Logger {
	l := &Logger{level: new(slog.LevelVar)}
	l.level.Set(level.slogLevel())
	l.setOutput(os.Stderr)
	return l
}

// SetOutput sets the log output destination.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.setOutput(w)
}

func (l *Logger) setOutput(w io.Writer) {
	l.output = w
	l.slog = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l.level}))
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.level.Set(level.slogLevel())
}

// Slog returns the underlying structured logger, e.g. for http.Server.ErrorLog.
func (l *Logger) Slog() *slog.Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.slog
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	lg := l.Slog()
	ctx := context.Background()
	if !lg.Enabled(ctx, level.slogLevel()) {
		return
	}
	lg.Log(ctx, level.slogLevel(), fmt.Sprintf(format, args...))
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, format, args...)
}

// Info logs an info message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LevelError, format, args...)
}

// Discard returns a logger that discards all output.
func Discard() *Logger {
	l := &Logger{level: new(slog.LevelVar)}
	l.level.Set(slog.LevelError + 4) // Higher than any level
	l.setOutput(io.Discard)
	return l
}
