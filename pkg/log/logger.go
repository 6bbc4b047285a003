package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	logger *slog.Logger
	mu     sync.RWMutex
)

// Output formats accepted by InitLogTo.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ParseLogLevel converts a string log level to a slog.Level.
// Valid values are "debug", "info", "warn", "error".
// Unknown values fall back to info, which is what an operator running the
// migration interactively wants to see.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// InitLogTo replaces the package logger with one writing to w in the given
// format ("text" or "json"). It can be called multiple times.
func InitLogTo(w io.Writer, logLevel, format string) {
	opts := &slog.HandlerOptions{Level: ParseLogLevel(logLevel)}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	mu.Lock()
	defer mu.Unlock()
	logger = slog.New(handler)
}

// SetLogger installs an already configured logger. Tests use it to capture
// records.
func SetLogger(l *slog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

// GetLog returns the slog.Logger instance configured for the application.
// If the logger hasn't been initialized yet, it defaults to info level text
// output on stderr so that stdout stays reserved for the migration report.
func GetLog() *slog.Logger {
	mu.RLock()
	if logger != nil {
		defer mu.RUnlock()
		return logger
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()

	// Double-check after acquiring write lock
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	return logger
}

// With returns a child logger carrying the given attributes.
func With(args ...any) *slog.Logger { return GetLog().With(args...) }

// Debug logs a message at Debug level.
func Debug(msg string, args ...any) { GetLog().Debug(msg, args...) }

// Info logs a message at Info level.
func Info(msg string, args ...any) { GetLog().Info(msg, args...) }

// Warn logs a message at Warn level.
func Warn(msg string, args ...any) { GetLog().Warn(msg, args...) }

// Error logs a message at Error level.
func Error(msg string, args ...any) { GetLog().Error(msg, args...) }
