// Package logger provides structured logging with automatic sensitive-data redaction.
//
// This package wraps Go's standard log/slog with convenience functions for:
//   - per-hop wire logging of REST/SSE turn requests and responses
//   - automatic bearer-token and API-key redaction
//   - contextual logging keyed by conversation, turn, and transport
//   - level-based verbosity control
//
// All exported functions use the global DefaultLogger which can be configured
// for different output formats and log levels.
package logger

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"regexp"
	"strings"
)

var (
	// DefaultLogger is the global structured logger instance.
	// It is safe for concurrent use and initialized with slog.LevelInfo by default.
	DefaultLogger *slog.Logger
)

func init() {
	level := slog.LevelInfo
	if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
		level = ParseLevel(envLevel)
	}
	currentLevel = level

	handler := NewContextHandler(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	DefaultLogger = slog.New(handler)
}

// SetLevel changes the logging level for all subsequent log operations.
// This is safe for concurrent use as it replaces the entire logger instance.
func SetLevel(level slog.Level) {
	currentLevel = level
	handler := NewContextHandler(slog.NewTextHandler(logOutput, &slog.HandlerOptions{
		Level: level,
	}))
	DefaultLogger = slog.New(handler)
}

// SetVerbose enables debug-level logging when verbose is true, otherwise sets info-level.
// This is a convenience wrapper around SetLevel for command-line verbose flags.
func SetVerbose(verbose bool) {
	if verbose {
		SetLevel(slog.LevelDebug)
	} else {
		SetLevel(slog.LevelInfo)
	}
}

// Info logs an informational message with structured key-value attributes.
func Info(msg string, args ...any) {
	DefaultLogger.Info(msg, args...)
}

// InfoContext logs an informational message with context and structured attributes.
func InfoContext(ctx context.Context, msg string, args ...any) {
	DefaultLogger.InfoContext(ctx, msg, args...)
}

// Debug logs a debug-level message with structured attributes.
// Debug messages are only output when the log level is set to LevelDebug or lower.
func Debug(msg string, args ...any) {
	DefaultLogger.Debug(msg, args...)
}

// DebugContext logs a debug message with context and structured attributes.
func DebugContext(ctx context.Context, msg string, args ...any) {
	DefaultLogger.DebugContext(ctx, msg, args...)
}

// Warn logs a warning message with structured attributes.
// Use for recoverable errors or unexpected but non-critical situations.
func Warn(msg string, args ...any) {
	DefaultLogger.Warn(msg, args...)
}

// WarnContext logs a warning message with context and structured attributes.
func WarnContext(ctx context.Context, msg string, args ...any) {
	DefaultLogger.WarnContext(ctx, msg, args...)
}

// Error logs an error message with structured attributes.
// Use for errors that affect operation but don't cause complete failure.
func Error(msg string, args ...any) {
	DefaultLogger.Error(msg, args...)
}

// ErrorContext logs an error message with context and structured attributes.
func ErrorContext(ctx context.Context, msg string, args ...any) {
	DefaultLogger.ErrorContext(ctx, msg, args...)
}

var (
	// sensitivePatterns matches strings shaped like credentials a Strategy might
	// place in headers or URLs: bearer tokens and common API-key prefixes.
	sensitivePatterns = []*regexp.Regexp{
		regexp.MustCompile(`Bearer\s+[a-zA-Z0-9_\-.]+`),
		regexp.MustCompile(`sk-[a-zA-Z0-9]{32,}`),
		regexp.MustCompile(`AIza[a-zA-Z0-9_-]{35}`),
	}
)

// RedactSensitiveData removes bearer tokens and API-key-shaped substrings from a
// string before it reaches a log record. It replaces matches with a redacted form
// that preserves the first few characters for debugging while hiding the rest.
//
// This function is safe for concurrent use as it only reads from the compiled
// patterns.
func RedactSensitiveData(input string) string {
	result := input

	for _, pattern := range sensitivePatterns {
		result = pattern.ReplaceAllStringFunc(result, func(match string) string {
			if strings.HasPrefix(match, "Bearer ") {
				return "Bearer [REDACTED]"
			}
			if len(match) > 8 {
				return match[:4] + "...[REDACTED]"
			}
			return "[REDACTED]"
		})
	}

	return result
}

// TurnRequest logs an outbound REST or SSE hop at debug level with automatic
// redaction of headers and URL. It is a no-op when debug logging is disabled.
func TurnRequest(ctx context.Context, transport, method, url string, headers map[string]string) {
	if !DefaultLogger.Enabled(ctx, slog.LevelDebug) {
		return
	}

	attrs := make([]any, 0, 8)
	attrs = append(attrs,
		"transport", transport,
		"method", method,
		"url", RedactSensitiveData(url),
	)

	if len(headers) > 0 {
		redacted := make(map[string]string, len(headers))
		for k, v := range headers {
			redacted[k] = RedactSensitiveData(v)
		}
		attrs = append(attrs, "headers", redacted)
	}

	DebugContext(ctx, "turn hop request", attrs...)
}

// TurnResponse logs the outcome of a REST or SSE hop at debug level (or error
// level when err is non-nil). Response bodies are never logged: the wire
// protocol carries activities, which may contain end-user content, so only
// shape (status code, byte count) is recorded.
func TurnResponse(ctx context.Context, transport string, statusCode int, bodyLen int, err error) {
	if err != nil {
		ErrorContext(ctx, "turn hop failed", "transport", transport, "status_code", statusCode, "error", err)
		return
	}

	if !DefaultLogger.Enabled(ctx, slog.LevelDebug) {
		return
	}

	DebugContext(ctx, "turn hop response", "transport", transport, "status_code", statusCode, "body_bytes", bodyLen)
}

// marshalForLog is used by components that want to log a structured value at
// debug level with redaction applied; it never fails loudly, falling back to
// an error marker so a bad value never blocks the log line it is attached to.
func marshalForLog(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "<unmarshalable>"
	}
	return RedactSensitiveData(string(b))
}
