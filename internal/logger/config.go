package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Log format constants.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// logOutput is the writer the default and reconfigured loggers write to.
// It is a package variable (rather than hardcoded os.Stderr) so tests can
// redirect it to a buffer.
var logOutput io.Writer = os.Stderr

// currentLevel tracks the level last passed to SetLevel/SetVerbose/SetOutput,
// since slog.Logger exposes no direct accessor for it.
var currentLevel = slog.LevelInfo

// customHandler, when non-nil, is a handler installed via SetLogger. Configure
// leaves it in place rather than overwriting a caller-supplied handler.
var customHandler slog.Handler

// ParseLevel parses a level name ("debug", "info", "warn"/"warning", "error")
// into a slog.Level, defaulting to LevelInfo for anything unrecognized.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LoggingConfigSpec defines the logging configuration for the Configure function.
type LoggingConfigSpec struct {
	DefaultLevel string
	Format       string // "json" or "text"
	CommonFields map[string]string
}

// SetOutput redirects the default text logger to w, or to os.Stderr when w is
// nil. It exists mainly so tests can capture log output in a buffer.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	logOutput = w
	customHandler = nil
	DefaultLogger = slog.New(NewContextHandler(slog.NewTextHandler(logOutput, &slog.HandlerOptions{Level: currentLevel})))
	slog.SetDefault(DefaultLogger)
}

// SetLogger installs a caller-supplied handler as the default logger, bypassing
// any further Configure calls until reset with Configure(nil) on a fresh
// process. This is how a host application wires its own logging pipeline
// through this package's package-level functions.
func SetLogger(handler slog.Handler) {
	customHandler = handler
	DefaultLogger = slog.New(handler)
	slog.SetDefault(DefaultLogger)
}

// Configure applies a LoggingConfigSpec to the global logger, replacing
// DefaultLogger with one built from the requested level, format, and common
// fields. A nil spec is a no-op.
func Configure(cfg *LoggingConfigSpec) error {
	if cfg == nil {
		return nil
	}

	if customHandler != nil {
		return nil
	}

	level := slog.LevelInfo
	if cfg.DefaultLevel != "" {
		level = ParseLevel(cfg.DefaultLevel)
	}
	currentLevel = level

	var commonFields []slog.Attr
	for k, v := range cfg.CommonFields {
		commonFields = append(commonFields, slog.String(k, v))
	}

	var baseHandler slog.Handler
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == FormatJSON {
		baseHandler = slog.NewJSONHandler(logOutput, opts)
	} else {
		baseHandler = slog.NewTextHandler(logOutput, opts)
	}

	DefaultLogger = slog.New(NewContextHandler(baseHandler, commonFields...))
	slog.SetDefault(DefaultLogger)

	return nil
}
