/*
PURPOSE:
  Provides the structured logger for y2start.
  Wraps slog for consistent output.

REQUIREMENTS:
  User-specified:
  - Diagnostics go to stderr; stdout carries only the launch plan and help.

  Implementation-discovered:
  - Level comes from config (log_level), so the logger is rebuilt after
    config load.

ARCHITECTURE INTEGRATION:
  - Used everywhere.
  - Configured by: internal/cli

ERROR HANDLING:
  - ParseLevel rejects unknown level names.

IMPLEMENTATION RULES:
  - Use `log/slog` (Go 1.21+).

USAGE:
  output.Logger.Info("message", "key", "value")

SELF-HEALING INSTRUCTIONS:
  - Ensure Go 1.21+ is used.

RELATED FILES:
  - internal/config/config.go

MAINTENANCE:
  - Add a JSON handler if the launcher ever runs non-interactively.
*/

package output

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

var Logger *slog.Logger

func init() {
	Logger = NewLogger(os.Stderr, slog.LevelWarn)
}

// NewLogger returns a text logger writing to w at the given level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// SetLogger allows overriding the default logger (e.g. for testing or config changes)
func SetLogger(l *slog.Logger) {
	Logger = l
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
}
