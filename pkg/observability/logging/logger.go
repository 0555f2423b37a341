// Copyright Semchunk Authors
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config for logger
type Config struct {
	Level  string // "debug", "info", "warn", "error"
	Format string // "json" or "text"
	Output io.Writer
}

// Logger wraps slog.Logger
type Logger struct {
	*slog.Logger
}

// New creates a new logger. Output defaults to stderr so that chunk JSON
// written to stdout stays machine-readable.
func New(cfg Config) *Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}

// With returns a child logger carrying the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
