// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Logger is the process-wide structured logger. It writes human-readable
// text when stderr is a terminal and JSON otherwise, so piped output stays
// machine-parseable.
var Logger = New(os.Getenv("ERST_LOG"))

// New builds a logger at the given level ("debug", "info", "warn", "error").
// An empty or unknown level means info.
func New(level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// SetLevel replaces the package logger with one at the given level.
func SetLevel(level string) {
	Logger = New(level)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
