// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewCommandLogger creates a structured logger on stderr at the given
// level. When stderr is a terminal it uses slog.TextHandler for
// human-readable output; when stderr is piped or redirected it uses
// slog.JSONHandler so scripts can parse it.
//
// Callers scope the logger with command-specific context via With():
//
//	logger := cli.NewCommandLogger(level).With("command", "convert")
func NewCommandLogger(level slog.Leveler) *slog.Logger {
	return NewLogger(os.Stderr, level, term.IsTerminal(int(os.Stderr.Fd())))
}

// NewLogger creates a logger writing to w: text when terminal is true,
// JSON otherwise.
func NewLogger(w io.Writer, level slog.Leveler, terminal bool) *slog.Logger {
	options := &slog.HandlerOptions{Level: level}
	if terminal {
		return slog.New(slog.NewTextHandler(w, options))
	}
	return slog.New(slog.NewJSONHandler(w, options))
}
