// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package graph

import "log/slog"

// Options configures one Encode or Decode call. The zero value is
// valid.
type Options struct {
	// MaxDepth bounds nesting across the whole traversal, including
	// nesting inside referent payloads. Zero means
	// value.DefaultMaxDepth.
	MaxDepth int

	// Logger receives debug records about referents. Nil disables
	// logging.
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}
