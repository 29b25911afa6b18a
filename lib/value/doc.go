// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package value converts Go values to and from encoded trees, the
// format-neutral form that the wire codecs in lib/codec serialize.
//
// An encoded tree is built from a small closed set of Go types:
//
//	nil, bool, int64, uint64, float64, string, []byte,
//	[]any, map[string]any, RefToken
//
// [Encoder] walks a Go value by reflection and produces a tree;
// [Decoder] walks a tree and fills a Go value. Structs become maps
// keyed by field name (the `graph` struct tag, falling back to `json`),
// map keys are visited in sorted order, and plain pointers are inlined.
// Neither side tracks pointer identity: a graph of plain pointers is
// expanded as a tree, and a cycle of plain pointers stops at MaxDepth
// with [ErrDepthExceeded].
//
// Identity tracking belongs to the shared-handle hook. A type that
// implements [Handle] is never inlined by the encoder when a
// [EncodeHook] is installed; the hook decides what the handle site
// encodes to (lib/graph emits a [RefToken]). On the way back, a
// destination whose pointer implements [HandleSlot] is handed to the
// [DecodeHook] together with the subtree found at that site. Without
// hooks, handles degrade to their payloads: each occurrence is inlined
// and each decode allocates a fresh cell.
//
// Shape mismatches between a tree and its destination are reported as
// [*TypeError], which matches [ErrTypeMismatch] under errors.Is.
// Numbers are fitted through lib/numeric, so an out-of-range value
// matches both ErrTypeMismatch and numeric.ErrOutOfRange.
package value
