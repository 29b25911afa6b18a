// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec serializes graph envelopes in concrete wire formats.
//
// Three formats are registered, each with a stable archive ID:
//
//   - CBOR (ID 1): deterministic binary encoding (RFC 8949 §4.2).
//     Reference tokens are CBOR tag 29 wrapping the id. Byte strings
//     stay byte strings.
//   - JSON (ID 2): indented text. Input may contain comments and
//     trailing commas.
//   - YAML (ID 3): block-style text with the same conventions as JSON.
//
// The text formats have no native token or byte string type, so they
// reserve two single-key marker maps:
//
//	{"$ref": 3}         reference token for referent 3
//	{"$bytes": "AAEC"}  byte string, standard base64
//
// User map keys beginning with '$' are escaped by doubling the '$'
// ("$id" travels as "$$id"), so no user map is ever read as a marker.
//
// Numbers are normalized on input: integers that fit int64 become
// int64, larger positive integers uint64, and everything else float64.
// A float with an integral value written by a text format therefore
// reads back as an integer; the value decoder converts it back when
// the target field is a float.
//
// Marshal and Unmarshal combine a format with graph.Encode and
// graph.Decode:
//
//	data, err := codec.Marshal(codec.CBOR, root, graph.Options{})
//	err = codec.Unmarshal(codec.CBOR, data, &root, graph.Options{})
//
// Formats are found by name with Lookup, by file extension with
// ForPath, and by archive ID with ByID.
package codec
