// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"os"
	"testing"

	"github.com/bureau-foundation/sharegraph/lib/archive"
	"github.com/bureau-foundation/sharegraph/lib/codec"
	"github.com/bureau-foundation/sharegraph/lib/graph"
	"github.com/bureau-foundation/sharegraph/lib/value"
)

type node struct {
	Name string          `graph:"name"`
	Next graph.Ref[node] `graph:"next"`
}

// cycleEnvelope encodes a two-node cycle rooted at the first node:
// two referents, three tokens.
func cycleEnvelope(t *testing.T) *graph.Envelope {
	t.Helper()
	first := graph.New(node{Name: "first"})
	second := graph.New(node{Name: "second", Next: first})
	first.Get().Next = second

	envelope, err := graph.Encode(first, graph.Options{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return envelope
}

// danglingEnvelope points its root past an empty referent table.
func danglingEnvelope() *graph.Envelope {
	return &graph.Envelope{Root: value.RefToken{ID: 5}, Referents: []any{}}
}

// orphanEnvelope carries a referent nothing points at.
func orphanEnvelope() *graph.Envelope {
	return &graph.Envelope{Root: "alone", Referents: []any{"orphan"}}
}

func writeEnvelope(t *testing.T, path string, format codec.Format, envelope *graph.Envelope) string {
	t.Helper()
	data, err := format.MarshalEnvelope(envelope)
	if err != nil {
		t.Fatalf("MarshalEnvelope(%s): %v", format.Name(), err)
	}
	writeBytes(t, path, data)
	return path
}

func writeArchive(t *testing.T, path string, format codec.Format, envelope *graph.Envelope) string {
	t.Helper()
	data, err := archive.Marshal(format, envelope, archive.CompressionZstd)
	if err != nil {
		t.Fatalf("archive.Marshal: %v", err)
	}
	writeBytes(t, path, data)
	return path
}

func writeBytes(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func emptyStdin() *bytes.Reader {
	return bytes.NewReader(nil)
}
