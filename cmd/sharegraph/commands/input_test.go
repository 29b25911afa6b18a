// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bureau-foundation/sharegraph/lib/archive"
	"github.com/bureau-foundation/sharegraph/lib/codec"
)

func TestLoadSource(t *testing.T) {
	directory := t.TempDir()
	envelope := cycleEnvelope(t)
	jsonData, err := codec.JSON.MarshalEnvelope(envelope)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name        string
		path        string
		formatName  string
		stdin       io.Reader
		wantFormat  codec.Format
		wantArchive bool
	}{
		{
			name:       "cbor by extension",
			path:       writeEnvelope(t, filepath.Join(directory, "graph.cbor"), codec.CBOR, envelope),
			wantFormat: codec.CBOR,
		},
		{
			name:       "jsonc by extension",
			path:       writeEnvelope(t, filepath.Join(directory, "graph.jsonc"), codec.JSON, envelope),
			wantFormat: codec.JSON,
		},
		{
			name:       "yaml by extension",
			path:       writeEnvelope(t, filepath.Join(directory, "graph.yml"), codec.YAML, envelope),
			wantFormat: codec.YAML,
		},
		{
			name:       "sniffed without extension",
			path:       writeEnvelope(t, filepath.Join(directory, "graph"), codec.CBOR, envelope),
			wantFormat: codec.CBOR,
		},
		{
			name:       "sniffed with unknown extension",
			path:       writeEnvelope(t, filepath.Join(directory, "graph.txt"), codec.YAML, envelope),
			wantFormat: codec.YAML,
		},
		{
			name:       "explicit format overrides extension",
			path:       writeEnvelope(t, filepath.Join(directory, "mislabeled.yaml"), codec.JSON, envelope),
			formatName: "json",
			wantFormat: codec.JSON,
		},
		{
			name:        "archive ignores extension",
			path:        writeArchive(t, filepath.Join(directory, "graph.json"), codec.CBOR, envelope),
			wantFormat:  codec.CBOR,
			wantArchive: true,
		},
		{
			name:       "stdin",
			path:       stdinPath,
			stdin:      bytes.NewReader(jsonData),
			wantFormat: codec.JSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loaded, err := loadSource(tt.path, tt.formatName, tt.stdin)
			if err != nil {
				t.Fatalf("loadSource: %v", err)
			}
			if loaded.Format != tt.wantFormat {
				t.Errorf("Format = %s, want %s", loaded.Format.Name(), tt.wantFormat.Name())
			}
			if (loaded.Archive != nil) != tt.wantArchive {
				t.Errorf("Archive = %v, want archived %v", loaded.Archive, tt.wantArchive)
			}
			if loaded.Size == 0 {
				t.Error("Size = 0")
			}
			if diff := cmp.Diff(envelope, loaded.Envelope); diff != "" {
				t.Errorf("envelope mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadSourceErrors(t *testing.T) {
	directory := t.TempDir()
	envelope := cycleEnvelope(t)

	corrupt, err := archive.Marshal(codec.JSON, envelope, archive.CompressionNone)
	if err != nil {
		t.Fatal(err)
	}
	corrupt[len(corrupt)-2] ^= 0xff
	corruptPath := filepath.Join(directory, "corrupt.sgrf")
	writeBytes(t, corruptPath, corrupt)

	garbagePath := filepath.Join(directory, "garbage.json")
	writeBytes(t, garbagePath, []byte("{not json"))

	if _, err := loadSource(corruptPath, "", nil); !errors.Is(err, archive.ErrCorrupt) {
		t.Errorf("corrupt archive: error = %v, want ErrCorrupt", err)
	}
	if _, err := loadSource(garbagePath, "", nil); err == nil {
		t.Error("malformed JSON: error = nil")
	}
	if _, err := loadSource(filepath.Join(directory, "missing.cbor"), "", nil); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: error = %v, want ErrNotExist", err)
	}
	if _, err := loadSource(garbagePath, "protobuf", nil); !errors.Is(err, codec.ErrUnknownFormat) {
		t.Errorf("unknown format: error = %v, want ErrUnknownFormat", err)
	}
	if _, err := loadSource(stdinPath, "", emptyStdin()); !errors.Is(err, codec.ErrUnknownFormat) {
		t.Errorf("empty stdin: error = %v, want ErrUnknownFormat", err)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	writeBytes(t, path, []byte("old"))

	if err := writeFile(path, []byte("new")); err != nil {
		t.Fatalf("writeFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "new" {
		t.Errorf("content = %q, want %q", data, "new")
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, want only the output file", len(entries))
	}
}
