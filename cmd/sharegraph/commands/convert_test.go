// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bureau-foundation/sharegraph/lib/archive"
	"github.com/bureau-foundation/sharegraph/lib/codec"
	"github.com/bureau-foundation/sharegraph/lib/config"
	"github.com/bureau-foundation/sharegraph/lib/graph"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestConversionFromParams(t *testing.T) {
	tests := []struct {
		name    string
		params  convertParams
		archive bool // codec.archive in the configuration
		want    conversion
		wantErr bool
	}{
		{
			name: "configuration defaults",
			want: conversion{Format: codec.CBOR, Compression: archive.CompressionAuto},
		},
		{
			name:    "archive from configuration",
			archive: true,
			want:    conversion{Format: codec.CBOR, Archive: true, Compression: archive.CompressionAuto},
		},
		{
			name:    "plain overrides configuration",
			params:  convertParams{Plain: true},
			archive: true,
			want:    conversion{Format: codec.CBOR, Compression: archive.CompressionAuto},
		},
		{
			name:   "flags",
			params: convertParams{To: "YAML", Archive: true, Compression: "lz4"},
			want:   conversion{Format: codec.YAML, Archive: true, Compression: archive.CompressionLZ4},
		},
		{name: "archive and plain", params: convertParams{Archive: true, Plain: true}, wantErr: true},
		{name: "unknown format", params: convertParams{To: "xml"}, wantErr: true},
		{name: "unknown compression", params: convertParams{Compression: "gzip"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Codec.Archive = tt.archive

			got, err := tt.params.conversion(cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("conversion() = %+v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("conversion(): %v", err)
			}
			if got.Format != tt.want.Format || got.Archive != tt.want.Archive || got.Compression != tt.want.Compression {
				t.Errorf("conversion() = {%s %v %s}, want {%s %v %s}",
					got.Format.Name(), got.Archive, got.Compression,
					tt.want.Format.Name(), tt.want.Archive, tt.want.Compression)
			}
		})
	}
}

func TestOutputName(t *testing.T) {
	plainCBOR := conversion{Format: codec.CBOR}
	archivedJSON := conversion{Format: codec.JSON, Archive: true}
	plainYAML := conversion{Format: codec.YAML}

	tests := []struct {
		plan conversion
		path string
		want string
	}{
		{plainCBOR, "in/graph.json", "graph.cbor"},
		{plainCBOR, "graph.cbor.sgrf", "graph.cbor"},
		{plainCBOR, "graph.JSONC", "graph.cbor"},
		{archivedJSON, "graph.yaml", "graph.json.sgrf"},
		{archivedJSON, "notes.txt", "notes.txt.json.sgrf"},
		{plainYAML, "graph", "graph.yaml"},
	}
	for _, tt := range tests {
		if got := tt.plan.outputName(tt.path); got != tt.want {
			t.Errorf("outputName(%q) with %s = %q, want %q", tt.path, tt.plan.Format.Name(), got, tt.want)
		}
	}
}

func TestConvertFiles(t *testing.T) {
	inputs := t.TempDir()
	envelope := cycleEnvelope(t)
	paths := []string{
		writeEnvelope(t, filepath.Join(inputs, "one.cbor"), codec.CBOR, envelope),
		writeEnvelope(t, filepath.Join(inputs, "two.json"), codec.JSON, envelope),
		writeArchive(t, filepath.Join(inputs, "three.cbor.sgrf"), codec.CBOR, envelope),
	}

	t.Run("plain yaml", func(t *testing.T) {
		outputs := t.TempDir()
		written, err := convertFiles(context.Background(), paths, "", conversion{Format: codec.YAML}, outputs, 2, discardLogger())
		if err != nil {
			t.Fatalf("convertFiles: %v", err)
		}
		want := []string{
			filepath.Join(outputs, "one.yaml"),
			filepath.Join(outputs, "two.yaml"),
			filepath.Join(outputs, "three.yaml"),
		}
		if diff := cmp.Diff(want, written); diff != "" {
			t.Fatalf("written mismatch (-want +got):\n%s", diff)
		}
		for _, path := range written {
			loaded, err := loadSource(path, "", nil)
			if err != nil {
				t.Fatalf("loading %s: %v", path, err)
			}
			if loaded.Format != codec.YAML || loaded.Archive != nil {
				t.Errorf("%s: format %s, archived %v", path, loaded.Format.Name(), loaded.Archive != nil)
			}
			if diff := cmp.Diff(envelope, loaded.Envelope); diff != "" {
				t.Errorf("%s: envelope mismatch (-want +got):\n%s", path, diff)
			}
		}
	})

	t.Run("archived json", func(t *testing.T) {
		outputs := t.TempDir()
		plan := conversion{Format: codec.JSON, Archive: true, Compression: archive.CompressionAuto}
		written, err := convertFiles(context.Background(), paths[:1], "", plan, outputs, 4, discardLogger())
		if err != nil {
			t.Fatalf("convertFiles: %v", err)
		}
		if len(written) != 1 || filepath.Base(written[0]) != "one.json.sgrf" {
			t.Fatalf("written = %v, want one.json.sgrf", written)
		}
		data, err := os.ReadFile(written[0])
		if err != nil {
			t.Fatal(err)
		}
		decoded, header, err := archive.Unmarshal(data)
		if err != nil {
			t.Fatalf("archive.Unmarshal: %v", err)
		}
		if header.Format != codec.JSON {
			t.Errorf("header format = %s, want json", header.Format.Name())
		}
		if diff := cmp.Diff(envelope, decoded); diff != "" {
			t.Errorf("envelope mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestConvertFilesErrors(t *testing.T) {
	inputs := t.TempDir()
	envelope := cycleEnvelope(t)
	good := writeEnvelope(t, filepath.Join(inputs, "good.json"), codec.JSON, envelope)
	duplicate := writeEnvelope(t, filepath.Join(inputs, "good.yaml"), codec.YAML, envelope)
	dangling := writeEnvelope(t, filepath.Join(inputs, "dangling.json"), codec.JSON, danglingEnvelope())
	cborPlan := conversion{Format: codec.CBOR}

	_, err := convertFiles(context.Background(), []string{good, duplicate}, "", cborPlan, t.TempDir(), 1, discardLogger())
	if err == nil || !strings.Contains(err.Error(), "both convert to") {
		t.Errorf("duplicate outputs: error = %v", err)
	}

	_, err = convertFiles(context.Background(), []string{good}, "", conversion{Format: codec.JSON}, inputs, 1, discardLogger())
	if err == nil || !strings.Contains(err.Error(), "overwrite") {
		t.Errorf("in-place conversion: error = %v", err)
	}

	outputs := t.TempDir()
	written, err := convertFiles(context.Background(), []string{good, dangling}, "", cborPlan, outputs, 1, discardLogger())
	if !errors.Is(err, graph.ErrDanglingReference) {
		t.Errorf("dangling input: error = %v, want ErrDanglingReference", err)
	}
	if diff := cmp.Diff([]string{filepath.Join(outputs, "good.cbor")}, written); diff != "" {
		t.Errorf("written mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(filepath.Join(outputs, "dangling.cbor")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("dangling input produced output: stat error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	written, err = convertFiles(ctx, []string{good}, "", cborPlan, t.TempDir(), 1, discardLogger())
	if !errors.Is(err, context.Canceled) || len(written) != 0 {
		t.Errorf("cancelled context: written %v, error %v", written, err)
	}
}

func TestConvertStream(t *testing.T) {
	envelope := cycleEnvelope(t)
	data, err := codec.YAML.MarshalEnvelope(envelope)
	if err != nil {
		t.Fatal(err)
	}

	var output bytes.Buffer
	plan := conversion{Format: codec.CBOR, Archive: true, Compression: archive.CompressionZstd}
	if err := convertStream(plan, "", bytes.NewReader(data), &output); err != nil {
		t.Fatalf("convertStream: %v", err)
	}
	decoded, header, err := archive.Unmarshal(output.Bytes())
	if err != nil {
		t.Fatalf("archive.Unmarshal: %v", err)
	}
	if header.Format != codec.CBOR {
		t.Errorf("header format = %s, want cbor", header.Format.Name())
	}
	if diff := cmp.Diff(envelope, decoded); diff != "" {
		t.Errorf("envelope mismatch (-want +got):\n%s", diff)
	}

	dangling, err := codec.JSON.MarshalEnvelope(danglingEnvelope())
	if err != nil {
		t.Fatal(err)
	}
	output.Reset()
	if err := convertStream(plan, "json", bytes.NewReader(dangling), &output); !errors.Is(err, graph.ErrDanglingReference) {
		t.Errorf("dangling stream: error = %v", err)
	}
	if output.Len() != 0 {
		t.Errorf("dangling stream wrote %d bytes", output.Len())
	}
}

func TestConvertCommand(t *testing.T) {
	t.Setenv(config.EnvironmentVariable, "")
	inputs := t.TempDir()
	outputs := filepath.Join(t.TempDir(), "nested", "out")
	input := writeEnvelope(t, filepath.Join(inputs, "graph.json"), codec.JSON, cycleEnvelope(t))

	if err := Root().Execute([]string{"convert", "--to", "yaml", "-o", outputs, input}); err != nil {
		t.Fatalf("convert: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outputs, "graph.yaml")); err != nil {
		t.Errorf("converted file missing: %v", err)
	}

	if err := Root().Execute([]string{"convert", "--archive", "--plain", input}); err == nil {
		t.Error("--archive with --plain: error = nil")
	}
	if err := Root().Execute([]string{"convert", "-o", outputs, input, "-"}); err == nil {
		t.Error(`"-" among files: error = nil`)
	}
}
