// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bureau-foundation/sharegraph/lib/codec"
)

func TestDump(t *testing.T) {
	directory := t.TempDir()
	envelope := cycleEnvelope(t)
	archived := writeArchive(t, filepath.Join(directory, "graph.cbor.sgrf"), codec.CBOR, envelope)

	for _, format := range []codec.Format{codec.JSON, codec.YAML} {
		t.Run(format.Name(), func(t *testing.T) {
			var output bytes.Buffer
			if err := dump(archived, "", format.Name(), false, emptyStdin(), &output); err != nil {
				t.Fatalf("dump: %v", err)
			}
			printed, err := format.UnmarshalEnvelope(output.Bytes())
			if err != nil {
				t.Fatalf("dump output does not parse as %s: %v\n%s", format.Name(), err, output.String())
			}
			if diff := cmp.Diff(envelope, printed); diff != "" {
				t.Errorf("envelope mismatch (-want +got):\n%s", diff)
			}
		})
	}

	var output bytes.Buffer
	if err := dump(archived, "", "json", false, emptyStdin(), &output); err != nil {
		t.Fatalf("dump: %v", err)
	}
	if !strings.Contains(output.String(), `"$ref": 1`) {
		t.Errorf("JSON dump lacks a $ref marker:\n%s", output.String())
	}
}

func TestDumpDiagnostic(t *testing.T) {
	path := writeEnvelope(t, filepath.Join(t.TempDir(), "graph.yaml"), codec.YAML, cycleEnvelope(t))

	var output bytes.Buffer
	if err := dump(path, "", "json", true, emptyStdin(), &output); err != nil {
		t.Fatalf("dump --diag: %v", err)
	}
	for _, want := range []string{`"root": 29(0)`, `"next": 29(1)`, `"name": "second"`} {
		if !strings.Contains(output.String(), want) {
			t.Errorf("diagnostic output lacks %s:\n%s", want, output.String())
		}
	}
}

func TestDumpRejectsBinaryTarget(t *testing.T) {
	path := writeEnvelope(t, filepath.Join(t.TempDir(), "graph.cbor"), codec.CBOR, cycleEnvelope(t))

	var output bytes.Buffer
	err := dump(path, "", "cbor", false, emptyStdin(), &output)
	if err == nil || !strings.Contains(err.Error(), "--diag") {
		t.Errorf("dump --to cbor: error = %v, want a pointer to --diag", err)
	}
	if output.Len() != 0 {
		t.Errorf("wrote %d bytes on error", output.Len())
	}
}
