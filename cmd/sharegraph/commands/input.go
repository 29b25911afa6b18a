// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/sharegraph/lib/archive"
	"github.com/bureau-foundation/sharegraph/lib/codec"
	"github.com/bureau-foundation/sharegraph/lib/graph"
)

// stdinPath names standard input in positional arguments.
const stdinPath = "-"

// source is one loaded envelope and how it was stored.
type source struct {
	// Path is the file the envelope came from, or "-" for stdin.
	Path string

	// Format is the envelope's wire format. For an archive it is the
	// format recorded in the header.
	Format codec.Format

	// Archive is the archive header, or nil for a bare envelope.
	Archive *archive.Header

	// Size is the number of bytes read.
	Size int

	Envelope *graph.Envelope
}

// readInput reads path, or stdin when path is "-".
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == stdinPath {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// loadSource reads and parses one envelope. Archives are recognized by
// their magic. A bare envelope is parsed as formatName when set,
// otherwise by the file extension, falling back to sniffing the
// leading bytes.
func loadSource(path, formatName string, stdin io.Reader) (*source, error) {
	data, err := readInput(path, stdin)
	if err != nil {
		return nil, err
	}
	loaded := &source{Path: path, Size: len(data)}

	if archive.IsArchive(data) {
		envelope, header, err := archive.Unmarshal(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		loaded.Format = header.Format
		loaded.Archive = &header
		loaded.Envelope = envelope
		return loaded, nil
	}

	format, err := resolveFormat(path, formatName, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	envelope, err := format.UnmarshalEnvelope(data)
	if err != nil {
		return nil, fmt.Errorf("%s: parsing %s envelope: %w", path, format.Name(), err)
	}
	loaded.Format = format
	loaded.Envelope = envelope
	return loaded, nil
}

func resolveFormat(path, formatName string, data []byte) (codec.Format, error) {
	if formatName != "" {
		return codec.Lookup(formatName)
	}
	if path != stdinPath {
		if format, err := codec.ForPath(path); err == nil {
			return format, nil
		}
	}
	return codec.Detect(data)
}

// writeFile replaces path with data by writing a temporary file in the
// same directory and renaming it, so readers never see a partial file.
func writeFile(path string, data []byte) error {
	temporary, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(temporary.Name())

	if _, err := temporary.Write(data); err != nil {
		temporary.Close()
		return fmt.Errorf("write %s: %w", temporary.Name(), err)
	}
	if err := temporary.Close(); err != nil {
		return fmt.Errorf("close %s: %w", temporary.Name(), err)
	}
	if err := os.Chmod(temporary.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(temporary.Name(), path)
}
