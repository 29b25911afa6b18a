// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bureau-foundation/sharegraph/lib/graph"
)

// ErrUnknownFormat is returned by Lookup, ForPath and ByID when no
// registered format matches.
var ErrUnknownFormat = errors.New("unknown format")

// Format is a concrete wire encoding of a graph.Envelope.
type Format interface {
	// Name is the format's lookup name ("cbor", "json", "yaml").
	Name() string

	// ID is the format's one-byte tag in archive headers. IDs are
	// stable across releases.
	ID() uint8

	// Extensions lists the file extensions, with leading dot, that
	// ForPath maps to this format. The first is the canonical one.
	Extensions() []string

	// Binary reports whether the encoding is unsuitable for a
	// terminal.
	Binary() bool

	MarshalEnvelope(envelope *graph.Envelope) ([]byte, error)
	UnmarshalEnvelope(data []byte) (*graph.Envelope, error)
}

// Formats lists every registered format in ID order.
func Formats() []Format {
	return []Format{CBOR, JSON, YAML}
}

// Names returns the names of every registered format.
func Names() []string {
	formats := Formats()
	names := make([]string, len(formats))
	for i, format := range formats {
		names[i] = format.Name()
	}
	return names
}

// Lookup returns the format registered under name. Matching is case
// insensitive.
func Lookup(name string) (Format, error) {
	for _, format := range Formats() {
		if strings.EqualFold(format.Name(), name) {
			return format, nil
		}
	}
	return nil, fmt.Errorf("%w %q (known: %s)", ErrUnknownFormat, name, strings.Join(Names(), ", "))
}

// ForPath returns the format whose extensions include path's
// extension.
func ForPath(path string) (Format, error) {
	extension := strings.ToLower(filepath.Ext(path))
	if extension == "" {
		return nil, fmt.Errorf("%w: %s has no file extension", ErrUnknownFormat, path)
	}
	for _, format := range Formats() {
		for _, candidate := range format.Extensions() {
			if candidate == extension {
				return format, nil
			}
		}
	}
	return nil, fmt.Errorf("%w for extension %q", ErrUnknownFormat, extension)
}

// ByID returns the format with the given archive tag.
func ByID(id uint8) (Format, error) {
	for _, format := range Formats() {
		if format.ID() == id {
			return format, nil
		}
	}
	return nil, fmt.Errorf("%w: id %d", ErrUnknownFormat, id)
}

// Detect guesses the format of an unlabeled envelope from its first
// bytes. A CBOR envelope opens with a map header (major type 5), a JSON
// envelope with '{' or a comment. Anything else non-empty is taken to
// be YAML.
func Detect(data []byte) (Format, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrUnknownFormat)
	}
	if data[0]>>5 == 5 {
		return CBOR, nil
	}
	text := bytes.TrimLeft(data, " \t\r\n")
	if len(text) == 0 {
		return nil, fmt.Errorf("%w: blank input", ErrUnknownFormat)
	}
	switch text[0] {
	case '{', '/':
		return JSON, nil
	}
	return YAML, nil
}

// Marshal encodes root with graph.Encode and serializes the envelope
// in format.
func Marshal(format Format, root any, options graph.Options) ([]byte, error) {
	envelope, err := graph.Encode(root, options)
	if err != nil {
		return nil, err
	}
	data, err := format.MarshalEnvelope(envelope)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s envelope: %w", format.Name(), err)
	}
	return data, nil
}

// Unmarshal parses data as a format envelope and decodes it into
// target with graph.Decode. target is left untouched on any error.
func Unmarshal(format Format, data []byte, target any, options graph.Options) error {
	envelope, err := format.UnmarshalEnvelope(data)
	if err != nil {
		return fmt.Errorf("parsing %s envelope: %w", format.Name(), err)
	}
	return graph.Decode(envelope, target, options)
}
