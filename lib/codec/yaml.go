// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"errors"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/sharegraph/lib/graph"
)

type yamlFormat struct{}

// YAML encodes envelopes as YAML with the same marker conventions as
// JSON.
var YAML Format = yamlFormat{}

func (yamlFormat) Name() string         { return "yaml" }
func (yamlFormat) ID() uint8            { return 3 }
func (yamlFormat) Extensions() []string { return []string{".yaml", ".yml"} }
func (yamlFormat) Binary() bool         { return false }

func (yamlFormat) MarshalEnvelope(envelope *graph.Envelope) ([]byte, error) {
	wire, err := newTextEnvelope(envelope)
	if err != nil {
		return nil, err
	}
	var buffer bytes.Buffer
	encoder := yaml.NewEncoder(&buffer)
	encoder.SetIndent(2)
	if err := encoder.Encode(wire); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func (yamlFormat) UnmarshalEnvelope(data []byte) (*graph.Envelope, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var wire textEnvelope
	if err := decoder.Decode(&wire); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty document")
		}
		return nil, err
	}
	var extra any
	if err := decoder.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected document after envelope")
	}
	return wire.envelope()
}
