// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/sharegraph/lib/graph"
)

type jsonFormat struct{}

// JSON encodes envelopes as indented JSON. Input may carry comments
// and trailing commas.
var JSON Format = jsonFormat{}

func (jsonFormat) Name() string         { return "json" }
func (jsonFormat) ID() uint8            { return 2 }
func (jsonFormat) Extensions() []string { return []string{".json", ".jsonc"} }
func (jsonFormat) Binary() bool         { return false }

func (jsonFormat) MarshalEnvelope(envelope *graph.Envelope) ([]byte, error) {
	wire, err := newTextEnvelope(envelope)
	if err != nil {
		return nil, err
	}
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(wire); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func (jsonFormat) UnmarshalEnvelope(data []byte) (*graph.Envelope, error) {
	decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	decoder.UseNumber()
	decoder.DisallowUnknownFields()

	var wire textEnvelope
	if err := decoder.Decode(&wire); err != nil {
		return nil, err
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after envelope")
	}
	return wire.envelope()
}
