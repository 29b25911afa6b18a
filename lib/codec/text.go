// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/bureau-foundation/sharegraph/lib/graph"
	"github.com/bureau-foundation/sharegraph/lib/value"
)

// Reserved keys of the text formats. A map holding exactly one of them
// is a marker, not user data. User keys that begin with '$' are
// escaped by doubling the '$'.
const (
	refKey   = "$ref"
	bytesKey = "$bytes"
)

// toText copies an encoded tree into the text formats' conventions:
// tokens become {"$ref": id}, byte strings become {"$bytes": base64},
// and user keys starting with '$' are escaped.
func toText(tree any) (any, error) {
	switch node := tree.(type) {
	case value.RefToken:
		return map[string]any{refKey: uint64(node.ID)}, nil
	case []byte:
		return map[string]any{bytesKey: base64.StdEncoding.EncodeToString(node)}, nil
	case []any:
		list := make([]any, len(node))
		for i, element := range node {
			converted, err := toText(element)
			if err != nil {
				return nil, err
			}
			list[i] = converted
		}
		return list, nil
	case map[string]any:
		entries := make(map[string]any, len(node))
		for key, element := range node {
			converted, err := toText(element)
			if err != nil {
				return nil, err
			}
			if strings.HasPrefix(key, "$") {
				key = "$" + key
			}
			entries[key] = converted
		}
		return entries, nil
	case float64:
		if math.IsNaN(node) || math.IsInf(node, 0) {
			return nil, fmt.Errorf("%w: non-finite float %v has no text encoding", value.ErrUnsupportedType, node)
		}
		return node, nil
	case nil, bool, int64, uint64, string:
		return node, nil
	default:
		return nil, fmt.Errorf("%w: %T in encoded tree", value.ErrUnsupportedType, tree)
	}
}

// fromText converts a parsed JSON or YAML document back into an
// encoded tree, undoing toText and normalizing numbers: integers that
// fit become int64, larger positive integers uint64, everything else
// float64.
func fromText(node any) (any, error) {
	switch node := node.(type) {
	case map[string]any:
		if marker, ok := textMarker(node); ok {
			return marker()
		}
		entries := make(map[string]any, len(node))
		for key, element := range node {
			converted, err := fromText(element)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", key, err)
			}
			if strings.HasPrefix(key, "$") {
				if !strings.HasPrefix(key, "$$") {
					return nil, fmt.Errorf("reserved key %q outside a marker", key)
				}
				key = key[1:]
			}
			entries[key] = converted
		}
		return entries, nil
	case map[any]any:
		return nil, errors.New("mapping with non-string keys")
	case []any:
		list := make([]any, len(node))
		for i, element := range node {
			converted, err := fromText(element)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			list[i] = converted
		}
		return list, nil
	case json.Number:
		return parseNumber(string(node))
	case int:
		return int64(node), nil
	case uint64:
		if node <= math.MaxInt64 {
			return int64(node), nil
		}
		return node, nil
	case nil, bool, int64, float64, string:
		return node, nil
	default:
		return nil, fmt.Errorf("unsupported document value %T", node)
	}
}

// textMarker recognizes the single-key marker maps.
func textMarker(node map[string]any) (func() (any, error), bool) {
	if len(node) != 1 {
		return nil, false
	}
	if raw, ok := node[refKey]; ok {
		return func() (any, error) {
			id, err := markerID(raw)
			if err != nil {
				return nil, err
			}
			return value.RefToken{ID: id}, nil
		}, true
	}
	if raw, ok := node[bytesKey]; ok {
		return func() (any, error) {
			text, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("%s holds %T, want base64 string", bytesKey, raw)
			}
			data, err := base64.StdEncoding.DecodeString(text)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", bytesKey, err)
			}
			return data, nil
		}, true
	}
	return nil, false
}

func markerID(raw any) (value.RefID, error) {
	number, err := fromText(raw)
	if err != nil {
		return 0, err
	}
	switch id := number.(type) {
	case int64:
		if id >= 0 {
			return value.RefID(id), nil
		}
	case uint64:
		return value.RefID(id), nil
	}
	return 0, fmt.Errorf("%s holds %v, want a non-negative integer", refKey, raw)
}

func parseNumber(text string) (any, error) {
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return n, nil
	}
	if n, err := strconv.ParseUint(text, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, fmt.Errorf("number %q: %w", text, err)
	}
	return f, nil
}

// textEnvelope is the JSON and YAML shape of an envelope.
type textEnvelope struct {
	Root      any   `json:"root" yaml:"root"`
	Referents []any `json:"referents" yaml:"referents"`
}

func newTextEnvelope(envelope *graph.Envelope) (*textEnvelope, error) {
	wire := &textEnvelope{Referents: make([]any, len(envelope.Referents))}
	var err error
	if wire.Root, err = toText(envelope.Root); err != nil {
		return nil, fmt.Errorf("root: %w", err)
	}
	for i, referent := range envelope.Referents {
		if wire.Referents[i], err = toText(referent); err != nil {
			return nil, fmt.Errorf("referent %d: %w", i, err)
		}
	}
	return wire, nil
}

func (w *textEnvelope) envelope() (*graph.Envelope, error) {
	envelope := &graph.Envelope{}
	var err error
	if envelope.Root, err = fromText(w.Root); err != nil {
		return nil, fmt.Errorf("root: %w", err)
	}
	if len(w.Referents) > 0 {
		envelope.Referents = make([]any, len(w.Referents))
	}
	for i, referent := range w.Referents {
		if envelope.Referents[i], err = fromText(referent); err != nil {
			return nil, fmt.Errorf("referent %d: %w", i, err)
		}
	}
	return envelope, nil
}
