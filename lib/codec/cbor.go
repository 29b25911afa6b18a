// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"fmt"
	"math"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/bureau-foundation/sharegraph/lib/graph"
	"github.com/bureau-foundation/sharegraph/lib/value"
)

// TagSharedRef is the CBOR tag number wrapping a reference id (IANA
// "sharedref", tag 29). The tag content is the id as an unsigned
// integer indexing the referent table.
const TagSharedRef = 29

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding (RFC 8949 §4.2): sorted map keys, smallest integer
// encoding, no indefinite-length items. Same logical data always
// produces identical bytes.
var encMode cbor.EncMode

// decMode is the CBOR decoder. Envelopes decode into generic trees, so
// every map must have string keys.
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// Generic trees use map[string]any. The CBOR default for
		// any-typed targets is map[interface{}]interface{}, which the
		// value decoder does not accept.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		DupMapKey:      cbor.DupMapKeyEnforcedAPF,
		// Nesting follows the value depth limit rather than the
		// library default of 32.
		MaxNestedLevels:  2 * value.DefaultMaxDepth,
		MaxArrayElements: 1 << 24,
		MaxMapPairs:      1 << 24,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// cborEnvelope is the CBOR shape of an envelope.
type cborEnvelope struct {
	Root      any   `cbor:"root"`
	Referents []any `cbor:"referents"`
}

type cborFormat struct{}

// CBOR encodes envelopes as deterministic CBOR with reference tokens
// as tag 29.
var CBOR Format = cborFormat{}

func (cborFormat) Name() string         { return "cbor" }
func (cborFormat) ID() uint8            { return 1 }
func (cborFormat) Extensions() []string { return []string{".cbor", ".cbr"} }
func (cborFormat) Binary() bool         { return true }

func (cborFormat) MarshalEnvelope(envelope *graph.Envelope) ([]byte, error) {
	wire := cborEnvelope{Referents: make([]any, len(envelope.Referents))}
	var err error
	if wire.Root, err = toCBOR(envelope.Root); err != nil {
		return nil, fmt.Errorf("root: %w", err)
	}
	for i, referent := range envelope.Referents {
		if wire.Referents[i], err = toCBOR(referent); err != nil {
			return nil, fmt.Errorf("referent %d: %w", i, err)
		}
	}
	return encMode.Marshal(wire)
}

func (cborFormat) UnmarshalEnvelope(data []byte) (*graph.Envelope, error) {
	var wire cborEnvelope
	if err := decMode.Unmarshal(data, &wire); err != nil {
		return nil, err
	}
	envelope := &graph.Envelope{}
	var err error
	if envelope.Root, err = fromCBOR(wire.Root); err != nil {
		return nil, fmt.Errorf("root: %w", err)
	}
	if len(wire.Referents) > 0 {
		envelope.Referents = make([]any, len(wire.Referents))
	}
	for i, referent := range wire.Referents {
		if envelope.Referents[i], err = fromCBOR(referent); err != nil {
			return nil, fmt.Errorf("referent %d: %w", i, err)
		}
	}
	return envelope, nil
}

// toCBOR copies an encoded tree, replacing RefTokens with tag 29.
func toCBOR(tree any) (any, error) {
	switch node := tree.(type) {
	case value.RefToken:
		return cbor.Tag{Number: TagSharedRef, Content: uint64(node.ID)}, nil
	case []any:
		list := make([]any, len(node))
		for i, element := range node {
			converted, err := toCBOR(element)
			if err != nil {
				return nil, err
			}
			list[i] = converted
		}
		return list, nil
	case map[string]any:
		entries := make(map[string]any, len(node))
		for key, element := range node {
			converted, err := toCBOR(element)
			if err != nil {
				return nil, err
			}
			entries[key] = converted
		}
		return entries, nil
	case nil, bool, int64, uint64, float64, string, []byte:
		return node, nil
	default:
		return nil, fmt.Errorf("%w: %T in encoded tree", value.ErrUnsupportedType, tree)
	}
}

// fromCBOR converts a decoded CBOR item into an encoded tree: tag 29
// becomes a RefToken and unsigned integers that fit become int64.
func fromCBOR(item any) (any, error) {
	switch node := item.(type) {
	case cbor.Tag:
		if node.Number != TagSharedRef {
			return nil, fmt.Errorf("unsupported CBOR tag %d", node.Number)
		}
		id, ok := node.Content.(uint64)
		if !ok {
			return nil, fmt.Errorf("tag %d content is %T, want unsigned integer", TagSharedRef, node.Content)
		}
		return value.RefToken{ID: value.RefID(id)}, nil
	case uint64:
		if node <= math.MaxInt64 {
			return int64(node), nil
		}
		return node, nil
	case []any:
		list := make([]any, len(node))
		for i, element := range node {
			converted, err := fromCBOR(element)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			list[i] = converted
		}
		return list, nil
	case map[string]any:
		entries := make(map[string]any, len(node))
		for key, element := range node {
			converted, err := fromCBOR(element)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", key, err)
			}
			entries[key] = converted
		}
		return entries, nil
	case nil, bool, int64, float64, string, []byte:
		return node, nil
	default:
		return nil, fmt.Errorf("unsupported CBOR item %T", item)
	}
}

// Diagnose returns the CBOR diagnostic notation (RFC 8949 §8) for the
// entire contents of data.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}

// DiagnoseFirst returns the CBOR diagnostic notation for the first
// data item in data, along with the remaining unconsumed bytes.
func DiagnoseFirst(data []byte) (string, []byte, error) {
	return cbor.DiagnoseFirst(data)
}
