// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package value

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
)

// RefID identifies a shared object within one encode or decode call.
// Ids are dense and start at 0.
type RefID uint64

// RefToken stands in an encoded tree where a shared handle was found.
// The object's payload lives in the referent table under ID.
type RefToken struct {
	ID RefID
}

func (t RefToken) String() string {
	return fmt.Sprintf("ref(%d)", t.ID)
}

// Handle is implemented by shared-ownership handle types. The encoder
// routes every value whose type implements Handle to the installed
// [EncodeHook] instead of encoding it field by field.
type Handle interface {
	// HandleIdentity returns a comparable value that is equal for two
	// handles iff they alias the same allocation. It returns nil for
	// the nil handle.
	HandleIdentity() any

	// HandlePayload returns the value the handle points at.
	HandlePayload() reflect.Value
}

// HandleSlot is implemented by pointers to shared-ownership handle
// types. It lets a decode hook allocate, bind and type check handles
// without knowing their static payload type.
type HandleSlot interface {
	// HandleType returns the static payload type of the handle.
	HandleType() reflect.Type

	// NewHandleCell allocates an empty shared cell. payload is the
	// settable value inside the cell; decoding into it fills every
	// handle bound to the cell.
	NewHandleCell() (cell any, payload reflect.Value)

	// BindHandle points the handle at cell. It fails with a
	// *TypeError when cell was allocated for a different payload type.
	BindHandle(cell any) error

	// ResetHandle sets the handle to nil.
	ResetHandle()
}

// EncodeHook intercepts shared handles during encoding.
type EncodeHook interface {
	EncodeHandle(handle Handle) (any, error)
}

// DecodeHook intercepts shared handle sites during decoding.
type DecodeHook interface {
	// DecodeHandle fills slot from the subtree found at a handle site.
	DecodeHandle(tree any, slot HandleSlot) error

	// DecodeDynamic resolves a RefToken met at an any-typed site, where
	// no static handle type is available.
	DecodeDynamic(token RefToken) (any, error)
}

var (
	// ErrTypeMismatch is matched by every error raised because a tree
	// does not fit its destination type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrUnsupportedType is returned for Go kinds that have no tree
	// form: channels, functions, complex numbers and unsafe pointers.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrDepthExceeded is returned when nesting exceeds MaxDepth.
	ErrDepthExceeded = errors.New("maximum nesting depth exceeded")
)

// DefaultMaxDepth bounds nesting when an Encoder or Decoder has no
// MaxDepth set.
const DefaultMaxDepth = 10000

// TypeError reports a tree that does not fit its destination.
type TypeError struct {
	// Type is the destination type.
	Type reflect.Type

	// Got describes what the tree held, e.g. "string" or "ref(3)".
	Got string

	// Err is the underlying cause, if any (a numeric range error or a
	// handle binding failure).
	Err error
}

func (e *TypeError) Error() string {
	message := fmt.Sprintf("type mismatch: cannot decode %s into %v", e.Got, e.Type)
	if e.Err != nil {
		message += ": " + e.Err.Error()
	}
	return message
}

// Is makes every TypeError match ErrTypeMismatch.
func (e *TypeError) Is(target error) bool {
	return target == ErrTypeMismatch
}

func (e *TypeError) Unwrap() error {
	return e.Err
}

// Describe names the shape of a tree node for error messages.
func Describe(tree any) string {
	switch node := tree.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case string:
		return "string"
	case []byte:
		return "bytes"
	case []any:
		return fmt.Sprintf("list of %d", len(node))
	case map[string]any:
		return fmt.Sprintf("map of %d", len(node))
	case RefToken:
		return node.String()
	default:
		return fmt.Sprintf("%T", tree)
	}
}

var (
	handleType          = reflect.TypeFor[Handle]()
	handleSlotType      = reflect.TypeFor[HandleSlot]()
	textMarshalerType   = reflect.TypeFor[encoding.TextMarshaler]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)
