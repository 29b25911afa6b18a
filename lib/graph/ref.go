// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"fmt"
	"reflect"

	"github.com/bureau-foundation/sharegraph/lib/value"
)

// Ref is a shared-ownership handle to a value of type T. Copying a Ref
// makes another owner of the same cell. The zero Ref is the nil handle.
type Ref[T any] struct {
	cell *cell[T]
}

// cell is the shared indirection every alias of a Ref points at. The
// decoder fills a cell in place, so aliases handed out before the fill
// observe the finished value.
type cell[T any] struct {
	value T
}

func (c *cell[T]) payloadType() reflect.Type {
	return reflect.TypeFor[T]()
}

// handle returns a Ref bound to c.
func (c *cell[T]) handle() any {
	return Ref[T]{cell: c}
}

// typedCell is implemented by every *cell[T].
type typedCell interface {
	payloadType() reflect.Type
	handle() any
}

// New allocates a new shared cell holding v.
func New[T any](v T) Ref[T] {
	return Ref[T]{cell: &cell[T]{value: v}}
}

// Get returns a pointer to the shared value, or nil for the nil handle.
// Writes through the pointer are visible through every alias.
func (r Ref[T]) Get() *T {
	if r.cell == nil {
		return nil
	}
	return &r.cell.value
}

// Set replaces the shared value for every alias. It panics on the nil
// handle.
func (r Ref[T]) Set(v T) {
	if r.cell == nil {
		panic("graph: Set on nil Ref")
	}
	r.cell.value = v
}

// IsNil reports whether r is the nil handle.
func (r Ref[T]) IsNil() bool {
	return r.cell == nil
}

// Same reports whether r and other alias the same allocation. Payload
// equality is irrelevant.
func (r Ref[T]) Same(other Ref[T]) bool {
	return r.cell == other.cell
}

func (r Ref[T]) String() string {
	if r.cell == nil {
		return "Ref(nil)"
	}
	return fmt.Sprintf("Ref(%p)", r.cell)
}

// HandleIdentity implements value.Handle.
func (r Ref[T]) HandleIdentity() any {
	if r.cell == nil {
		return nil
	}
	return r.cell
}

// HandlePayload implements value.Handle.
func (r Ref[T]) HandlePayload() reflect.Value {
	return reflect.ValueOf(&r.cell.value).Elem()
}

// HandleType implements value.HandleSlot.
func (r *Ref[T]) HandleType() reflect.Type {
	return reflect.TypeFor[T]()
}

// NewHandleCell implements value.HandleSlot.
func (r *Ref[T]) NewHandleCell() (any, reflect.Value) {
	c := &cell[T]{}
	return c, reflect.ValueOf(&c.value).Elem()
}

// BindHandle implements value.HandleSlot. A cell allocated for another
// payload type is a type mismatch.
func (r *Ref[T]) BindHandle(c any) error {
	typed, ok := c.(*cell[T])
	if !ok {
		got := fmt.Sprintf("%T", c)
		if other, ok := c.(typedCell); ok {
			got = fmt.Sprintf("shared %v", other.payloadType())
		}
		return &value.TypeError{Type: reflect.TypeFor[Ref[T]](), Got: got}
	}
	r.cell = typed
	return nil
}

// ResetHandle implements value.HandleSlot.
func (r *Ref[T]) ResetHandle() {
	r.cell = nil
}
