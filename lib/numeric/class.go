// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package numeric

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
)

// Class describes the shape of a numeric type.
type Class struct {
	// Bits is the storage width: 8, 16, 32 or 64.
	Bits int

	// Signed is true for signed integers and for floats.
	Signed bool

	// Fractional is true for floating point types.
	Fractional bool
}

// String returns the Go spelling of the class, e.g. "int16" or
// "float32".
func (c Class) String() string {
	switch {
	case c.Fractional:
		return "float" + strconv.Itoa(c.Bits)
	case c.Signed:
		return "int" + strconv.Itoa(c.Bits)
	default:
		return "uint" + strconv.Itoa(c.Bits)
	}
}

// Contains reports whether every value of other is representable in c
// without loss. Integers up to 24 bits fit in float32 and up to 53 bits
// in float64.
func (c Class) Contains(other Class) bool {
	if c.Fractional {
		if other.Fractional {
			return other.Bits <= c.Bits
		}
		mantissa := 24
		if c.Bits == 64 {
			mantissa = 53
		}
		width := other.Bits
		if other.Signed {
			width--
		}
		return width <= mantissa
	}
	if other.Fractional {
		return false
	}
	if c.Signed == other.Signed {
		return other.Bits <= c.Bits
	}
	if c.Signed {
		return other.Bits < c.Bits
	}
	return false
}

var kindClasses = map[reflect.Kind]Class{
	reflect.Int:     {Bits: strconv.IntSize, Signed: true},
	reflect.Int8:    {Bits: 8, Signed: true},
	reflect.Int16:   {Bits: 16, Signed: true},
	reflect.Int32:   {Bits: 32, Signed: true},
	reflect.Int64:   {Bits: 64, Signed: true},
	reflect.Uint:    {Bits: strconv.IntSize},
	reflect.Uint8:   {Bits: 8},
	reflect.Uint16:  {Bits: 16},
	reflect.Uint32:  {Bits: 32},
	reflect.Uint64:  {Bits: 64},
	reflect.Uintptr: {Bits: strconv.IntSize},
	reflect.Float32: {Bits: 32, Signed: true, Fractional: true},
	reflect.Float64: {Bits: 64, Signed: true, Fractional: true},
}

// ClassOf returns the class for a reflect kind. The boolean is false
// for non-numeric kinds.
func ClassOf(kind reflect.Kind) (Class, bool) {
	class, ok := kindClasses[kind]
	return class, ok
}

// Of returns the class of a dynamic numeric value. A json.Number is
// classified by its literal: int64 if it parses as one, uint64 if it
// only fits unsigned, float64 otherwise.
func Of(v any) (Class, bool) {
	if number, ok := v.(json.Number); ok {
		if _, err := strconv.ParseInt(string(number), 10, 64); err == nil {
			return Class{Bits: 64, Signed: true}, true
		}
		if _, err := strconv.ParseUint(string(number), 10, 64); err == nil {
			return Class{Bits: 64}, true
		}
		return Class{Bits: 64, Signed: true, Fractional: true}, true
	}
	if v == nil {
		return Class{}, false
	}
	return ClassOf(reflect.TypeOf(v).Kind())
}

// IsNumber reports whether v is a Go number or a json.Number.
func IsNumber(v any) bool {
	_, ok := Of(v)
	return ok
}

// describe names a dynamic value for error messages.
func describe(v any) string {
	if number, ok := v.(json.Number); ok {
		return "json.Number " + string(number)
	}
	return fmt.Sprintf("%T %v", v, v)
}
