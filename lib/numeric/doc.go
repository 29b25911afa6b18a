// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package numeric classifies Go numeric types by bit width, signedness
// and whether they carry a fractional part, and converts numbers
// between classes with range checking.
//
// Wire formats disagree about numbers. CBOR hands back uint64 for
// non-negative integers and int64 for negative ones, JSON (decoded with
// UseNumber) hands back [encoding/json.Number], and YAML hands back int,
// uint64 or float64 depending on the literal. The value decoder never
// inspects those representations directly: it asks this package to fit
// whatever arrived into the [Class] of the destination field.
//
//	class := numeric.ClassOf(reflect.Int16)
//	n, err := numeric.ToInt(wireValue, class.Bits)
//
// Conversions never round silently. A float with a fractional part is
// not an integer, a negative number is not unsigned, and a value outside
// the destination width fails with [ErrOutOfRange].
package numeric
