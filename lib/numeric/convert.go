// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package numeric

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// ErrNotNumber is returned when a conversion is asked of a value that
// is not numeric.
var ErrNotNumber = errors.New("not a number")

// ErrOutOfRange is returned when a number cannot be represented in the
// destination class without loss.
var ErrOutOfRange = errors.New("number out of range")

// integer splits a dynamic integer value into sign and magnitude so
// that the full int64 and uint64 ranges are representable.
type integer struct {
	negative  bool
	magnitude uint64
}

func asInteger(v any) (integer, error) {
	if number, ok := v.(json.Number); ok {
		if n, err := strconv.ParseInt(string(number), 10, 64); err == nil {
			return fromInt64(n), nil
		}
		if n, err := strconv.ParseUint(string(number), 10, 64); err == nil {
			return integer{magnitude: n}, nil
		}
		f, err := number.Float64()
		if err != nil {
			return integer{}, fmt.Errorf("%w: %s", ErrNotNumber, describe(v))
		}
		return fromFloat(f, v)
	}

	value := reflect.ValueOf(v)
	if !value.IsValid() {
		return integer{}, fmt.Errorf("%w: nil", ErrNotNumber)
	}
	switch value.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fromInt64(value.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return integer{magnitude: value.Uint()}, nil
	case reflect.Float32, reflect.Float64:
		return fromFloat(value.Float(), v)
	default:
		return integer{}, fmt.Errorf("%w: %s", ErrNotNumber, describe(v))
	}
}

func fromInt64(n int64) integer {
	if n < 0 {
		return integer{negative: true, magnitude: uint64(-(n + 1)) + 1}
	}
	return integer{magnitude: uint64(n)}
}

func fromFloat(f float64, original any) (integer, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return integer{}, fmt.Errorf("%w: %s is not an integer", ErrOutOfRange, describe(original))
	}
	if f >= 0 {
		if f >= math.Exp2(64) {
			return integer{}, fmt.Errorf("%w: %s", ErrOutOfRange, describe(original))
		}
		return integer{magnitude: uint64(f)}, nil
	}
	if f < -math.Exp2(63) {
		return integer{}, fmt.Errorf("%w: %s", ErrOutOfRange, describe(original))
	}
	return fromInt64(int64(f)), nil
}

// ToInt converts v to a signed integer that fits in bits.
func ToInt(v any, bits int) (int64, error) {
	n, err := asInteger(v)
	if err != nil {
		return 0, err
	}
	limit := uint64(1) << (bits - 1)
	if n.negative {
		if n.magnitude > limit {
			return 0, fmt.Errorf("%w: %s does not fit int%d", ErrOutOfRange, describe(v), bits)
		}
		return int64(-n.magnitude), nil
	}
	if n.magnitude >= limit {
		return 0, fmt.Errorf("%w: %s does not fit int%d", ErrOutOfRange, describe(v), bits)
	}
	return int64(n.magnitude), nil
}

// ToUint converts v to an unsigned integer that fits in bits.
func ToUint(v any, bits int) (uint64, error) {
	n, err := asInteger(v)
	if err != nil {
		return 0, err
	}
	if n.negative {
		return 0, fmt.Errorf("%w: %s is negative", ErrOutOfRange, describe(v))
	}
	if bits < 64 && n.magnitude >= uint64(1)<<bits {
		return 0, fmt.Errorf("%w: %s does not fit uint%d", ErrOutOfRange, describe(v), bits)
	}
	return n.magnitude, nil
}

// ToFloat converts v to a float of the given width. Integers that
// would lose precision in the destination mantissa are rejected, as are
// float64 values outside the float32 range.
func ToFloat(v any, bits int) (float64, error) {
	destination := Class{Bits: bits, Signed: true, Fractional: true}

	if number, ok := v.(json.Number); ok {
		f, err := number.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s", ErrNotNumber, describe(v))
		}
		return checkFloatRange(f, bits, v)
	}

	value := reflect.ValueOf(v)
	if !value.IsValid() {
		return 0, fmt.Errorf("%w: nil", ErrNotNumber)
	}
	switch value.Kind() {
	case reflect.Float32, reflect.Float64:
		return checkFloatRange(value.Float(), bits, v)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := value.Int()
		source, _ := ClassOf(value.Kind())
		f := float64(n)
		if destination.Contains(source) {
			return f, nil
		}
		return checkIntegerPrecision(f, f < math.Exp2(63) && int64(f) == n, bits, v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n := value.Uint()
		source, _ := ClassOf(value.Kind())
		f := float64(n)
		if destination.Contains(source) {
			return f, nil
		}
		return checkIntegerPrecision(f, f < math.Exp2(64) && uint64(f) == n, bits, v)
	default:
		return 0, fmt.Errorf("%w: %s", ErrNotNumber, describe(v))
	}
}

func checkIntegerPrecision(f float64, exact bool, bits int, original any) (float64, error) {
	if !exact {
		return 0, fmt.Errorf("%w: %s loses precision in float%d", ErrOutOfRange, describe(original), bits)
	}
	if bits == 32 && float64(float32(f)) != f {
		return 0, fmt.Errorf("%w: %s loses precision in float32", ErrOutOfRange, describe(original))
	}
	return f, nil
}

func checkFloatRange(f float64, bits int, original any) (float64, error) {
	if bits == 32 && !math.IsInf(f, 0) && !math.IsNaN(f) && math.Abs(f) > math.MaxFloat32 {
		return 0, fmt.Errorf("%w: %s does not fit float32", ErrOutOfRange, describe(original))
	}
	return f, nil
}
