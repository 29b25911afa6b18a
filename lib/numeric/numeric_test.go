// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package numeric

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestClassOf(t *testing.T) {
	tests := []struct {
		kind reflect.Kind
		want string
	}{
		{reflect.Int8, "int8"},
		{reflect.Int64, "int64"},
		{reflect.Uint16, "uint16"},
		{reflect.Float32, "float32"},
		{reflect.Float64, "float64"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			class, ok := ClassOf(tt.kind)
			if !ok {
				t.Fatalf("ClassOf(%v) reported non-numeric", tt.kind)
			}
			if class.String() != tt.want {
				t.Errorf("ClassOf(%v) = %s, want %s", tt.kind, class, tt.want)
			}
		})
	}

	if _, ok := ClassOf(reflect.String); ok {
		t.Error("ClassOf(String) should report non-numeric")
	}
}

func TestOfJSONNumber(t *testing.T) {
	tests := []struct {
		literal string
		want    string
	}{
		{"-3", "int64"},
		{"18446744073709551615", "uint64"},
		{"1.5", "float64"},
	}
	for _, tt := range tests {
		class, ok := Of(json.Number(tt.literal))
		if !ok {
			t.Fatalf("Of(%q) reported non-numeric", tt.literal)
		}
		if class.String() != tt.want {
			t.Errorf("Of(%q) = %s, want %s", tt.literal, class, tt.want)
		}
	}
}

func TestContains(t *testing.T) {
	int16Class, _ := ClassOf(reflect.Int16)
	int32Class, _ := ClassOf(reflect.Int32)
	uint32Class, _ := ClassOf(reflect.Uint32)
	int64Class, _ := ClassOf(reflect.Int64)
	float32Class, _ := ClassOf(reflect.Float32)
	float64Class, _ := ClassOf(reflect.Float64)

	tests := []struct {
		name         string
		outer, inner Class
		want         bool
	}{
		{"int64 holds int32", int64Class, int32Class, true},
		{"int32 does not hold uint32", int32Class, uint32Class, false},
		{"int64 holds uint32", int64Class, uint32Class, true},
		{"float32 holds int16", float32Class, int16Class, true},
		{"float32 does not hold int32", float32Class, int32Class, false},
		{"float64 holds int32", float64Class, int32Class, true},
		{"float64 does not hold int64", float64Class, int64Class, false},
		{"int64 does not hold float32", int64Class, float32Class, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.outer.Contains(tt.inner); got != tt.want {
				t.Errorf("%s.Contains(%s) = %v, want %v", tt.outer, tt.inner, got, tt.want)
			}
		})
	}
}

func TestToInt(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		bits    int
		want    int64
		wantErr error
	}{
		{"uint64 from cbor", uint64(42), 64, 42, nil},
		{"negative int64", int64(-7), 8, -7, nil},
		{"int8 lower bound", int64(-128), 8, -128, nil},
		{"int8 overflow", int64(128), 8, 0, ErrOutOfRange},
		{"int8 underflow", int64(-129), 8, 0, ErrOutOfRange},
		{"int64 minimum", int64(math.MinInt64), 64, math.MinInt64, nil},
		{"uint64 above int64", uint64(math.MaxUint64), 64, 0, ErrOutOfRange},
		{"integral float", float64(12), 32, 12, nil},
		{"fractional float", 1.5, 64, 0, ErrOutOfRange},
		{"json number", json.Number("-900"), 16, -900, nil},
		{"string", "12", 64, 0, ErrNotNumber},
		{"nil", nil, 64, 0, ErrNotNumber},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToInt(tt.value, tt.bits)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ToInt(%v, %d) error = %v, want %v", tt.value, tt.bits, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ToInt(%v, %d): %v", tt.value, tt.bits, err)
			}
			if got != tt.want {
				t.Errorf("ToInt(%v, %d) = %d, want %d", tt.value, tt.bits, got, tt.want)
			}
		})
	}
}

func TestToUint(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		bits    int
		want    uint64
		wantErr error
	}{
		{"max uint64", uint64(math.MaxUint64), 64, math.MaxUint64, nil},
		{"uint8 bound", 255, 8, 255, nil},
		{"uint8 overflow", 256, 8, 0, ErrOutOfRange},
		{"negative", int64(-1), 64, 0, ErrOutOfRange},
		{"json number", json.Number("18446744073709551615"), 64, math.MaxUint64, nil},
		{"bool", true, 8, 0, ErrNotNumber},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToUint(tt.value, tt.bits)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ToUint(%v, %d) error = %v, want %v", tt.value, tt.bits, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ToUint(%v, %d): %v", tt.value, tt.bits, err)
			}
			if got != tt.want {
				t.Errorf("ToUint(%v, %d) = %d, want %d", tt.value, tt.bits, got, tt.want)
			}
		})
	}
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		bits    int
		want    float64
		wantErr error
	}{
		{"float64", 2.25, 64, 2.25, nil},
		{"small int", int64(3), 32, 3, nil},
		{"exact large int", int64(1 << 40), 64, 1 << 40, nil},
		{"inexact int64", int64(1<<62 + 1), 64, 0, ErrOutOfRange},
		{"inexact in float32", int64(1<<24 + 1), 32, 0, ErrOutOfRange},
		{"float32 overflow", 1e300, 32, 0, ErrOutOfRange},
		{"max uint64", uint64(math.MaxUint64), 64, 0, ErrOutOfRange},
		{"json number", json.Number("0.5"), 64, 0.5, nil},
		{"string", "0.5", 64, 0, ErrNotNumber},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToFloat(tt.value, tt.bits)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ToFloat(%v, %d) error = %v, want %v", tt.value, tt.bits, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ToFloat(%v, %d): %v", tt.value, tt.bits, err)
			}
			if got != tt.want {
				t.Errorf("ToFloat(%v, %d) = %v, want %v", tt.value, tt.bits, got, tt.want)
			}
		})
	}
}
