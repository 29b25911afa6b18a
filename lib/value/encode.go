// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package value

import (
	"encoding"
	"fmt"
	"reflect"
	"slices"
	"strconv"
)

// Encoder converts Go values to encoded trees. An Encoder carries
// per-call state (the current depth) and must not be shared between
// concurrent calls. The zero value is ready to use.
type Encoder struct {
	// Hook receives every shared handle. When nil, handles are
	// inlined at every occurrence.
	Hook EncodeHook

	// MaxDepth bounds nesting. Zero means DefaultMaxDepth.
	MaxDepth int

	depth int
}

// Encode converts v to an encoded tree.
func (e *Encoder) Encode(v any) (any, error) {
	return e.EncodeValue(reflect.ValueOf(v))
}

// EncodeValue converts v to an encoded tree. It is re-entrant: a hook
// may call it while an outer EncodeValue is still running, and the
// nesting depth accumulates across both.
func (e *Encoder) EncodeValue(v reflect.Value) (any, error) {
	if !v.IsValid() {
		return nil, nil
	}

	limit := e.MaxDepth
	if limit <= 0 {
		limit = DefaultMaxDepth
	}
	if e.depth >= limit {
		return nil, fmt.Errorf("%w: more than %d levels", ErrDepthExceeded, limit)
	}
	e.depth++
	defer func() { e.depth-- }()

	return e.encode(v)
}

func (e *Encoder) encode(v reflect.Value) (any, error) {
	valueType := v.Type()

	if v.Kind() != reflect.Pointer && v.Kind() != reflect.Interface && valueType.Implements(handleType) {
		handle := v.Interface().(Handle)
		if e.Hook != nil {
			return e.Hook.EncodeHandle(handle)
		}
		if handle.HandleIdentity() == nil {
			return nil, nil
		}
		return e.EncodeValue(handle.HandlePayload())
	}

	if marshaler, ok := textMarshaler(v); ok {
		text, err := marshaler.MarshalText()
		if err != nil {
			return nil, fmt.Errorf("marshaling %v as text: %w", valueType, err)
		}
		return string(text), nil
	}

	switch v.Kind() {
	case reflect.Bool:
		return v.Bool(), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint(), nil

	case reflect.Float32, reflect.Float64:
		return v.Float(), nil

	case reflect.String:
		return v.String(), nil

	case reflect.Slice:
		if v.IsNil() {
			return nil, nil
		}
		if valueType.Elem().Kind() == reflect.Uint8 {
			return slices.Clone(v.Bytes()), nil
		}
		return e.encodeList(v)

	case reflect.Array:
		if valueType.Elem().Kind() == reflect.Uint8 {
			data := make([]byte, v.Len())
			reflect.Copy(reflect.ValueOf(data), v)
			return data, nil
		}
		return e.encodeList(v)

	case reflect.Map:
		if v.IsNil() {
			return nil, nil
		}
		return e.encodeMap(v)

	case reflect.Struct:
		return e.encodeStruct(v)

	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil, nil
		}
		return e.EncodeValue(v.Elem())

	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedType, valueType)
	}
}

func (e *Encoder) encodeList(v reflect.Value) (any, error) {
	list := make([]any, v.Len())
	for i := range list {
		element, err := e.EncodeValue(v.Index(i))
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		list[i] = element
	}
	return list, nil
}

// encodeMap visits keys in sorted order so that handles reached through
// map values are met in the same order on every call.
func (e *Encoder) encodeMap(v reflect.Value) (any, error) {
	keys := make([]string, 0, v.Len())
	values := make(map[string]reflect.Value, v.Len())
	iterator := v.MapRange()
	for iterator.Next() {
		key, err := mapKeyString(iterator.Key())
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
		values[key] = iterator.Value()
	}
	slices.Sort(keys)

	result := make(map[string]any, len(keys))
	for _, key := range keys {
		element, err := e.EncodeValue(values[key])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		result[key] = element
	}
	return result, nil
}

func (e *Encoder) encodeStruct(v reflect.Value) (any, error) {
	fields := structFields(v.Type())
	result := make(map[string]any, len(fields))
	for _, field := range fields {
		fieldValue := v.Field(field.index)
		if field.omitEmpty && fieldValue.IsZero() {
			continue
		}
		element, err := e.EncodeValue(fieldValue)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.name, err)
		}
		result[field.name] = element
	}
	return result, nil
}

func mapKeyString(key reflect.Value) (string, error) {
	switch key.Kind() {
	case reflect.String:
		return key.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(key.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(key.Uint(), 10), nil
	default:
		return "", fmt.Errorf("%w: map key type %v", ErrUnsupportedType, key.Type())
	}
}

// textMarshaler returns v as an encoding.TextMarshaler when its type,
// or its address, implements one. Nil pointers never do.
func textMarshaler(v reflect.Value) (encoding.TextMarshaler, bool) {
	if v.Kind() == reflect.Pointer && v.IsNil() {
		return nil, false
	}
	if v.Kind() == reflect.Interface {
		return nil, false
	}
	if v.Type().Implements(textMarshalerType) {
		return v.Interface().(encoding.TextMarshaler), true
	}
	if v.CanAddr() && reflect.PointerTo(v.Type()).Implements(textMarshalerType) {
		return v.Addr().Interface().(encoding.TextMarshaler), true
	}
	return nil, false
}
