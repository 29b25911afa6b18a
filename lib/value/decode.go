// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package value

import (
	"encoding"
	"encoding/base64"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"

	"github.com/bureau-foundation/sharegraph/lib/numeric"
)

// Decoder fills Go values from encoded trees. Like Encoder it carries
// per-call depth state and must not be shared between concurrent
// calls. The zero value is ready to use.
type Decoder struct {
	// Hook receives every handle site. When nil, handle payloads are
	// decoded inline into fresh cells and RefTokens are rejected.
	Hook DecodeHook

	// MaxDepth bounds nesting. Zero means DefaultMaxDepth.
	MaxDepth int

	depth int
}

// Decode fills the value target points at from tree. target must be a
// non-nil pointer.
func (d *Decoder) Decode(tree any, target any) error {
	pointer := reflect.ValueOf(target)
	if pointer.Kind() != reflect.Pointer || pointer.IsNil() {
		return fmt.Errorf("decode target must be a non-nil pointer, got %T", target)
	}
	return d.DecodeValue(tree, pointer.Elem())
}

// DecodeValue fills the settable value target from tree. It is
// re-entrant in the same way as Encoder.EncodeValue.
func (d *Decoder) DecodeValue(tree any, target reflect.Value) error {
	if err := d.enter(); err != nil {
		return err
	}
	defer d.leave()
	return d.decode(tree, target)
}

func (d *Decoder) enter() error {
	limit := d.MaxDepth
	if limit <= 0 {
		limit = DefaultMaxDepth
	}
	if d.depth >= limit {
		return fmt.Errorf("%w: more than %d levels", ErrDepthExceeded, limit)
	}
	d.depth++
	return nil
}

func (d *Decoder) leave() {
	d.depth--
}

func (d *Decoder) decode(tree any, target reflect.Value) error {
	targetType := target.Type()

	if target.Kind() != reflect.Pointer && target.CanAddr() && reflect.PointerTo(targetType).Implements(handleSlotType) {
		return d.decodeHandle(tree, target.Addr().Interface().(HandleSlot))
	}

	if tree == nil {
		target.SetZero()
		return nil
	}

	if token, ok := tree.(RefToken); ok && target.Kind() != reflect.Interface && !pointsToHandle(targetType) {
		return &TypeError{Type: targetType, Got: token.String()}
	}

	if target.Kind() != reflect.Pointer && target.CanAddr() && reflect.PointerTo(targetType).Implements(textUnmarshalerType) {
		text, ok := tree.(string)
		if !ok {
			return &TypeError{Type: targetType, Got: Describe(tree)}
		}
		unmarshaler := target.Addr().Interface().(encoding.TextUnmarshaler)
		if err := unmarshaler.UnmarshalText([]byte(text)); err != nil {
			return &TypeError{Type: targetType, Got: "string", Err: err}
		}
		return nil
	}

	switch target.Kind() {
	case reflect.Bool:
		b, ok := tree.(bool)
		if !ok {
			return &TypeError{Type: targetType, Got: Describe(tree)}
		}
		target.SetBool(b)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		class, _ := numeric.ClassOf(target.Kind())
		n, err := numeric.ToInt(tree, class.Bits)
		if err != nil {
			return &TypeError{Type: targetType, Got: Describe(tree), Err: err}
		}
		target.SetInt(n)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		class, _ := numeric.ClassOf(target.Kind())
		n, err := numeric.ToUint(tree, class.Bits)
		if err != nil {
			return &TypeError{Type: targetType, Got: Describe(tree), Err: err}
		}
		target.SetUint(n)
		return nil

	case reflect.Float32, reflect.Float64:
		class, _ := numeric.ClassOf(target.Kind())
		f, err := numeric.ToFloat(tree, class.Bits)
		if err != nil {
			return &TypeError{Type: targetType, Got: Describe(tree), Err: err}
		}
		target.SetFloat(f)
		return nil

	case reflect.String:
		s, ok := tree.(string)
		if !ok {
			return &TypeError{Type: targetType, Got: Describe(tree)}
		}
		target.SetString(s)
		return nil

	case reflect.Slice:
		if targetType.Elem().Kind() == reflect.Uint8 {
			data, err := treeBytes(tree, targetType)
			if err != nil {
				return err
			}
			target.SetBytes(data)
			return nil
		}
		list, ok := tree.([]any)
		if !ok {
			return &TypeError{Type: targetType, Got: Describe(tree)}
		}
		slice := reflect.MakeSlice(targetType, len(list), len(list))
		if err := d.decodeList(list, slice); err != nil {
			return err
		}
		target.Set(slice)
		return nil

	case reflect.Array:
		if targetType.Elem().Kind() == reflect.Uint8 {
			data, err := treeBytes(tree, targetType)
			if err != nil {
				return err
			}
			if len(data) != target.Len() {
				return &TypeError{Type: targetType, Got: fmt.Sprintf("%d bytes", len(data))}
			}
			reflect.Copy(target, reflect.ValueOf(data))
			return nil
		}
		list, ok := tree.([]any)
		if !ok || len(list) != target.Len() {
			return &TypeError{Type: targetType, Got: Describe(tree)}
		}
		return d.decodeList(list, target)

	case reflect.Map:
		entries, ok := tree.(map[string]any)
		if !ok {
			return &TypeError{Type: targetType, Got: Describe(tree)}
		}
		return d.decodeMap(entries, target)

	case reflect.Struct:
		entries, ok := tree.(map[string]any)
		if !ok {
			return &TypeError{Type: targetType, Got: Describe(tree)}
		}
		return d.decodeStruct(entries, target)

	case reflect.Pointer:
		if target.IsNil() {
			target.Set(reflect.New(targetType.Elem()))
		}
		return d.DecodeValue(tree, target.Elem())

	case reflect.Interface:
		if target.NumMethod() != 0 {
			return fmt.Errorf("%w: cannot decode into non-empty interface %v", ErrUnsupportedType, targetType)
		}
		generic, err := d.generic(tree)
		if err != nil {
			return err
		}
		if generic == nil {
			target.SetZero()
			return nil
		}
		target.Set(reflect.ValueOf(generic))
		return nil

	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedType, targetType)
	}
}

// pointsToHandle reports whether t is a chain of pointers ending at a
// handle type. The pointer case allocates down to the handle, where the
// token is resolved.
func pointsToHandle(t reflect.Type) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
		if reflect.PointerTo(t).Implements(handleSlotType) {
			return true
		}
	}
	return false
}

// decodeHandle routes a handle site to the hook, or inlines it when no
// hook is installed.
func (d *Decoder) decodeHandle(tree any, slot HandleSlot) error {
	if d.Hook != nil {
		return d.Hook.DecodeHandle(tree, slot)
	}
	if tree == nil {
		slot.ResetHandle()
		return nil
	}
	if token, ok := tree.(RefToken); ok {
		return &TypeError{
			Type: slot.HandleType(),
			Got:  token.String(),
			Err:  errors.New("reference token outside a graph decode"),
		}
	}
	cell, payload := slot.NewHandleCell()
	if err := slot.BindHandle(cell); err != nil {
		return err
	}
	return d.DecodeValue(tree, payload)
}

func (d *Decoder) decodeList(list []any, target reflect.Value) error {
	for i, element := range list {
		if err := d.DecodeValue(element, target.Index(i)); err != nil {
			return fmt.Errorf("index %d: %w", i, err)
		}
	}
	return nil
}

// decodeMap visits keys in sorted order, matching the encoder, so that
// referents reached through map values materialize in a stable order.
func (d *Decoder) decodeMap(entries map[string]any, target reflect.Value) error {
	targetType := target.Type()
	result := reflect.MakeMapWithSize(targetType, len(entries))

	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for _, key := range keys {
		keyValue, err := parseMapKey(key, targetType.Key())
		if err != nil {
			return err
		}
		element := reflect.New(targetType.Elem()).Elem()
		if err := d.DecodeValue(entries[key], element); err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		result.SetMapIndex(keyValue, element)
	}
	target.Set(result)
	return nil
}

func (d *Decoder) decodeStruct(entries map[string]any, target reflect.Value) error {
	for _, field := range structFields(target.Type()) {
		element, ok := entries[field.name]
		if !ok {
			continue
		}
		if err := d.DecodeValue(element, target.Field(field.index)); err != nil {
			return fmt.Errorf("field %s: %w", field.name, err)
		}
	}
	return nil
}

// generic copies a tree for an any-typed destination. Containers are
// copied so the result never aliases the input tree, and RefTokens are
// resolved through the hook.
func (d *Decoder) generic(tree any) (any, error) {
	switch node := tree.(type) {
	case RefToken:
		if d.Hook == nil {
			return nil, &TypeError{
				Type: reflect.TypeFor[any](),
				Got:  node.String(),
				Err:  errors.New("reference token outside a graph decode"),
			}
		}
		return d.Hook.DecodeDynamic(node)

	case []any:
		if err := d.enter(); err != nil {
			return nil, err
		}
		defer d.leave()
		list := make([]any, len(node))
		for i, element := range node {
			copied, err := d.generic(element)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			list[i] = copied
		}
		return list, nil

	case map[string]any:
		if err := d.enter(); err != nil {
			return nil, err
		}
		defer d.leave()
		keys := make([]string, 0, len(node))
		for key := range node {
			keys = append(keys, key)
		}
		slices.Sort(keys)
		entries := make(map[string]any, len(node))
		for _, key := range keys {
			copied, err := d.generic(node[key])
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", key, err)
			}
			entries[key] = copied
		}
		return entries, nil

	case []byte:
		return slices.Clone(node), nil

	default:
		return tree, nil
	}
}

func parseMapKey(key string, keyType reflect.Type) (reflect.Value, error) {
	switch keyType.Kind() {
	case reflect.String:
		return reflect.ValueOf(key).Convert(keyType), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		class, _ := numeric.ClassOf(keyType.Kind())
		n, err := strconv.ParseInt(key, 10, class.Bits)
		if err != nil {
			return reflect.Value{}, &TypeError{Type: keyType, Got: strconv.Quote(key), Err: err}
		}
		return reflect.ValueOf(n).Convert(keyType), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		class, _ := numeric.ClassOf(keyType.Kind())
		n, err := strconv.ParseUint(key, 10, class.Bits)
		if err != nil {
			return reflect.Value{}, &TypeError{Type: keyType, Got: strconv.Quote(key), Err: err}
		}
		return reflect.ValueOf(n).Convert(keyType), nil
	default:
		return reflect.Value{}, fmt.Errorf("%w: map key type %v", ErrUnsupportedType, keyType)
	}
}

// treeBytes accepts a byte string, or base64 text from formats that
// have no byte string type.
func treeBytes(tree any, targetType reflect.Type) ([]byte, error) {
	switch node := tree.(type) {
	case []byte:
		return slices.Clone(node), nil
	case string:
		data, err := base64.StdEncoding.DecodeString(node)
		if err != nil {
			return nil, &TypeError{Type: targetType, Got: "string", Err: err}
		}
		return data, nil
	default:
		return nil, &TypeError{Type: targetType, Got: Describe(tree)}
	}
}
