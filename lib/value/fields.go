// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package value

import (
	"reflect"
	"strings"
	"sync"
)

// field describes one encodable struct field.
type field struct {
	name      string
	index     int
	omitEmpty bool
}

// fieldCache maps reflect.Type to []field. Entries are immutable once
// stored, so concurrent encode and decode calls share them freely.
var fieldCache sync.Map

// structFields returns the encodable fields of a struct type in
// declaration order. Unexported fields and fields tagged "-" are
// skipped. The name comes from the `graph` tag, then the `json` tag,
// then the Go field name. Embedded structs are not flattened.
func structFields(structType reflect.Type) []field {
	if cached, ok := fieldCache.Load(structType); ok {
		return cached.([]field)
	}

	var fields []field
	for i := range structType.NumField() {
		structField := structType.Field(i)
		if !structField.IsExported() {
			continue
		}

		tag, ok := structField.Tag.Lookup("graph")
		if !ok {
			tag = structField.Tag.Get("json")
		}
		if tag == "-" {
			continue
		}

		name, options, _ := strings.Cut(tag, ",")
		if name == "" {
			name = structField.Name
		}
		fields = append(fields, field{
			name:      name,
			index:     i,
			omitEmpty: hasOption(options, "omitempty"),
		})
	}

	actual, _ := fieldCache.LoadOrStore(structType, fields)
	return actual.([]field)
}

func hasOption(options, want string) bool {
	for options != "" {
		var option string
		option, options, _ = strings.Cut(options, ",")
		if option == want {
			return true
		}
	}
	return false
}
