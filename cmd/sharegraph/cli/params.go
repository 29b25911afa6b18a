// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// FlagBinder is implemented by params types that register their own
// flags. [BindFlags] hands such a field the flag set instead of reading
// its tags; [CommonParams] uses this for --config and --verbose.
type FlagBinder interface {
	AddFlags(flagSet *pflag.FlagSet)
}

// FlagsFromParams returns a flag set, in declaration order, bound to
// the tagged fields of params, a pointer to a struct. An invalid params
// type is a programming error and panics.
//
//	var params dumpParams
//	command := &cli.Command{
//	    Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("dump", &params) },
//	    Run:   func(args []string) error { /* params is filled in */ },
//	}
func FlagsFromParams(name string, params any) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flagSet.SortFlags = false
	if err := BindFlags(params, flagSet); err != nil {
		panic(fmt.Sprintf("cli.FlagsFromParams(%q): %v", name, err))
	}
	return flagSet
}

// BindFlags registers a flag for every tagged field of params, a
// pointer to a struct:
//
//   - flag:"name" or flag:"name,n" gives the long name and optional
//     shorthand. Untagged fields are skipped.
//   - desc:"..." is the help text.
//   - default:"..." is parsed by the field's type; absent means the
//     zero value.
//
// Fields may be string, bool, int or []string (default split on
// commas). Fields implementing [FlagBinder] bind themselves, and other
// embedded structs are walked.
func BindFlags(params any, flagSet *pflag.FlagSet) error {
	pointer := reflect.ValueOf(params)
	if pointer.Kind() != reflect.Pointer || pointer.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("params must be a pointer to a struct, got %T", params)
	}
	return bindStruct(pointer.Elem(), flagSet)
}

// flagSpec is one flag as read from struct tags.
type flagSpec struct {
	name, shorthand, usage, fallback string
}

func bindStruct(structValue reflect.Value, flagSet *pflag.FlagSet) error {
	for i := range structValue.NumField() {
		field := structValue.Type().Field(i)
		target := structValue.Field(i)

		if field.IsExported() && target.Kind() == reflect.Struct {
			if binder, ok := target.Addr().Interface().(FlagBinder); ok {
				binder.AddFlags(flagSet)
				continue
			}
			if field.Anonymous {
				if err := bindStruct(target, flagSet); err != nil {
					return fmt.Errorf("embedded %s: %w", field.Name, err)
				}
				continue
			}
		}

		tag, ok := field.Tag.Lookup("flag")
		if !ok || tag == "" {
			continue
		}
		spec := flagSpec{usage: field.Tag.Get("desc"), fallback: field.Tag.Get("default")}
		spec.name, spec.shorthand, _ = strings.Cut(tag, ",")
		if err := spec.bind(target, flagSet); err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
	}
	return nil
}

func (s flagSpec) bind(target reflect.Value, flagSet *pflag.FlagSet) error {
	switch pointer := target.Addr().Interface().(type) {
	case *string:
		flagSet.StringVarP(pointer, s.name, s.shorthand, s.fallback, s.usage)
	case *bool:
		fallback, err := parseDefault(s, strconv.ParseBool)
		if err != nil {
			return err
		}
		flagSet.BoolVarP(pointer, s.name, s.shorthand, fallback, s.usage)
	case *int:
		fallback, err := parseDefault(s, strconv.Atoi)
		if err != nil {
			return err
		}
		flagSet.IntVarP(pointer, s.name, s.shorthand, fallback, s.usage)
	case *[]string:
		var fallback []string
		if s.fallback != "" {
			fallback = strings.Split(s.fallback, ",")
		}
		flagSet.StringSliceVarP(pointer, s.name, s.shorthand, fallback, s.usage)
	default:
		return fmt.Errorf("unsupported type %s for flag --%s", target.Type(), s.name)
	}
	return nil
}

// parseDefault parses the default tag, or returns T's zero value when
// the tag is absent.
func parseDefault[T any](s flagSpec, parse func(string) (T, error)) (T, error) {
	var zero T
	if s.fallback == "" {
		return zero, nil
	}
	parsed, err := parse(s.fallback)
	if err != nil {
		return zero, fmt.Errorf("default for --%s: %w", s.name, err)
	}
	return parsed, nil
}
