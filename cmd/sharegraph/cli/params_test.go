// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
)

type convertParams struct {
	CommonParams
	To          string   `flag:"to,t" desc:"target format" default:"cbor"`
	Archive     bool     `flag:"archive" desc:"wrap in an archive"`
	Concurrency int      `flag:"concurrency,j" desc:"parallel conversions" default:"4"`
	Extra       []string `flag:"extra" desc:"extra inputs" default:"a,b"`
	Ignored     string
}

func TestFlagsFromParams_Defaults(t *testing.T) {
	var params convertParams
	flagSet := FlagsFromParams("convert", &params)
	if err := flagSet.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := convertParams{To: "cbor", Concurrency: 4, Extra: []string{"a", "b"}}
	if diff := cmp.Diff(want, params); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
	if flagSet.Lookup("ignored") != nil {
		t.Error("untagged field was bound")
	}
}

func TestFlagsFromParams_Parse(t *testing.T) {
	var params convertParams
	flagSet := FlagsFromParams("convert", &params)
	args := []string{"-t", "yaml", "--archive", "-j", "8", "--extra", "x", "--config", "/etc/sg.yaml", "-v", "in.json"}
	if err := flagSet.Parse(args); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := convertParams{
		CommonParams: CommonParams{ConfigPath: "/etc/sg.yaml", Verbose: true},
		To:           "yaml",
		Archive:      true,
		Concurrency:  8,
		Extra:        []string{"x"},
	}
	if diff := cmp.Diff(want, params); diff != "" {
		t.Errorf("parsed params mismatch (-want +got):\n%s", diff)
	}
	if got := flagSet.Args(); len(got) != 1 || got[0] != "in.json" {
		t.Errorf("Args() = %v, want [in.json]", got)
	}
}

func TestFlagsFromParams_DeclarationOrder(t *testing.T) {
	var params convertParams
	usage := FlagsFromParams("convert", &params).FlagUsages()
	config := strings.Index(usage, "--config")
	to := strings.Index(usage, "--to")
	extra := strings.Index(usage, "--extra")
	if config < 0 || to < 0 || extra < 0 || !(config < to && to < extra) {
		t.Errorf("flags not listed in declaration order:\n%s", usage)
	}
}

func TestBindFlags_Errors(t *testing.T) {
	tests := []struct {
		name   string
		params any
		want   string
	}{
		{"not a pointer", convertParams{}, "pointer to a struct"},
		{"pointer to non-struct", new(int), "pointer to a struct"},
		{"unsupported type", &struct {
			Ratio float64 `flag:"ratio"`
		}{}, "unsupported type"},
		{"bad bool default", &struct {
			On bool `flag:"on" default:"maybe"`
		}{}, "default for --on"},
		{"bad int default", &struct {
			N int `flag:"n" default:"many"`
		}{}, "default for --n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := BindFlags(tt.params, pflag.NewFlagSet("test", pflag.ContinueOnError))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("BindFlags() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestFlagsFromParams_PanicsOnInvalid(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("FlagsFromParams did not panic on a non-pointer")
		}
	}()
	FlagsFromParams("bad", convertParams{})
}
