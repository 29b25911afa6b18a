// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name: "sharegraph",
		Subcommands: []*Command{
			{Name: "version", Run: func(args []string) error { called = "version"; return nil }},
			{Name: "inspect", Run: func(args []string) error { called = "inspect"; return nil }},
		},
	}

	if err := root.Execute([]string{"inspect"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "inspect" {
		t.Errorf("dispatched to %q, want %q", called, "inspect")
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var format string
	var received []string

	command := &Command{
		Name: "convert",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("convert", pflag.ContinueOnError)
			flagSet.StringVar(&format, "to", "cbor", "target format")
			return flagSet
		},
		Run: func(args []string) error {
			received = args
			return nil
		},
	}

	if err := command.Execute([]string{"--to", "yaml", "a.json", "b.json"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if format != "yaml" {
		t.Errorf("format = %q, want yaml", format)
	}
	if len(received) != 2 || received[0] != "a.json" || received[1] != "b.json" {
		t.Errorf("args = %v, want [a.json b.json]", received)
	}
}

func TestCommand_Execute_UnknownFlagSuggestion(t *testing.T) {
	command := &Command{
		Name: "convert",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("convert", pflag.ContinueOnError)
			flagSet.Bool("archive", false, "wrap output in an archive")
			flagSet.String("to", "", "target format")
			return flagSet
		},
		Run: func(args []string) error { return nil },
	}

	err := command.Execute([]string{"--archvie"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	if !strings.Contains(err.Error(), "did you mean --archive") {
		t.Errorf("error = %q, want suggestion for '--archive'", err.Error())
	}
	if !strings.Contains(err.Error(), "--help") {
		t.Errorf("error = %q, should point to --help", err.Error())
	}
}

func TestCommand_Execute_UnknownSubcommand(t *testing.T) {
	root := &Command{
		Name: "sharegraph",
		Subcommands: []*Command{
			{Name: "inspect"},
			{Name: "verify"},
			{Name: "convert"},
		},
	}

	err := root.Execute([]string{"verfy"})
	if err == nil || !strings.Contains(err.Error(), `did you mean "verify"`) {
		t.Errorf("error = %v, want suggestion for 'verify'", err)
	}

	err = root.Execute([]string{"zzzzzzz"})
	if err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %v, want plain unknown-command error", err)
	}
}

func TestCommand_Execute_HelpFlag(t *testing.T) {
	for _, helpArg := range []string{"-h", "--help", "help"} {
		t.Run(helpArg, func(t *testing.T) {
			var output bytes.Buffer
			called := false
			command := &Command{
				Name:        "dump",
				Description: "Print an envelope.",
				Output:      &output,
				Examples:    []Example{{Description: "dump a file", Command: "sharegraph dump graph.cbor"}},
				Run:         func(args []string) error { called = true; return nil },
			}
			if err := command.Execute([]string{helpArg}); err != nil {
				t.Fatalf("Execute(%q) error: %v", helpArg, err)
			}
			if called {
				t.Error("Run called for help request")
			}
			for _, want := range []string{"Print an envelope.", "Usage:", "sharegraph dump graph.cbor"} {
				if !strings.Contains(output.String(), want) {
					t.Errorf("help output missing %q:\n%s", want, output.String())
				}
			}
		})
	}
}

func TestCommand_Execute_HelpInheritsOutput(t *testing.T) {
	var output bytes.Buffer
	root := &Command{
		Name:        "sharegraph",
		Output:      &output,
		Subcommands: []*Command{{Name: "verify", Summary: "Check envelopes", Run: func([]string) error { return nil }}},
	}
	if err := root.Execute([]string{"verify", "--help"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.Contains(output.String(), "sharegraph verify") {
		t.Errorf("subcommand help not written to root output:\n%s", output.String())
	}
}

func TestCommand_Execute_SubcommandRequired(t *testing.T) {
	var output bytes.Buffer
	root := &Command{
		Name:        "sharegraph",
		Output:      &output,
		Subcommands: []*Command{{Name: "inspect", Summary: "Describe an envelope"}},
	}
	if err := root.Execute(nil); err == nil {
		t.Error("Execute() with no args = nil, want subcommand required")
	}
	if !strings.Contains(output.String(), "inspect") {
		t.Errorf("help output does not list subcommands:\n%s", output.String())
	}
}

func TestCommand_Execute_ArgsValidation(t *testing.T) {
	tests := []struct {
		name    string
		args    func([]string) error
		input   []string
		wantErr bool
	}{
		{"exact ok", ExactArgs(1), []string{"a"}, false},
		{"exact too many", ExactArgs(1), []string{"a", "b"}, true},
		{"max ok", MaxArgs(1), nil, false},
		{"max too many", MaxArgs(1), []string{"a", "b"}, true},
		{"min ok", MinArgs(1), []string{"a", "b"}, false},
		{"min too few", MinArgs(1), nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			command := &Command{Name: "verify", Args: tt.args, Run: func([]string) error { called = true; return nil }}
			err := command.Execute(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Execute(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if called == tt.wantErr {
				t.Errorf("Run called = %v with wantErr %v", called, tt.wantErr)
			}
		})
	}
}
