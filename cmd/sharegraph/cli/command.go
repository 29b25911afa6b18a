// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

// Command is one node of the command tree. A node either runs
// (Run set) or groups further commands (Subcommands set); a node with
// both runs when the first argument names no subcommand.
type Command struct {
	// Name is the word that selects this command on the command line.
	Name string

	// Summary is the one-line description listed under the parent.
	Summary string

	// Description is the long help text. Summary is used when empty.
	Description string

	// Usage overrides the synthesized usage line.
	Usage string

	// Examples are listed at the end of the help text.
	Examples []Example

	// Flags builds the command's flag set. It is called for every parse
	// and every help rendering, so it must bind to the same variables
	// each time. Nil means the command takes no flags.
	Flags func() *pflag.FlagSet

	// Args validates the positional arguments left after flag parsing.
	// Nil accepts anything.
	Args func(args []string) error

	Subcommands []*Command

	// Run receives the positional arguments left after flag parsing.
	Run func(args []string) error

	// Output receives help text. Subcommands inherit their parent's;
	// the root defaults to stderr.
	Output io.Writer

	parent *Command
}

// Example is a command line shown in help, with an optional comment.
type Example struct {
	Description string
	Command     string
}

// ExactArgs requires exactly n positional arguments.
func ExactArgs(n int) func([]string) error {
	return func(args []string) error {
		if len(args) != n {
			return fmt.Errorf("expected %d argument(s), got %d", n, len(args))
		}
		return nil
	}
}

// MaxArgs allows at most n positional arguments.
func MaxArgs(n int) func([]string) error {
	return func(args []string) error {
		if len(args) > n {
			return fmt.Errorf("expected at most %d argument(s), got %d: %s", n, len(args), strings.Join(args, " "))
		}
		return nil
	}
}

// MinArgs requires at least n positional arguments.
func MinArgs(n int) func([]string) error {
	return func(args []string) error {
		if len(args) < n {
			return fmt.Errorf("expected at least %d argument(s), got %d", n, len(args))
		}
		return nil
	}
}

// Execute runs the command tree against args, which exclude the
// program name.
func (c *Command) Execute(args []string) error {
	if len(args) > 0 && isHelpFlag(args[0]) {
		c.PrintHelp(c.output())
		return nil
	}

	if sub, err := c.dispatch(args); sub != nil || err != nil {
		if err != nil {
			return err
		}
		return sub.Execute(args[1:])
	}

	if c.Run == nil {
		c.PrintHelp(c.output())
		if len(c.Subcommands) == 0 {
			return fmt.Errorf("no action defined for %q", c.fullName())
		}
		if len(args) == 0 {
			return errors.New("subcommand required")
		}
		return fmt.Errorf("subcommand required (got flag %q)", args[0])
	}

	positional, help, err := c.parseFlags(args)
	if err != nil || help {
		return err
	}
	if c.Args != nil {
		if err := c.Args(positional); err != nil {
			return c.usageError(fmt.Errorf("%s: %w", c.fullName(), err))
		}
	}
	return c.Run(positional)
}

// dispatch finds the subcommand args[0] names. It returns nil, nil
// when args do not start with a word, or when the word is unknown and
// c has a Run of its own to fall back to.
func (c *Command) dispatch(args []string) (*Command, error) {
	if len(c.Subcommands) == 0 || len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return nil, nil
	}
	name := args[0]
	for _, sub := range c.Subcommands {
		if sub.Name == name {
			sub.parent = c
			return sub, nil
		}
	}
	if c.Run != nil {
		return nil, nil
	}
	if suggestion := suggestCommand(name, c.Subcommands); suggestion != "" {
		return nil, c.usageError(fmt.Errorf("unknown command %q (did you mean %q?)", name, suggestion))
	}
	return nil, c.usageError(fmt.Errorf("unknown command %q", name))
}

// parseFlags parses args against c.Flags and returns the positional
// arguments. help reports that --help was given and printed.
func (c *Command) parseFlags(args []string) (positional []string, help bool, err error) {
	if c.Flags == nil {
		return args, false, nil
	}
	flagSet := c.Flags()
	flagSet.SetOutput(io.Discard)

	err = flagSet.Parse(args)
	switch {
	case err == nil:
		return flagSet.Args(), false, nil
	case errors.Is(err, pflag.ErrHelp):
		c.PrintHelp(c.output())
		return nil, true, nil
	}

	message := err.Error()
	if strings.Contains(message, "unknown flag") || strings.Contains(message, "unknown shorthand flag") {
		// Suggest against a fresh set; the failed parse has already
		// written through to the bound variables.
		if suggestion := suggestFlag(args, c.Flags()); suggestion != "" {
			message = fmt.Sprintf("%s (did you mean %s?)", message, suggestion)
		}
	}
	return nil, false, c.usageError(errors.New(message))
}

// usageError appends the pointer to this command's help.
func (c *Command) usageError(err error) error {
	return fmt.Errorf("%w\n\nRun '%s --help' for usage.", err, c.fullName())
}

// PrintHelp writes the command's help text to w.
func (c *Command) PrintHelp(w io.Writer) {
	name := c.fullName()

	text := c.Description
	if text == "" {
		text = c.Summary
	}
	if text != "" {
		fmt.Fprintf(w, "%s\n\n", text)
	}

	usage := c.Usage
	if usage == "" {
		usage = name + " [flags]"
		if len(c.Subcommands) > 0 {
			usage = name + " <command> [flags]"
		}
	}
	fmt.Fprintf(w, "Usage:\n  %s\n", usage)

	if len(c.Subcommands) > 0 {
		fmt.Fprint(w, "\nCommands:\n")
		table := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
		for _, sub := range c.Subcommands {
			fmt.Fprintf(table, "  %s\t%s\n", sub.Name, sub.Summary)
		}
		table.Flush()
	}

	if c.Flags != nil {
		if flags := c.Flags().FlagUsages(); flags != "" {
			fmt.Fprintf(w, "\nFlags:\n%s", flags)
		}
	}

	if len(c.Examples) > 0 {
		fmt.Fprint(w, "\nExamples:\n")
		for _, example := range c.Examples {
			if example.Description == "" {
				fmt.Fprintf(w, "  %s\n", example.Command)
				continue
			}
			fmt.Fprintf(w, "  # %s\n  %s\n\n", example.Description, example.Command)
		}
	}

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nRun '%s <command> --help' for details on a command.\n", name)
	}
}

// fullName is the command path from the root, e.g. "sharegraph convert".
func (c *Command) fullName() string {
	if c.parent == nil {
		return c.Name
	}
	return c.parent.fullName() + " " + c.Name
}

func (c *Command) output() io.Writer {
	for command := c; command != nil; command = command.parent {
		if command.Output != nil {
			return command.Output
		}
	}
	return os.Stderr
}

func isHelpFlag(arg string) bool {
	switch arg {
	case "-h", "--help", "help":
		return true
	}
	return false
}
