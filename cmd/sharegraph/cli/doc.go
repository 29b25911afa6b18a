// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command framework for the sharegraph
// binary.
//
// Each [Command] has a name, summary, optional nested
// [Command.Subcommands], a [pflag.FlagSet] factory, and a Run function.
// [Command.Execute] dispatches the argument list through the tree,
// parses flags, validates positional arguments and calls Run. Unknown
// commands and flags get Levenshtein "did you mean" suggestions.
//
// Flags are usually declared as tagged struct fields and bound with
// [FlagsFromParams]. Embedding [CommonParams] adds --config and
// --verbose; [CommonParams.Load] then resolves the configuration file
// and builds the command logger with [NewCommandLogger].
//
// A command that has already reported its own failure returns an
// [ExitError] so main exits non-zero without printing it again.
package cli
