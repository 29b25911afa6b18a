// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import "github.com/bureau-foundation/sharegraph/cmd/sharegraph/cli"

// Root builds the sharegraph command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "sharegraph",
		Description: `sharegraph: shared-reference graph envelopes.

Inspect, verify and convert envelopes produced by the sharegraph
encoder, in CBOR, JSON or YAML, bare or archived.

Configuration is read from --config or $SHAREGRAPH_CONFIG; without
either, built-in defaults apply.`,
		Subcommands: []*cli.Command{
			inspectCommand(),
			verifyCommand(),
			convertCommand(),
			dumpCommand(),
			versionCommand(),
		},
	}
}
