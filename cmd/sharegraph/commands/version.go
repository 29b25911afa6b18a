// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/sharegraph/cmd/sharegraph/cli"
	"github.com/bureau-foundation/sharegraph/lib/version"
)

type versionParams struct {
	Full bool `flag:"full" desc:"include Go version, platform, archive version and codecs"`
}

func versionCommand() *cli.Command {
	var params versionParams

	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("version", &params)
		},
		Args: cli.ExactArgs(0),
		Run: func(args []string) error {
			if params.Full {
				fmt.Fprintf(os.Stdout, "sharegraph %s\n", version.Full())
			} else {
				fmt.Fprintf(os.Stdout, "sharegraph %s\n", version.Info())
			}
			return nil
		},
	}
}
