// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/sharegraph/cmd/sharegraph/cli"
	"github.com/bureau-foundation/sharegraph/lib/codec"
)

type dumpParams struct {
	cli.CommonParams
	From string `flag:"from" desc:"input format for bare envelopes (default: by extension, then sniffed)"`
	To   string `flag:"to,t" desc:"text format to print: json or yaml" default:"json"`
	Diag bool   `flag:"diag,d" desc:"print CBOR diagnostic notation instead"`
}

func dumpCommand() *cli.Command {
	var params dumpParams

	return &cli.Command{
		Name:    "dump",
		Summary: "Print an envelope in readable form",
		Description: `Print an envelope, archived or bare in any format, as indented JSON or
YAML. Reference tokens print as {"$ref": id} and byte strings as
{"$bytes": base64}.

With --diag, the envelope is re-encoded as deterministic CBOR and
printed in diagnostic notation (RFC 8949 section 8), where reference
tokens show as tag 29: 29(0).`,
		Usage: "sharegraph dump [flags] [file]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("dump", &params)
		},
		Args: cli.MaxArgs(1),
		Run: func(args []string) error {
			if _, err := params.Load("dump"); err != nil {
				return err
			}
			path := stdinPath
			if len(args) == 1 {
				path = args[0]
			}
			return dump(path, params.From, params.To, params.Diag, os.Stdin, os.Stdout)
		},
		Examples: []cli.Example{
			{
				Description: "Show an archive as JSON",
				Command:     "sharegraph dump graph.cbor.sgrf",
			},
			{
				Description: "Show the CBOR structure with tags",
				Command:     "sharegraph dump --diag graph.cbor",
			},
		},
	}
}

func dump(path, fromName, toName string, diag bool, stdin io.Reader, w io.Writer) error {
	loaded, err := loadSource(path, fromName, stdin)
	if err != nil {
		return err
	}

	if diag {
		data, err := codec.CBOR.MarshalEnvelope(loaded.Envelope)
		if err != nil {
			return err
		}
		notation, err := codec.Diagnose(data)
		if err != nil {
			return fmt.Errorf("diagnostic notation: %w", err)
		}
		_, err = fmt.Fprintln(w, notation)
		return err
	}

	format, err := codec.Lookup(toName)
	if err != nil {
		return err
	}
	if format.Binary() {
		return fmt.Errorf("%s is a binary format; use --diag to inspect CBOR", format.Name())
	}
	data, err := format.MarshalEnvelope(loaded.Envelope)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
