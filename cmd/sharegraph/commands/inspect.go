// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/sharegraph/cmd/sharegraph/cli"
	"github.com/bureau-foundation/sharegraph/lib/graph"
	"github.com/bureau-foundation/sharegraph/lib/value"
)

type inspectParams struct {
	cli.CommonParams
	Format string `flag:"format,f" desc:"input format for bare envelopes (default: by extension, then sniffed)"`
	JSON   bool   `flag:"json" desc:"print the reports as a JSON array"`
}

// inspection is the report for one envelope.
type inspection struct {
	Path        string          `json:"path"`
	Format      string          `json:"format"`
	Size        int             `json:"size"`
	Archive     *archiveSummary `json:"archive,omitempty"`
	Referents   int             `json:"referents"`
	Tokens      int             `json:"tokens"`
	Reachable   int             `json:"reachable"`
	Unreachable []value.RefID   `json:"unreachable"`
	MaxDepth    int             `json:"max_depth"`
}

type archiveSummary struct {
	Version      uint8  `json:"version"`
	Compression  string `json:"compression"`
	Length       uint64 `json:"length"`
	StoredLength uint64 `json:"stored_length"`
	Digest       string `json:"digest"`
}

func inspectCommand() *cli.Command {
	var params inspectParams

	return &cli.Command{
		Name:    "inspect",
		Summary: "Describe the reference structure of envelopes",
		Description: `Print the storage details and reference structure of each envelope:
format, archive header, referent count, token count, referents
unreachable from the root, and the deepest chain of first occurrences
a decode would follow.

Archives are recognized by their header. Bare envelopes are parsed by
--format, else by file extension, else by sniffing the first bytes.
With no arguments, or "-", the envelope is read from stdin.`,
		Usage: "sharegraph inspect [flags] [file...]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("inspect", &params)
		},
		Run: func(args []string) error {
			if _, err := params.Load("inspect"); err != nil {
				return err
			}
			if len(args) == 0 {
				args = []string{stdinPath}
			}
			return inspect(args, params.Format, params.JSON, os.Stdin, os.Stdout)
		},
		Examples: []cli.Example{
			{
				Description: "Inspect an archive",
				Command:     "sharegraph inspect session.sgrf",
			},
			{
				Description: "Machine-readable reports for several files",
				Command:     "sharegraph inspect --json a.cbor b.json",
			},
		},
	}
}

func inspect(paths []string, formatName string, jsonOutput bool, stdin io.Reader, w io.Writer) error {
	reports := make([]inspection, 0, len(paths))
	for _, path := range paths {
		loaded, err := loadSource(path, formatName, stdin)
		if err != nil {
			return err
		}
		report, err := graph.Check(loaded.Envelope)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		reports = append(reports, newInspection(loaded, report))
	}

	if jsonOutput {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(reports)
	}

	for i, report := range reports {
		if i > 0 {
			fmt.Fprintln(w)
		}
		writeInspection(w, report)
	}
	return nil
}

func newInspection(loaded *source, report graph.Report) inspection {
	result := inspection{
		Path:        loaded.Path,
		Format:      loaded.Format.Name(),
		Size:        loaded.Size,
		Referents:   report.Referents,
		Tokens:      report.Tokens,
		Reachable:   report.Reachable,
		Unreachable: report.Unreachable,
		MaxDepth:    report.MaxDepth,
	}
	if result.Unreachable == nil {
		result.Unreachable = []value.RefID{}
	}
	if header := loaded.Archive; header != nil {
		result.Archive = &archiveSummary{
			Version:      header.Version,
			Compression:  header.Compression.String(),
			Length:       header.Length,
			StoredLength: header.StoredLength,
			Digest:       header.Digest.String(),
		}
	}
	return result
}

func writeInspection(w io.Writer, report inspection) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "file:\t%s\n", report.Path)
	fmt.Fprintf(tw, "format:\t%s\n", report.Format)
	fmt.Fprintf(tw, "size:\t%d bytes\n", report.Size)
	if archive := report.Archive; archive != nil {
		fmt.Fprintf(tw, "archive:\tv%d, %s, %d -> %d bytes\n",
			archive.Version, archive.Compression, archive.Length, archive.StoredLength)
		fmt.Fprintf(tw, "digest:\t%s\n", archive.Digest)
	}
	fmt.Fprintf(tw, "referents:\t%d\n", report.Referents)
	fmt.Fprintf(tw, "tokens:\t%d\n", report.Tokens)
	fmt.Fprintf(tw, "reachable:\t%d\n", report.Reachable)
	if len(report.Unreachable) > 0 {
		fmt.Fprintf(tw, "unreachable:\t%v\n", report.Unreachable)
	}
	fmt.Fprintf(tw, "max depth:\t%d\n", report.MaxDepth)
	tw.Flush()
}
