// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/bureau-foundation/sharegraph/cmd/sharegraph/cli"
	"github.com/bureau-foundation/sharegraph/lib/archive"
	"github.com/bureau-foundation/sharegraph/lib/codec"
	"github.com/bureau-foundation/sharegraph/lib/config"
	"github.com/bureau-foundation/sharegraph/lib/graph"
)

// archiveExtension is appended to the format extension of archived
// output ("graph.cbor.sgrf").
const archiveExtension = ".sgrf"

type convertParams struct {
	cli.CommonParams
	To          string `flag:"to,t" desc:"target format (default: codec.format)"`
	From        string `flag:"from" desc:"input format for bare envelopes (default: by extension, then sniffed)"`
	Archive     bool   `flag:"archive,a" desc:"wrap output in an archive (default: codec.archive)"`
	Plain       bool   `flag:"plain" desc:"write bare envelopes even when codec.archive is set"`
	Compression string `flag:"compression,c" desc:"archive compression: none, lz4, zstd or auto (default: codec.compression)"`
	OutputDir   string `flag:"output-dir,o" desc:"directory for converted files (default: paths.output)"`
}

// conversion is the resolved output encoding.
type conversion struct {
	Format      codec.Format
	Archive     bool
	Compression archive.CompressionTag
}

func convertCommand() *cli.Command {
	var params convertParams

	return &cli.Command{
		Name:    "convert",
		Summary: "Re-encode envelopes in another format",
		Description: `Convert envelopes between CBOR, JSON and YAML, optionally wrapping the
result in a digest-checked archive. Reference tokens are carried over
unchanged, so shared and cyclic structure survives every conversion.

Each input is checked for dangling references before it is written.
Files are converted in parallel, up to convert.concurrency at a time,
into --output-dir (default paths.output) under the input's base name
with the target format's extension. A single "-" argument converts
stdin to stdout.`,
		Usage: "sharegraph convert [flags] <file>...",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("convert", &params)
		},
		Args: cli.MinArgs(1),
		Run: func(args []string) error {
			settings, err := params.Load("convert")
			if err != nil {
				return err
			}
			plan, err := params.conversion(settings.Config)
			if err != nil {
				return err
			}

			if len(args) == 1 && args[0] == stdinPath {
				return convertStream(plan, params.From, os.Stdin, os.Stdout)
			}
			for _, arg := range args {
				if arg == stdinPath {
					return errors.New(`"-" (stdin) must be the only argument`)
				}
			}

			outputDir := params.OutputDir
			if outputDir == "" {
				if err := settings.Config.EnsurePaths(); err != nil {
					return err
				}
				outputDir = settings.Config.Paths.Output
			} else if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return err
			}

			written, err := convertFiles(context.Background(), args, params.From, plan, outputDir,
				settings.Config.Convert.Concurrency, settings.Logger)
			for _, path := range written {
				fmt.Fprintln(os.Stdout, path)
			}
			return err
		},
		Examples: []cli.Example{
			{
				Description: "Convert JSON fixtures to CBOR in ./out",
				Command:     "sharegraph convert --to cbor -o out testdata/*.json",
			},
			{
				Description: "Archive with zstd compression",
				Command:     "sharegraph convert --archive -c zstd graph.yaml",
			},
			{
				Description: "Pretty-print an archive as YAML",
				Command:     "sharegraph convert --to yaml --plain - < graph.cbor.sgrf",
			},
		},
	}
}

// conversion resolves the flags over the configuration defaults.
func (p *convertParams) conversion(cfg *config.Config) (conversion, error) {
	if p.Archive && p.Plain {
		return conversion{}, errors.New("--archive and --plain are mutually exclusive")
	}

	var plan conversion
	var err error
	if p.To != "" {
		plan.Format, err = codec.Lookup(p.To)
	} else {
		plan.Format, err = cfg.Format()
	}
	if err != nil {
		return conversion{}, err
	}

	if p.Compression != "" {
		plan.Compression, err = archive.ParseCompressionTag(p.Compression)
	} else {
		plan.Compression, err = cfg.Compression()
	}
	if err != nil {
		return conversion{}, err
	}

	plan.Archive = (cfg.Codec.Archive || p.Archive) && !p.Plain
	return plan, nil
}

// encode serializes envelope as the plan describes.
func (c conversion) encode(envelope *graph.Envelope) ([]byte, error) {
	if c.Archive {
		return archive.Marshal(c.Format, envelope, c.Compression)
	}
	return c.Format.MarshalEnvelope(envelope)
}

// outputName maps an input path to the converted file name: the base
// name with any archive and format extensions replaced by the target's.
func (c conversion) outputName(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), archiveExtension)
	if _, err := codec.ForPath(name); err == nil {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	name += c.Format.Extensions()[0]
	if c.Archive {
		name += archiveExtension
	}
	return name
}

func convertStream(plan conversion, formatName string, stdin io.Reader, stdout io.Writer) error {
	loaded, err := loadSource(stdinPath, formatName, stdin)
	if err != nil {
		return err
	}
	if _, err := graph.Check(loaded.Envelope); err != nil {
		return err
	}
	data, err := plan.encode(loaded.Envelope)
	if err != nil {
		return err
	}
	_, err = stdout.Write(data)
	return err
}

// convertFiles converts paths concurrently, at most limit at a time,
// and returns the written output paths in input order. The first
// failure cancels conversions that have not started.
func convertFiles(ctx context.Context, paths []string, formatName string, plan conversion,
	outputDir string, limit int, logger *slog.Logger) ([]string, error) {
	outputs := make([]string, len(paths))
	seen := make(map[string]string, len(paths))
	for i, path := range paths {
		outputs[i] = filepath.Join(outputDir, plan.outputName(path))
		if previous, ok := seen[outputs[i]]; ok {
			return nil, fmt.Errorf("%s and %s both convert to %s", previous, path, outputs[i])
		}
		seen[outputs[i]] = path
		if sameFile(path, outputs[i]) {
			return nil, fmt.Errorf("converting %s would overwrite it", path)
		}
	}

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(max(limit, 1))
	done := make([]bool, len(paths))
	for i, path := range paths {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := convertFile(path, outputs[i], formatName, plan, logger); err != nil {
				return err
			}
			done[i] = true
			return nil
		})
	}
	err := group.Wait()

	var written []string
	for i, output := range outputs {
		if done[i] {
			written = append(written, output)
		}
	}
	return written, err
}

func convertFile(path, output, formatName string, plan conversion, logger *slog.Logger) error {
	loaded, err := loadSource(path, formatName, nil)
	if err != nil {
		return err
	}
	report, err := graph.Check(loaded.Envelope)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	data, err := plan.encode(loaded.Envelope)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := writeFile(output, data); err != nil {
		return err
	}
	logger.Info("converted",
		"input", path,
		"output", output,
		"from", loaded.Format.Name(),
		"to", plan.Format.Name(),
		"archive", plan.Archive,
		"referents", report.Referents,
		"bytes", len(data),
	)
	return nil
}

func sameFile(a, b string) bool {
	aInfo, err := os.Stat(a)
	if err != nil {
		return false
	}
	bInfo, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(aInfo, bInfo)
}
