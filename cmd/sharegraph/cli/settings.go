// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/sharegraph/lib/config"
	"github.com/bureau-foundation/sharegraph/lib/graph"
)

// CommonParams holds the flags every sharegraph command accepts.
// Embed it in a command's params struct.
type CommonParams struct {
	// ConfigPath is the --config file. Empty means SHAREGRAPH_CONFIG,
	// and built-in defaults when that is unset too.
	ConfigPath string

	// Verbose forces debug logging regardless of log.level.
	Verbose bool
}

// AddFlags implements FlagBinder.
func (p *CommonParams) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&p.ConfigPath, "config", "", "configuration file (default: $"+config.EnvironmentVariable+")")
	flagSet.BoolVarP(&p.Verbose, "verbose", "v", false, "log at debug level")
}

// Settings is the resolved configuration and logger for one command
// invocation.
type Settings struct {
	Config *config.Config
	Logger *slog.Logger
}

// Load resolves the configuration file, validates it and builds the
// command logger.
func (p *CommonParams) Load(command string) (*Settings, error) {
	cfg, err := p.loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	if p.Verbose {
		level = slog.LevelDebug
	}
	return &Settings{
		Config: cfg,
		Logger: NewCommandLogger(level).With("command", command),
	}, nil
}

func (p *CommonParams) loadConfig() (*config.Config, error) {
	switch {
	case p.ConfigPath != "":
		return config.LoadFile(p.ConfigPath)
	case os.Getenv(config.EnvironmentVariable) != "":
		return config.Load()
	default:
		return config.Default(), nil
	}
}

// GraphOptions returns the encode and decode options the settings
// describe.
func (s *Settings) GraphOptions() graph.Options {
	return graph.Options{MaxDepth: s.Config.Graph.MaxDepth, Logger: s.Logger}
}
