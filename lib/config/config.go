// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/sharegraph/lib/archive"
	"github.com/bureau-foundation/sharegraph/lib/codec"
	"github.com/bureau-foundation/sharegraph/lib/value"
)

// EnvironmentVariable names the variable Load reads the config path
// from.
const EnvironmentVariable = "SHAREGRAPH_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for interactive use on a workstation.
	Development Environment = "development"
	// Production is for batch pipelines.
	Production Environment = "production"
)

// Config is the sharegraph tool configuration.
type Config struct {
	// Environment selects which override section applies.
	Environment Environment `yaml:"environment"`

	// Codec configures output encoding.
	Codec CodecConfig `yaml:"codec"`

	// Graph configures encode and decode calls.
	Graph GraphConfig `yaml:"graph"`

	// Log configures diagnostic output.
	Log LogConfig `yaml:"log"`

	// Paths configures directory locations.
	Paths PathsConfig `yaml:"paths"`

	// Convert configures the batch conversion command.
	Convert ConvertConfig `yaml:"convert"`

	// Per-environment overrides, applied after the base config is
	// loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Codec   *CodecOverrides `yaml:"codec,omitempty"`
	Graph   *GraphConfig    `yaml:"graph,omitempty"`
	Log     *LogConfig      `yaml:"log,omitempty"`
	Paths   *PathsConfig    `yaml:"paths,omitempty"`
	Convert *ConvertConfig  `yaml:"convert,omitempty"`
}

// CodecOverrides overrides CodecConfig. Archive is a pointer so that
// an override leaving it out keeps the value below it.
type CodecOverrides struct {
	Format      string `yaml:"format,omitempty"`
	Compression string `yaml:"compression,omitempty"`
	Archive     *bool  `yaml:"archive,omitempty"`
}

// CodecConfig configures output encoding.
type CodecConfig struct {
	// Format is the default output format name: cbor, json or yaml.
	// Default: cbor
	Format string `yaml:"format"`

	// Compression is the archive compression: none, lz4, zstd or
	// auto. Default: auto
	Compression string `yaml:"compression"`

	// Archive wraps output in the integrity-checked archive
	// container. Default: false (development), true (production)
	Archive bool `yaml:"archive"`
}

// GraphConfig configures encode and decode calls.
type GraphConfig struct {
	// MaxDepth bounds value nesting. Default: 10000
	MaxDepth int `yaml:"max_depth"`
}

// LogConfig configures diagnostic output.
type LogConfig struct {
	// Level is the minimum slog level: debug, info, warn or error.
	// Default: info
	Level string `yaml:"level"`
}

// PathsConfig configures directory locations.
type PathsConfig struct {
	// Root is the base directory for sharegraph data.
	Root string `yaml:"root"`

	// Output is where convert writes files when no output directory
	// is given on the command line.
	Output string `yaml:"output"`
}

// ConvertConfig configures the batch conversion command.
type ConvertConfig struct {
	// Concurrency is the number of files converted in parallel.
	// Default: the number of CPUs
	Concurrency int `yaml:"concurrency"`
}

// Default returns the default configuration, used as the base before
// a config file is merged over it.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".cache", "sharegraph")

	return &Config{
		Environment: Development,
		Codec: CodecConfig{
			Format:      codec.CBOR.Name(),
			Compression: archive.CompressionAuto.String(),
		},
		Graph: GraphConfig{
			MaxDepth: value.DefaultMaxDepth,
		},
		Log: LogConfig{
			Level: "info",
		},
		Paths: PathsConfig{
			Root:   defaultRoot,
			Output: filepath.Join(defaultRoot, "out"),
		},
		Convert: ConvertConfig{
			Concurrency: runtime.NumCPU(),
		},
	}
}

// Load loads configuration from the file named by SHAREGRAPH_CONFIG.
// There is no fallback: if the variable is unset, Load fails.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your sharegraph.yaml config file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// Environment variables do not override config values. The only
// expansion performed is ${HOME}, ${SHAREGRAPH_ROOT} and
// ${VAR:-default} in path fields.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	return cfg, nil
}

// productionDefaults sit between the base config and the production
// section: archived output and quieter logs.
func productionDefaults() *ConfigOverrides {
	archived := true
	return &ConfigOverrides{
		Codec: &CodecOverrides{Archive: &archived},
		Log:   &LogConfig{Level: "warn"},
	}
}

// applyEnvironmentOverrides applies the environment-specific overrides.
// In production the built-in defaults apply first, and the production
// section then overrides them field by field.
func (c *Config) applyEnvironmentOverrides() {
	switch c.Environment {
	case Development:
		c.applyOverrides(c.Development)
	case Production:
		c.applyOverrides(productionDefaults())
		c.applyOverrides(c.Production)
	}
}

func (c *Config) applyOverrides(overrides *ConfigOverrides) {
	if overrides == nil {
		return
	}

	if overrides.Codec != nil {
		if overrides.Codec.Format != "" {
			c.Codec.Format = overrides.Codec.Format
		}
		if overrides.Codec.Compression != "" {
			c.Codec.Compression = overrides.Codec.Compression
		}
		if overrides.Codec.Archive != nil {
			c.Codec.Archive = *overrides.Codec.Archive
		}
	}

	if overrides.Graph != nil && overrides.Graph.MaxDepth != 0 {
		c.Graph.MaxDepth = overrides.Graph.MaxDepth
	}

	if overrides.Log != nil && overrides.Log.Level != "" {
		c.Log.Level = overrides.Log.Level
	}

	if overrides.Paths != nil {
		if overrides.Paths.Root != "" {
			c.Paths.Root = overrides.Paths.Root
		}
		if overrides.Paths.Output != "" {
			c.Paths.Output = overrides.Paths.Output
		}
	}

	if overrides.Convert != nil && overrides.Convert.Concurrency != 0 {
		c.Convert.Concurrency = overrides.Convert.Concurrency
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"SHAREGRAPH_ROOT": c.Paths.Root,
		"HOME":            os.Getenv("HOME"),
	}

	c.Paths.Root = expandVars(c.Paths.Root, vars)
	vars["SHAREGRAPH_ROOT"] = c.Paths.Root // Update for dependent paths.

	c.Paths.Output = expandVars(c.Paths.Output, vars)
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if _, err := codec.Lookup(c.Codec.Format); err != nil {
		errs = append(errs, fmt.Errorf("codec.format: %w", err))
	}
	if _, err := archive.ParseCompressionTag(c.Codec.Compression); err != nil {
		errs = append(errs, fmt.Errorf("codec.compression: %w", err))
	}

	if c.Graph.MaxDepth <= 0 {
		errs = append(errs, fmt.Errorf("graph.max_depth must be positive, got %d", c.Graph.MaxDepth))
	}

	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	if c.Paths.Output == "" {
		errs = append(errs, errors.New("paths.output is required"))
	}

	if c.Convert.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("convert.concurrency must be positive, got %d", c.Convert.Concurrency))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, err
	}
	return level, nil
}

// Format returns the configured default codec format.
func (c *Config) Format() (codec.Format, error) {
	return codec.Lookup(c.Codec.Format)
}

// Compression returns the configured archive compression tag.
func (c *Config) Compression() (archive.CompressionTag, error) {
	return archive.ParseCompressionTag(c.Codec.Compression)
}

// EnsurePaths creates all configured directories if they don't exist.
func (c *Config) EnsurePaths() error {
	for _, path := range []string{c.Paths.Root, c.Paths.Output} {
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}
	return nil
}
