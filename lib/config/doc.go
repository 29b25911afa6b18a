// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the
// sharegraph tool.
//
// Configuration is loaded from a single file specified by either the
// SHAREGRAPH_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There are no fallbacks, no ~/.config
// discovery, and no automatic file search. Without a file, commands
// run on [Default].
//
// The configuration file supports environment-specific sections
// (development, production) that override base values when
// [Config].Environment matches. Production defaults wrap output in the
// archive container and log at warn.
//
// Variable expansion is performed on path fields after loading:
// ${HOME}, ${SHAREGRAPH_ROOT}, and ${VAR:-default} patterns are
// expanded. No other environment variables override config values.
//
// Key exports:
//
//   - [Config] -- master struct with Codec, Graph, Log, Paths, Convert
//   - [Default] -- returns a Config with development defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
package config
