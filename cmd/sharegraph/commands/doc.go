// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the sharegraph CLI command tree: inspect,
// verify, convert, dump and version. Each command resolves its
// configuration through [cli.CommonParams] and works on envelopes, so
// conversions never need the Go types the graph was encoded from.
package commands
