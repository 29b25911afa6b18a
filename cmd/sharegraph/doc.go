// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Sharegraph is the command-line tool for shared-reference graph
// envelopes. It inspects their reference structure, verifies that
// they decode, converts them between CBOR, JSON and YAML, wraps them
// in digest-checked archives, and prints them for reading.
//
// Usage:
//
//	sharegraph <command> [flags]
//
// Run "sharegraph --help" for the command list.
package main
