// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports what build of sharegraph is running.
//
// Release builds stamp [GitCommit], [GitDirty], [BuildTime] and
// [Version] with the linker:
//
//	go build -ldflags "-X github.com/bureau-foundation/sharegraph/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// Unstamped builds keep the placeholders, except that [Commit] falls
// back to the VCS revision the toolchain embeds in the binary.
//
// [Info] is the one-line form printed by "sharegraph version"; [Full]
// adds the Go toolchain, platform, archive format version and codec
// list, which is what a bug report needs.
package version
