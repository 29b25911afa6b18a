// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/bureau-foundation/sharegraph/lib/archive"
	"github.com/bureau-foundation/sharegraph/lib/codec"
)

// These variables are set via -ldflags at build time.
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// GitDirty indicates whether there were uncommitted changes.
	GitDirty = "false"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// Version is the semantic version. This is set manually for releases.
	Version = "0.1.0-dev"
)

// Info returns a formatted version string suitable for --version output.
func Info() string {
	commit, dirty := Commit(), ""
	if GitDirty == "true" {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", Version, commit, dirty, BuildTime)
}

// Full returns detailed version information: Info plus the Go
// version, platform, archive format version and codec formats.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s\n  Archive format: v%d\n  Codecs: %s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH,
		archive.Version, strings.Join(codec.Names(), ", "))
}

// Short returns just the version number.
func Short() string {
	return Version
}

// Commit returns the git commit SHA. Builds without -ldflags fall back
// to the VCS revision the Go toolchain stamped into the binary, if any.
func Commit() string {
	if GitCommit != "unknown" {
		return GitCommit
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return GitCommit
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && len(setting.Value) >= 7 {
			return setting.Value[:7]
		}
	}
	return GitCommit
}
