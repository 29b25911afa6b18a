// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"

	"github.com/spf13/pflag"
)

// maxSuggestionDistance is the largest edit distance still offered as
// a "did you mean" suggestion.
const maxSuggestionDistance = 3

// suggestCommand returns the name of the closest matching subcommand
// to unknown, or "" if none is within maxSuggestionDistance.
func suggestCommand(unknown string, commands []*Command) string {
	candidates := make([]string, len(commands))
	for i, command := range commands {
		candidates[i] = command.Name
	}
	return closest(unknown, candidates)
}

// suggestFlag finds the first flag in args that flagSet does not
// define and returns the closest defined flag, with its -- or -
// prefix. Returns "" if no good suggestion is found.
func suggestFlag(args []string, flagSet *pflag.FlagSet) string {
	var defined []string
	flagSet.VisitAll(func(f *pflag.Flag) {
		defined = append(defined, f.Name)
	})

	for _, arg := range args {
		if arg == "--" {
			break
		}
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		name := strings.TrimLeft(arg, "-")
		if index := strings.IndexByte(name, '='); index >= 0 {
			name = name[:index]
		}
		if flagSet.Lookup(name) != nil || (len(name) == 1 && flagSet.ShorthandLookup(name) != nil) {
			continue
		}

		// Only the first unrecognized flag is considered.
		bestName := closest(name, defined)
		switch {
		case bestName == "":
			return ""
		case len(bestName) == 1:
			return "-" + bestName
		default:
			return "--" + bestName
		}
	}
	return ""
}

// closest returns the candidate with the smallest edit distance to
// input, or "" if none is within maxSuggestionDistance. Ties go to the
// earlier candidate.
func closest(input string, candidates []string) string {
	bestName := ""
	bestDistance := maxSuggestionDistance + 1
	for _, candidate := range candidates {
		if distance := levenshtein(input, candidate); distance < bestDistance {
			bestDistance = distance
			bestName = candidate
		}
	}
	return bestName
}

// levenshtein computes the Levenshtein edit distance between two strings:
// the minimum number of single-character insertions, deletions and
// substitutions turning one into the other.
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	// One row of the distance matrix, O(min(m,n)) space.
	if len(a) > len(b) {
		a, b = b, a
	}

	previous := make([]int, len(a)+1)
	current := make([]int, len(a)+1)
	for i := range previous {
		previous[i] = i
	}

	for j := 1; j <= len(b); j++ {
		current[0] = j
		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			current[i] = min(previous[i]+1, current[i-1]+1, previous[i-1]+cost)
		}
		previous, current = current, previous
	}

	return previous[len(a)]
}
