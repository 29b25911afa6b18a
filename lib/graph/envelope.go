// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"slices"

	"github.com/bureau-foundation/sharegraph/lib/value"
)

// Envelope is the unit that is persisted or transmitted: the encoded
// root plus the referent table. Root and every referent may contain
// RefTokens; each token's id must index Referents.
type Envelope struct {
	Root      any
	Referents []any
}

// Report summarizes the reference structure of an envelope.
type Report struct {
	// Referents is the size of the referent table.
	Referents int

	// Tokens counts RefTokens across the root and all referents.
	Tokens int

	// Reachable counts referents reachable from the root.
	Reachable int

	// Unreachable lists referents no token reachable from the root
	// points at, in id order.
	Unreachable []value.RefID

	// MaxDepth is the longest chain of first occurrences met in a
	// pre-order walk from the root: the shared-handle nesting depth a
	// decode of this envelope reaches.
	MaxDepth int
}

// Check validates every RefToken in envelope against the referent
// table and reports the reference structure. It walks with an explicit
// stack, so arbitrarily deep envelopes cannot exhaust the goroutine
// stack. The first dangling token found fails the check with a
// *ReferenceError.
func Check(envelope *Envelope) (Report, error) {
	report := Report{Referents: len(envelope.Referents)}
	visited := make([]bool, len(envelope.Referents))

	type frame struct {
		node  any
		depth int
	}
	stack := []frame{{node: envelope.Root}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch node := top.node.(type) {
		case value.RefToken:
			report.Tokens++
			if node.ID >= value.RefID(len(envelope.Referents)) {
				return report, &ReferenceError{ID: node.ID, Len: len(envelope.Referents)}
			}
			if visited[node.ID] {
				continue
			}
			visited[node.ID] = true
			report.Reachable++
			report.MaxDepth = max(report.MaxDepth, top.depth+1)
			stack = append(stack, frame{node: envelope.Referents[node.ID], depth: top.depth + 1})

		case []any:
			for i := len(node) - 1; i >= 0; i-- {
				stack = append(stack, frame{node: node[i], depth: top.depth})
			}

		case map[string]any:
			keys := sortedKeys(node)
			for i := len(keys) - 1; i >= 0; i-- {
				stack = append(stack, frame{node: node[keys[i]], depth: top.depth})
			}
		}
	}

	for id, seen := range visited {
		if seen {
			continue
		}
		report.Unreachable = append(report.Unreachable, value.RefID(id))
		tokens, err := countTokens(envelope.Referents[id], len(envelope.Referents))
		report.Tokens += tokens
		if err != nil {
			return report, err
		}
	}
	return report, nil
}

// countTokens counts and range checks the tokens inside one payload
// without following them.
func countTokens(payload any, referents int) (int, error) {
	count := 0
	stack := []any{payload}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch node := top.(type) {
		case value.RefToken:
			count++
			if node.ID >= value.RefID(referents) {
				return count, &ReferenceError{ID: node.ID, Len: referents}
			}
		case []any:
			stack = append(stack, node...)
		case map[string]any:
			for _, element := range node {
				stack = append(stack, element)
			}
		}
	}
	return count, nil
}

func sortedKeys(entries map[string]any) []string {
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
