// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"fmt"

	"github.com/bureau-foundation/sharegraph/lib/value"
)

// Store is the referent table: an append-only sequence of encoded
// payloads indexed by reference id. Slots are reserved before their
// payload is encoded, so a payload that refers to its own id finds the
// slot already present.
type Store struct {
	slots  []any
	filled []bool
}

// NewStore returns an empty store for encoding.
func NewStore() *Store {
	return &Store{}
}

// LoadStore wraps the referents of a decoded envelope. Every slot
// counts as filled.
func LoadStore(referents []any) *Store {
	filled := make([]bool, len(referents))
	for i := range filled {
		filled[i] = true
	}
	return &Store{slots: referents, filled: filled}
}

// Reserve appends an empty slot and returns its id.
func (s *Store) Reserve() value.RefID {
	s.slots = append(s.slots, nil)
	s.filled = append(s.filled, false)
	return value.RefID(len(s.slots) - 1)
}

// Fill writes the payload for a reserved slot. Each slot is written
// exactly once.
func (s *Store) Fill(id value.RefID, payload any) error {
	if id >= value.RefID(len(s.slots)) {
		return fmt.Errorf("%w: fill of unreserved slot %d (store has %d)", ErrWriteConflict, id, len(s.slots))
	}
	if s.filled[id] {
		return fmt.Errorf("%w: slot %d already filled", ErrWriteConflict, id)
	}
	s.slots[id] = payload
	s.filled[id] = true
	return nil
}

// Get returns the payload in slot id.
func (s *Store) Get(id value.RefID) (any, error) {
	if id >= value.RefID(len(s.slots)) {
		return nil, &ReferenceError{ID: id, Len: len(s.slots)}
	}
	if !s.filled[id] {
		return nil, fmt.Errorf("%w: slot %d reserved but not filled", ErrWriteConflict, id)
	}
	return s.slots[id], nil
}

// Len returns the number of slots, filled or not.
func (s *Store) Len() int {
	return len(s.slots)
}

// Slots returns the payloads in id order. It fails if any reserved slot
// was never filled.
func (s *Store) Slots() ([]any, error) {
	for id, filled := range s.filled {
		if !filled {
			return nil, fmt.Errorf("%w: slot %d reserved but never filled", ErrWriteConflict, id)
		}
	}
	slots := make([]any, len(s.slots))
	copy(slots, s.slots)
	return slots, nil
}
