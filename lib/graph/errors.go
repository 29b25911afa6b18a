// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/sharegraph/lib/value"
)

var (
	// ErrDanglingReference is matched by errors for reference ids that
	// have no slot in the referent table.
	ErrDanglingReference = errors.New("dangling reference")

	// ErrTypeMismatch is matched by errors for objects or payloads that
	// do not fit the type expected at their use site.
	ErrTypeMismatch = value.ErrTypeMismatch

	// ErrWriteConflict is matched by errors for a referent slot written
	// twice, or reserved and never written. It indicates a bug in the
	// encoder rather than bad input.
	ErrWriteConflict = errors.New("referent slot write conflict")
)

// ReferenceError reports a reference id outside the referent table.
type ReferenceError struct {
	ID  value.RefID
	Len int
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("dangling reference: id %d, referent table has %d slots", e.ID, e.Len)
}

// Is makes every ReferenceError match ErrDanglingReference.
func (e *ReferenceError) Is(target error) bool {
	return target == ErrDanglingReference
}
