// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package graph

import "github.com/bureau-foundation/sharegraph/lib/value"

// Registry assigns reference ids to handle identities during one
// encode call. Identities are compared with ==, which for the cell
// pointers Ref hands out means allocation identity: two cells holding
// equal values still get distinct ids. Entries are never removed.
type Registry struct {
	ids map[any]value.RefID
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ids: make(map[any]value.RefID)}
}

// Resolve returns the id for identity. isNew is true the first time an
// identity is seen; the caller must then encode the payload into the
// referent slot with that id. Ids are assigned sequentially from 0.
func (r *Registry) Resolve(identity any) (id value.RefID, isNew bool) {
	if identity == nil {
		panic("graph: Resolve called with nil identity")
	}
	if id, ok := r.ids[identity]; ok {
		return id, false
	}
	id = value.RefID(len(r.ids))
	r.ids[identity] = id
	return id, true
}

// Len returns the number of distinct identities seen.
func (r *Registry) Len() int {
	return len(r.ids)
}
