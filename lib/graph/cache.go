// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"fmt"
	"log/slog"
	"maps"
	"reflect"
	"slices"

	"github.com/bureau-foundation/sharegraph/lib/value"
)

// State is the lifecycle stage of a cache entry.
type State int

const (
	// Absent means the id has not been requested yet.
	Absent State = iota

	// Placeholder means the object's cell exists and its payload is
	// being decoded further up the call chain.
	Placeholder

	// Resolved means the payload decode finished. Objects it points
	// at may still be placeholders of an enclosing decode.
	Resolved

	// Finished means the whole decode call completed.
	Finished
)

func (s State) String() string {
	switch s {
	case Absent:
		return "absent"
	case Placeholder:
		return "placeholder"
	case Resolved:
		return "resolved"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// DecodeFunc decodes an encoded payload into a settable target.
type DecodeFunc func(payload any, target reflect.Value) error

type cacheEntry struct {
	// cell is the type-erased *cell[T] shared by every alias.
	cell  any
	state State

	// pendingAliases counts handles bound while the entry was still a
	// placeholder.
	pendingAliases int
}

// Cache is the deferred object cache for one decode call. It maps
// reference ids to shared cells, materializing each object the first
// time its id is requested. Entries only ever advance through
// Placeholder, Resolved and Finished; none is removed.
type Cache struct {
	store   *Store
	decode  DecodeFunc
	entries map[value.RefID]*cacheEntry
	logger  *slog.Logger
}

// CacheStats summarizes a cache.
type CacheStats struct {
	Entries        int
	Placeholders   int
	PendingAliases int
}

// NewCache returns a cache that reads payloads from store and decodes
// them with decode. logger may be nil.
func NewCache(store *Store, decode DecodeFunc, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cache{
		store:   store,
		decode:  decode,
		entries: make(map[value.RefID]*cacheEntry),
		logger:  logger,
	}
}

// GetOrMaterialize binds slot to the object with the given id.
//
// A known id binds to the existing cell, even while its payload is
// still being decoded higher up the call chain; the cell is filled in
// place, so the binding becomes valid when that decode completes. An
// unknown id gets a new placeholder cell, the slot is bound to it, and
// the payload is decoded into it. A cell created for a different
// payload type than the slot expects is a type mismatch.
func (c *Cache) GetOrMaterialize(id value.RefID, slot value.HandleSlot) error {
	if entry, ok := c.entries[id]; ok {
		if err := slot.BindHandle(entry.cell); err != nil {
			return fmt.Errorf("referent %d: %w", id, err)
		}
		if entry.state == Placeholder {
			entry.pendingAliases++
		}
		return nil
	}

	payload, err := c.store.Get(id)
	if err != nil {
		return err
	}

	cell, target := slot.NewHandleCell()
	entry := &cacheEntry{cell: cell, state: Placeholder}
	c.entries[id] = entry
	if err := slot.BindHandle(cell); err != nil {
		return fmt.Errorf("referent %d: %w", id, err)
	}

	if err := c.decode(payload, target); err != nil {
		return fmt.Errorf("referent %d: %w", id, err)
	}

	entry.state = Resolved
	if entry.pendingAliases > 0 {
		c.logger.Debug("referent resolved with pending aliases",
			"id", id,
			"type", slot.HandleType().String(),
			"pending_aliases", entry.pendingAliases,
		)
	}
	return nil
}

// Handle returns a Ref of the cell's own payload type for an id that
// has already been materialized, and false for an id that has not.
func (c *Cache) Handle(id value.RefID) (any, bool) {
	entry, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	if entry.state == Placeholder {
		entry.pendingAliases++
	}
	return entry.cell.(typedCell).handle(), true
}

// State returns the stage of the entry for id.
func (c *Cache) State(id value.RefID) State {
	entry, ok := c.entries[id]
	if !ok {
		return Absent
	}
	return entry.state
}

// Finish marks every entry Finished. It is called once the root decode
// has completed, when no placeholder can remain. Ids are checked in
// ascending order, so the error names the lowest stuck id, and nothing
// is marked when one is found.
func (c *Cache) Finish() error {
	ids := slices.Sorted(maps.Keys(c.entries))
	for _, id := range ids {
		if c.entries[id].state == Placeholder {
			return fmt.Errorf("referent %d still a placeholder after decode", id)
		}
	}
	for _, id := range ids {
		c.entries[id].state = Finished
	}
	return nil
}

// Stats summarizes the cache.
func (c *Cache) Stats() CacheStats {
	stats := CacheStats{Entries: len(c.entries)}
	for _, entry := range c.entries {
		if entry.state == Placeholder {
			stats.Placeholders++
		}
		stats.PendingAliases += entry.pendingAliases
	}
	return stats
}
