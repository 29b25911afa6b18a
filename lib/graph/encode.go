// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/sharegraph/lib/value"
)

// encodeSession is the state of one Encode call.
type encodeSession struct {
	registry *Registry
	store    *Store
	values   value.Encoder
	logger   *slog.Logger

	// occurrences counts every non-nil handle met, first or repeat.
	occurrences int
}

// Encode converts root into an Envelope. Every shared handle reachable
// from root is encoded once into the referent table; every occurrence,
// including the first, is replaced by a RefToken. On error no envelope
// is returned.
func Encode(root any, options Options) (*Envelope, error) {
	session := &encodeSession{
		registry: NewRegistry(),
		store:    NewStore(),
		logger:   options.logger(),
	}
	session.values = value.Encoder{Hook: session, MaxDepth: options.MaxDepth}

	tree, err := session.values.Encode(root)
	if err != nil {
		return nil, err
	}
	referents, err := session.store.Slots()
	if err != nil {
		return nil, err
	}

	session.logger.Debug("graph encoded",
		"referents", len(referents),
		"handle_occurrences", session.occurrences,
	)
	return &Envelope{Root: tree, Referents: referents}, nil
}

// EncodeHandle implements value.EncodeHook.
func (s *encodeSession) EncodeHandle(handle value.Handle) (any, error) {
	identity := handle.HandleIdentity()
	if identity == nil {
		return nil, nil
	}
	s.occurrences++

	id, isNew := s.registry.Resolve(identity)
	if !isNew {
		return value.RefToken{ID: id}, nil
	}

	if slot := s.store.Reserve(); slot != id {
		return nil, fmt.Errorf("%w: registry assigned id %d but store reserved slot %d", ErrWriteConflict, id, slot)
	}
	s.logger.Debug("encoding referent", "id", id, "type", handle.HandlePayload().Type().String())

	payload, err := s.values.EncodeValue(handle.HandlePayload())
	if err != nil {
		return nil, fmt.Errorf("referent %d: %w", id, err)
	}
	if err := s.store.Fill(id, payload); err != nil {
		return nil, err
	}
	return value.RefToken{ID: id}, nil
}
