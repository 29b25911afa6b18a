// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/bureau-foundation/sharegraph/lib/value"
)

// decodeSession is the state of one Decode call.
type decodeSession struct {
	cache  *Cache
	values value.Decoder
	logger *slog.Logger
}

// Decode fills the value target points at from envelope. target must
// be a non-nil pointer. The envelope is checked for dangling references
// before any object is built, the root is decoded into a fresh value,
// and *target is assigned only if the whole decode succeeds.
//
// A token met at an any-typed site yields the handle already
// materialized for its id, whatever its type. A first sighting
// materializes as Ref[any], whose payload is decoded generically.
func Decode(envelope *Envelope, target any, options Options) error {
	pointer := reflect.ValueOf(target)
	if pointer.Kind() != reflect.Pointer || pointer.IsNil() {
		return fmt.Errorf("decode target must be a non-nil pointer, got %T", target)
	}
	if envelope == nil {
		return errors.New("decode of nil envelope")
	}
	if _, err := Check(envelope); err != nil {
		return err
	}

	session := &decodeSession{logger: options.logger()}
	session.values = value.Decoder{Hook: session, MaxDepth: options.MaxDepth}
	session.cache = NewCache(LoadStore(envelope.Referents), session.values.DecodeValue, session.logger)

	fresh := reflect.New(pointer.Elem().Type()).Elem()
	if err := session.values.DecodeValue(envelope.Root, fresh); err != nil {
		return err
	}
	if err := session.cache.Finish(); err != nil {
		return err
	}

	stats := session.cache.Stats()
	session.logger.Debug("graph decoded",
		"referents", len(envelope.Referents),
		"materialized", stats.Entries,
		"pending_aliases", stats.PendingAliases,
	)

	pointer.Elem().Set(fresh)
	return nil
}

// DecodeHandle implements value.DecodeHook. A handle site holds either
// null or a RefToken; an inline payload there is a schema mismatch.
func (s *decodeSession) DecodeHandle(tree any, slot value.HandleSlot) error {
	if tree == nil {
		slot.ResetHandle()
		return nil
	}
	token, ok := tree.(value.RefToken)
	if !ok {
		return &value.TypeError{
			Type: slot.HandleType(),
			Got:  value.Describe(tree),
			Err:  errors.New("shared handle site must hold a reference token"),
		}
	}
	return s.cache.GetOrMaterialize(token.ID, slot)
}

// DecodeDynamic implements value.DecodeHook. An id already in the cache
// yields a handle of its cell's type, which any accepts; only a first
// sighting allocates a Ref[any].
func (s *decodeSession) DecodeDynamic(token value.RefToken) (any, error) {
	if handle, ok := s.cache.Handle(token.ID); ok {
		return handle, nil
	}
	var ref Ref[any]
	if err := s.cache.GetOrMaterialize(token.ID, &ref); err != nil {
		return nil, err
	}
	return ref, nil
}
