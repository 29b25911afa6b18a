// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package graph encodes Go object graphs that contain shared and cyclic
// ownership, and decodes them back with the same sharing topology.
//
// Shared ownership is expressed with [Ref], a handle to a shared cell.
// Copies of a Ref alias the same cell; [Ref.Same] compares identity,
// never payload. Everything that is not a Ref is encoded by value
// through lib/value, exactly as it would be without this package.
//
// [Encode] produces an [Envelope]: the encoded root, in which every Ref
// site is replaced by a [value.RefToken], and a referent table holding
// the encoded payload of each distinct shared object, indexed by
// reference id. Ids are assigned 0, 1, 2, ... in the pre-order,
// depth-first order in which handles are first met (map keys are
// visited sorted), so encoding the same graph twice assigns the same
// ids. A payload is encoded only on first sight; later sightings emit
// just the token, which is what terminates cycles.
//
// [Decode] walks the root and resolves tokens through a deferred object
// cache. The first request for an id allocates the object's cell,
// records it as a placeholder and decodes the payload into it; any
// request for the same id made while that decode is still running (a
// cycle) binds to the same placeholder cell. Because every alias shares
// the cell, completing the decode completes every alias in place. If
// anything fails, the caller's target is left untouched.
//
//	type Node struct {
//	    Name string
//	    Next graph.Ref[Node]
//	}
//
//	a := graph.New(Node{Name: "a"})
//	a.Get().Next = a
//
//	envelope, err := graph.Encode(a, graph.Options{})
//	...
//	var decoded graph.Ref[Node]
//	err = graph.Decode(envelope, &decoded, graph.Options{})
//	// decoded.Get().Next.Same(decoded) == true
//
// Fields of type any carry no payload type. A token met there binds to
// the handle already decoded for its id, typed or not. An id first met
// at an any site is decoded as Ref[any], and a typed site reached later
// for the same id fails with [ErrTypeMismatch]: the encoded form has no
// type tags to recover the intended type from.
//
// Each Encode and Decode call owns its own [Registry], [Store] and
// [Cache]. Nothing is shared between calls, so independent calls may
// run concurrently.
//
// Recursion depth is bounded by the longest chain of first occurrences
// plus the plain nesting inside payloads, and capped by
// [Options.MaxDepth]. Plain Go pointers are not identity tracked; a
// cycle that runs only through plain pointers fails with
// value.ErrDepthExceeded.
package graph
