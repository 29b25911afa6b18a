// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package archive stores a graph envelope as a self-describing,
// integrity-checked file.
//
// An archive is a fixed 56-byte header followed by the stored payload:
//
//	offset  size  field
//	0       4     magic "SGRF"
//	4       1     version (1)
//	5       1     codec format ID (1 CBOR, 2 JSON, 3 YAML)
//	6       1     compression tag (0 none, 1 LZ4 block, 2 zstd)
//	7       1     reserved, zero
//	8       8     uncompressed payload length, little-endian
//	16      8     stored payload length, little-endian
//	24      32    BLAKE3 keyed digest of the uncompressed payload
//	56      ...   stored payload
//
// The digest uses a fixed domain key, so a payload digest never
// collides with a BLAKE3 hash computed for another purpose. Read
// verifies it after decompression and reports a mismatch as
// ErrCorrupt; a file that does not start with the magic is
// ErrNotArchive.
package archive
