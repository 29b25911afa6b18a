// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Digest is the 32-byte BLAKE3 keyed hash of an uncompressed archive
// payload.
type Digest [32]byte

// payloadDomainKey is the BLAKE3 key for payload digests: the ASCII
// domain name, zero-padded to 32 bytes. Changing it invalidates every
// existing archive.
var payloadDomainKey = [32]byte{
	's', 'h', 'a', 'r', 'e', 'g', 'r', 'a', 'p', 'h', '.', 'a', 'r', 'c', 'h', 'i',
	'v', 'e', '.', 'p', 'a', 'y', 'l', 'o', 'a', 'd', 0, 0, 0, 0, 0, 0,
}

// DigestPayload returns the payload-domain digest of data.
func DigestPayload(data []byte) Digest {
	hasher, err := blake3.NewKeyed(payloadDomainKey[:])
	if err != nil {
		panic("archive: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest
}

// String returns the digest as lowercase hex.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// ParseDigest parses a 64-character hex digest.
func ParseDigest(hexString string) (Digest, error) {
	var digest Digest
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return digest, fmt.Errorf("parsing archive digest: %w", err)
	}
	if len(decoded) != len(digest) {
		return digest, fmt.Errorf("archive digest is %d bytes, want %d", len(decoded), len(digest))
	}
	copy(digest[:], decoded)
	return digest, nil
}
