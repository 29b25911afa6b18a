// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionTag is the header byte naming how a payload is stored.
// The numeric values are part of the archive format.
type CompressionTag uint8

const (
	CompressionNone CompressionTag = 0

	// CompressionLZ4 is an LZ4 block: fast, modest ratio. Suits CBOR.
	CompressionLZ4 CompressionTag = 1

	// CompressionZstd is zstd at the default level. The text formats,
	// whose keys repeat on every referent, compress best with it.
	CompressionZstd CompressionTag = 2

	// CompressionAuto asks Write to choose with SelectCompression. It
	// never appears in a header.
	CompressionAuto CompressionTag = 0xff
)

// compressor is one stored payload encoding.
type compressor struct {
	name       string
	compress   func(data []byte) ([]byte, error)
	decompress func(stored []byte, size int) ([]byte, error)
}

var compressors = map[CompressionTag]compressor{
	CompressionNone: {name: "none", compress: storeRaw, decompress: loadRaw},
	CompressionLZ4:  {name: "lz4", compress: compressLZ4, decompress: decompressLZ4},
	CompressionZstd: {name: "zstd", compress: compressZstd, decompress: decompressZstd},
}

func (tag CompressionTag) String() string {
	if tag == CompressionAuto {
		return "auto"
	}
	if entry, ok := compressors[tag]; ok {
		return entry.name
	}
	return fmt.Sprintf("unknown(%d)", uint8(tag))
}

// ParseCompressionTag is the inverse of String. It accepts "auto".
func ParseCompressionTag(name string) (CompressionTag, error) {
	if name == "auto" {
		return CompressionAuto, nil
	}
	for tag, entry := range compressors {
		if entry.name == name {
			return tag, nil
		}
	}
	return 0, fmt.Errorf("unknown compression tag: %q (known: none, lz4, zstd, auto)", name)
}

// Compress encodes data with tag. CompressionNone returns data itself.
// Output that would not be smaller than data fails with an error
// matched by IsIncompressible.
func Compress(data []byte, tag CompressionTag) ([]byte, error) {
	entry, ok := compressors[tag]
	if !ok {
		return nil, fmt.Errorf("cannot compress with tag %s", tag)
	}
	return entry.compress(data)
}

// Decompress reverses Compress. The result must be exactly size bytes.
func Decompress(stored []byte, tag CompressionTag, size int) ([]byte, error) {
	entry, ok := compressors[tag]
	if !ok {
		return nil, fmt.Errorf("cannot decompress tag %s", tag)
	}
	payload, err := entry.decompress(stored, size)
	if err != nil {
		return nil, fmt.Errorf("%s payload: %w", entry.name, err)
	}
	if len(payload) != size {
		return nil, fmt.Errorf("%s payload: %d bytes, header says %d", entry.name, len(payload), size)
	}
	return payload, nil
}

func storeRaw(data []byte) ([]byte, error) { return data, nil }

func loadRaw(stored []byte, _ int) ([]byte, error) { return stored, nil }

func compressLZ4(data []byte) ([]byte, error) {
	block := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, block, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	// Zero means lz4 gave up on the input.
	if n == 0 || n >= len(data) {
		return nil, errIncompressible
	}
	return block[:n], nil
}

func decompressLZ4(stored []byte, size int) ([]byte, error) {
	payload := make([]byte, size)
	n, err := lz4.UncompressBlock(stored, payload)
	if err != nil {
		return nil, err
	}
	return payload[:n], nil
}

// The zstd coders are shared; both are safe for concurrent use.
var (
	zstdEncoder = newZstdEncoder()
	zstdDecoder = newZstdDecoder()
)

func newZstdEncoder() *zstd.Encoder {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("archive: zstd encoder: " + err.Error())
	}
	return encoder
}

func newZstdDecoder() *zstd.Decoder {
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxPayloadSize))
	if err != nil {
		panic("archive: zstd decoder: " + err.Error())
	}
	return decoder
}

func compressZstd(data []byte) ([]byte, error) {
	compressed := zstdEncoder.EncodeAll(data, nil)
	if len(compressed) >= len(data) {
		return nil, errIncompressible
	}
	return compressed, nil
}

func decompressZstd(stored []byte, size int) ([]byte, error) {
	return zstdDecoder.DecodeAll(stored, make([]byte, 0, size))
}

var errIncompressible = errors.New("payload does not shrink")

// IsIncompressible reports whether err means compression would not
// have made the data smaller.
func IsIncompressible(err error) bool {
	return errors.Is(err, errIncompressible)
}

// SelectCompression chooses a tag for a payload. Text payloads get
// zstd. Binary payloads are trial-compressed with zstd and get zstd at
// a ratio of 1.5 or better, LZ4 at 1.1 or better, and none below that.
func SelectCompression(data []byte, binary bool) CompressionTag {
	switch {
	case len(data) == 0:
		return CompressionNone
	case !binary:
		return CompressionZstd
	}

	ratio := float64(len(data)) / float64(len(zstdEncoder.EncodeAll(data, nil)))
	switch {
	case ratio >= 1.5:
		return CompressionZstd
	case ratio >= 1.1:
		return CompressionLZ4
	default:
		return CompressionNone
	}
}
