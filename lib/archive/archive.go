// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/bureau-foundation/sharegraph/lib/codec"
	"github.com/bureau-foundation/sharegraph/lib/graph"
)

const (
	// Version is the archive format version this package writes and
	// reads.
	Version = 1

	// HeaderSize is the fixed header length: 4-byte magic, version,
	// format ID, compression tag, one reserved byte, 8-byte
	// uncompressed length, 8-byte stored length and 32-byte digest.
	HeaderSize = 56

	// MaxPayloadSize bounds the uncompressed and stored payload
	// lengths a header may declare.
	MaxPayloadSize = 1 << 30
)

var magic = [4]byte{'S', 'G', 'R', 'F'}

var (
	// ErrNotArchive is returned for data that does not start with the
	// archive magic.
	ErrNotArchive = errors.New("not a sharegraph archive")

	// ErrCorrupt is matched by errors for archives whose header or
	// payload is damaged: truncation, impossible lengths, failed
	// decompression, or a digest mismatch.
	ErrCorrupt = errors.New("corrupt archive")
)

// Header describes an archive payload.
type Header struct {
	Version     uint8
	Format      codec.Format
	Compression CompressionTag

	// Length is the uncompressed payload length.
	Length uint64

	// StoredLength is the payload length as written after the header.
	StoredLength uint64

	// Digest is the payload-domain digest of the uncompressed payload.
	Digest Digest
}

func (h Header) marshal() []byte {
	buffer := make([]byte, HeaderSize)
	copy(buffer[0:4], magic[:])
	buffer[4] = h.Version
	buffer[5] = h.Format.ID()
	buffer[6] = uint8(h.Compression)
	binary.LittleEndian.PutUint64(buffer[8:16], h.Length)
	binary.LittleEndian.PutUint64(buffer[16:24], h.StoredLength)
	copy(buffer[24:56], h.Digest[:])
	return buffer
}

// IsArchive reports whether data starts with the archive magic.
func IsArchive(data []byte) bool {
	return len(data) >= len(magic) && bytes.Equal(data[:len(magic)], magic[:])
}

// Write serializes envelope in format, compresses it and writes the
// archive to w. CompressionAuto picks a tag with SelectCompression; a
// payload that does not shrink is stored uncompressed.
func Write(w io.Writer, format codec.Format, envelope *graph.Envelope, compression CompressionTag) (Header, error) {
	payload, err := format.MarshalEnvelope(envelope)
	if err != nil {
		return Header{}, fmt.Errorf("marshaling %s payload: %w", format.Name(), err)
	}
	if len(payload) > MaxPayloadSize {
		return Header{}, fmt.Errorf("payload of %d bytes exceeds the %d byte limit", len(payload), MaxPayloadSize)
	}

	if compression == CompressionAuto {
		compression = SelectCompression(payload, format.Binary())
	}
	stored, err := Compress(payload, compression)
	if IsIncompressible(err) {
		stored, compression, err = payload, CompressionNone, nil
	}
	if err != nil {
		return Header{}, err
	}

	header := Header{
		Version:      Version,
		Format:       format,
		Compression:  compression,
		Length:       uint64(len(payload)),
		StoredLength: uint64(len(stored)),
		Digest:       DigestPayload(payload),
	}
	if _, err := w.Write(header.marshal()); err != nil {
		return Header{}, fmt.Errorf("writing archive header: %w", err)
	}
	if _, err := w.Write(stored); err != nil {
		return Header{}, fmt.Errorf("writing archive payload: %w", err)
	}
	return header, nil
}

// ReadHeader reads and validates the archive header from r, leaving r
// positioned at the payload.
func ReadHeader(r io.Reader) (Header, error) {
	var buffer [HeaderSize]byte
	read, err := io.ReadFull(r, buffer[:])
	if err != nil {
		if read < len(magic) || !IsArchive(buffer[:read]) {
			return Header{}, ErrNotArchive
		}
		return Header{}, fmt.Errorf("%w: header truncated at %d of %d bytes", ErrCorrupt, read, HeaderSize)
	}
	if !IsArchive(buffer[:]) {
		return Header{}, ErrNotArchive
	}

	header := Header{
		Version:      buffer[4],
		Compression:  CompressionTag(buffer[6]),
		Length:       binary.LittleEndian.Uint64(buffer[8:16]),
		StoredLength: binary.LittleEndian.Uint64(buffer[16:24]),
	}
	copy(header.Digest[:], buffer[24:56])

	if header.Version != Version {
		return Header{}, fmt.Errorf("unsupported archive version %d (want %d)", header.Version, Version)
	}
	if header.Format, err = codec.ByID(buffer[5]); err != nil {
		return Header{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if _, ok := compressors[header.Compression]; !ok {
		return Header{}, fmt.Errorf("%w: compression tag %d", ErrCorrupt, buffer[6])
	}
	if header.Length > MaxPayloadSize || header.StoredLength > MaxPayloadSize {
		return Header{}, fmt.Errorf("%w: declared payload of %d bytes (%d stored) exceeds the %d byte limit",
			ErrCorrupt, header.Length, header.StoredLength, MaxPayloadSize)
	}
	return header, nil
}

// Read reads a whole archive from r, verifies the payload digest and
// parses the envelope.
func Read(r io.Reader) (*graph.Envelope, Header, error) {
	header, err := ReadHeader(r)
	if err != nil {
		return nil, Header{}, err
	}

	stored := make([]byte, header.StoredLength)
	if _, err := io.ReadFull(r, stored); err != nil {
		return nil, header, fmt.Errorf("%w: payload truncated: %w", ErrCorrupt, err)
	}
	payload, err := Decompress(stored, header.Compression, int(header.Length))
	if err != nil {
		return nil, header, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if digest := DigestPayload(payload); digest != header.Digest {
		return nil, header, fmt.Errorf("%w: payload digest %s does not match header digest %s",
			ErrCorrupt, digest, header.Digest)
	}

	envelope, err := header.Format.UnmarshalEnvelope(payload)
	if err != nil {
		return nil, header, fmt.Errorf("parsing %s payload: %w", header.Format.Name(), err)
	}
	return envelope, header, nil
}

// Marshal returns the archive bytes for envelope.
func Marshal(format codec.Format, envelope *graph.Envelope, compression CompressionTag) ([]byte, error) {
	var buffer bytes.Buffer
	if _, err := Write(&buffer, format, envelope, compression); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// Unmarshal parses archive bytes. Trailing data after the payload is
// an error.
func Unmarshal(data []byte) (*graph.Envelope, Header, error) {
	reader := bytes.NewReader(data)
	envelope, header, err := Read(reader)
	if err != nil {
		return nil, header, err
	}
	if reader.Len() != 0 {
		return nil, header, fmt.Errorf("%w: %d bytes after payload", ErrCorrupt, reader.Len())
	}
	return envelope, header, nil
}
