// Package persistence implements the mmap snapshot checkpoint binding of
// spec §4.5: a crash-safe, WAL-free alternative to write-ahead logging,
// built on a hot/cold double buffer and atomic rename+fsync.
package persistence

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/omendb/omendb/internal/encoding"
	"github.com/omendb/omendb/pkg/core"
)

// Fixed compile-time header constants (spec §6: "bumping the version
// invalidates older files (no auto-migration in this version)").
const (
	magicVectors  uint32 = 0x4f4d4456 // "OMDV"
	magicMetadata uint32 = 0x4f4d444d // "OMDM"
	formatVersion uint32 = 1

	headerSize = 4 + 4 + 4 + 8 + 8 // magic, version, dimension, count, reserved
)

// header is the fixed preamble shared by the vectors and metadata
// segments (spec §4.5): magic(4B), version(4B), dimension(4B), count(8B),
// reserved(8B, implementation-defined and currently unused).
type header struct {
	Magic     uint32
	Version   uint32
	Dimension uint32
	Count     uint64
	Reserved  uint64
}

func (h header) encode() []byte {
	buf := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.Version)
	binary.LittleEndian.PutUint32(buf[8:12], h.Dimension)
	binary.LittleEndian.PutUint64(buf[12:20], h.Count)
	binary.LittleEndian.PutUint64(buf[20:28], h.Reserved)
	return buf
}

func decodeHeader(data []byte, wantMagic uint32) (header, []byte, error) {
	if len(data) < headerSize {
		return header{}, nil, fmt.Errorf("persistence: truncated header")
	}
	h := header{
		Magic:     binary.LittleEndian.Uint32(data[0:4]),
		Version:   binary.LittleEndian.Uint32(data[4:8]),
		Dimension: binary.LittleEndian.Uint32(data[8:12]),
		Count:     binary.LittleEndian.Uint64(data[12:20]),
		Reserved:  binary.LittleEndian.Uint64(data[20:28]),
	}
	if h.Magic != wantMagic {
		return header{}, nil, fmt.Errorf("persistence: bad magic %x, want %x", h.Magic, wantMagic)
	}
	if h.Version != formatVersion {
		return header{}, nil, fmt.Errorf("persistence: unsupported version %d", h.Version)
	}
	return h, data[headerSize:], nil
}

// encodeVectorsSegment writes the header followed by, for each entry, a
// length-prefixed id and its internal/encoding.EncodeVector encoding (spec
// §4.5 vectors layout). The per-vector 4-byte count prefix EncodeVector
// writes is redundant with the segment's own Dimension header field, but
// reusing the shared internal/encoding codec beats a second hand-rolled copy
// of the same loop.
func encodeVectorsSegment(dim int, entries []core.PersistedVector) []byte {
	var buf bytes.Buffer
	buf.Write(header{
		Magic:     magicVectors,
		Version:   formatVersion,
		Dimension: uint32(dim),
		Count:     uint64(len(entries)),
	}.encode())

	for _, e := range entries {
		_ = encoding.WriteID(&buf, e.ID)
		vecBytes, _ := encoding.EncodeVector(e.Vector)
		buf.Write(vecBytes)
	}
	return buf.Bytes()
}

// decodeVectorsSegment is the inverse of encodeVectorsSegment.
func decodeVectorsSegment(data []byte) (dim int, entries []core.PersistedVector, err error) {
	h, rest, err := decodeHeader(data, magicVectors)
	if err != nil {
		return 0, nil, err
	}
	dim = int(h.Dimension)

	entries = make([]core.PersistedVector, 0, h.Count)
	for i := uint64(0); i < h.Count; i++ {
		id, tail, err := encoding.ReadID(rest)
		if err != nil {
			return 0, nil, fmt.Errorf("persistence: vectors segment: %w", err)
		}
		vec, err := encoding.DecodeVector(tail)
		if err != nil {
			return 0, nil, fmt.Errorf("persistence: vectors segment: %w", err)
		}
		if len(vec) != dim {
			return 0, nil, fmt.Errorf("persistence: vectors segment: vector dimension %d, want %d", len(vec), dim)
		}
		entries = append(entries, core.PersistedVector{ID: id, Vector: vec})
		rest = tail[4+dim*4:]
	}
	return dim, entries, nil
}

// encodeMetadataSegment writes the header followed by, for each entry
// with non-empty metadata, a length-prefixed id and its ordered key/value
// table (spec §4.5: "sibling segment with the same header convention plus
// key/value string tables").
func encodeMetadataSegment(entries []core.PersistedVector) []byte {
	withMeta := make([]core.PersistedVector, 0, len(entries))
	for _, e := range entries {
		if len(e.Metadata) > 0 {
			withMeta = append(withMeta, e)
		}
	}

	var buf bytes.Buffer
	buf.Write(header{
		Magic:   magicMetadata,
		Version: formatVersion,
		Count:   uint64(len(withMeta)),
	}.encode())

	for _, e := range withMeta {
		_ = encoding.WriteID(&buf, e.ID)
		kv, _ := encoding.EncodeMetadata(encoding.MapToPairs(e.Metadata))
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(kv)))
		buf.Write(lenBuf[:])
		buf.Write(kv)
	}
	return buf.Bytes()
}

// decodeMetadataSegment is the inverse of encodeMetadataSegment, returning
// id -> metadata map.
func decodeMetadataSegment(data []byte) (map[string]map[string]string, error) {
	h, rest, err := decodeHeader(data, magicMetadata)
	if err != nil {
		return nil, err
	}

	out := make(map[string]map[string]string, h.Count)
	for i := uint64(0); i < h.Count; i++ {
		id, tail, err := encoding.ReadID(rest)
		if err != nil {
			return nil, fmt.Errorf("persistence: metadata segment: %w", err)
		}
		if len(tail) < 4 {
			return nil, fmt.Errorf("persistence: metadata segment: truncated kv length")
		}
		kvLen := binary.LittleEndian.Uint32(tail[0:4])
		tail = tail[4:]
		if uint32(len(tail)) < kvLen {
			return nil, fmt.Errorf("persistence: metadata segment: truncated kv body")
		}
		pairs, err := encoding.DecodeMetadata(tail[:kvLen])
		if err != nil {
			return nil, fmt.Errorf("persistence: metadata segment: %w", err)
		}
		out[id] = encoding.PairsToMap(pairs)
		rest = tail[kvLen:]
	}
	return out, nil
}
