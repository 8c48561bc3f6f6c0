package encoding

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// KV is a single ordered metadata key/value pair.
type KV struct {
	Key   string
	Value string
}

// EncodeMetadata serializes an ordered list of key/value pairs as:
// 4-byte pair count, then for each pair a length-prefixed key and
// length-prefixed value. Keys within a list must be unique; callers enforce
// this (spec: "duplicates forbidden").
func EncodeMetadata(pairs []KV) ([]byte, error) {
	buf := &bytes.Buffer{}
	var countBuf [4]byte
	binary.LittleEndian.PutUint32(countBuf[:], uint32(len(pairs)))
	buf.Write(countBuf[:])

	for _, kv := range pairs {
		if err := WriteID(buf, kv.Key); err != nil {
			return nil, fmt.Errorf("encoding: metadata key: %w", err)
		}
		if err := WriteID(buf, kv.Value); err != nil {
			return nil, fmt.Errorf("encoding: metadata value: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// DecodeMetadata is the inverse of EncodeMetadata.
func DecodeMetadata(data []byte) ([]KV, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("encoding: truncated metadata count")
	}
	n := binary.LittleEndian.Uint32(data[0:4])
	rest := data[4:]

	pairs := make([]KV, 0, n)
	for i := uint32(0); i < n; i++ {
		key, r, err := ReadID(rest)
		if err != nil {
			return nil, fmt.Errorf("encoding: metadata key %d: %w", i, err)
		}
		rest = r
		val, r, err := ReadID(rest)
		if err != nil {
			return nil, fmt.Errorf("encoding: metadata value %d: %w", i, err)
		}
		rest = r
		pairs = append(pairs, KV{Key: key, Value: val})
	}
	return pairs, nil
}

// MapToPairs converts a map to a deterministically ordered KV list (sorted
// by key) so the on-disk representation is stable across runs.
func MapToPairs(m map[string]string) []KV {
	if len(m) == 0 {
		return nil
	}
	pairs := make([]KV, 0, len(m))
	for k, v := range m {
		pairs = append(pairs, KV{Key: k, Value: v})
	}
	for i := 1; i < len(pairs); i++ {
		for j := i; j > 0 && pairs[j-1].Key > pairs[j].Key; j-- {
			pairs[j-1], pairs[j] = pairs[j], pairs[j-1]
		}
	}
	return pairs
}

// PairsToMap converts a KV list back to a map.
func PairsToMap(pairs []KV) map[string]string {
	if len(pairs) == 0 {
		return nil
	}
	m := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		m[kv.Key] = kv.Value
	}
	return m
}
