package core

import "github.com/omendb/omendb/internal/encoding"

// MetadataMap is the sparse `id -> Metadata` map every VectorStore owns.
// Metadata is stored as an ordered, deduplicated key/value list (spec §3);
// the public API accepts and returns plain maps for convenience.
type MetadataMap struct {
	entries map[string][]encoding.KV
}

// NewMetadataMap returns an empty MetadataMap.
func NewMetadataMap() *MetadataMap {
	return &MetadataMap{entries: make(map[string][]encoding.KV)}
}

// Set stores m as id's metadata, replacing any previous value (spec P5:
// "the last metadata set for id"). A nil or empty map clears the entry.
func (mm *MetadataMap) Set(id string, m map[string]string) {
	if len(m) == 0 {
		delete(mm.entries, id)
		return
	}
	mm.entries[id] = encoding.MapToPairs(m)
}

// Get returns id's metadata map, or (nil, false) if none is set.
func (mm *MetadataMap) Get(id string) (map[string]string, bool) {
	pairs, ok := mm.entries[id]
	if !ok {
		return nil, false
	}
	return encoding.PairsToMap(pairs), true
}

// Delete removes id's metadata entry.
func (mm *MetadataMap) Delete(id string) {
	delete(mm.entries, id)
}

// Clear empties the map.
func (mm *MetadataMap) Clear() {
	mm.entries = make(map[string][]encoding.KV)
}

// Matches reports whether id's metadata satisfies every key/value pair in
// filter (spec P9: filter soundness — every returned id must satisfy all
// predicates). A missing metadata entry never matches a non-empty filter.
func (mm *MetadataMap) Matches(id string, filter map[string]string) bool {
	if len(filter) == 0 {
		return true
	}
	pairs, ok := mm.entries[id]
	if !ok {
		return false
	}
	m := encoding.PairsToMap(pairs)
	for k, v := range filter {
		if m[k] != v {
			return false
		}
	}
	return true
}
