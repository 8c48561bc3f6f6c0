package core

import (
	"sort"

	"github.com/omendb/omendb/pkg/index"
	"github.com/omendb/omendb/pkg/quantization"
)

// bufferSlot records which id occupies a contiguous slot of the buffer's
// flat vector arena.
type bufferSlot struct {
	id string
}

// VectorBuffer is the fixed-capacity, append-only write-ahead store spec
// §4.2 describes: O(1) append, linear-scan top-k, O(n) compaction on
// delete. Slots [0, size) are always contiguous; there are never gaps.
type VectorBuffer struct {
	dim      int
	capacity int
	codec    quantization.Codec

	// vectors holds the raw float32 form of every buffered vector when the
	// codec is None, flattened: slot i occupies vectors[i*dim : (i+1)*dim].
	// Nil when a codec is active; get_vector/search then decode encoded.
	vectors []float32
	// encoded holds the codec-encoded payload per slot, when a codec other
	// than None is active. Nil when unquantized.
	encoded [][]byte

	slots []bufferSlot
	index map[string]int // id -> slot, mirrors IdMap for O(1) membership
}

// NewVectorBuffer allocates a buffer of the given capacity and dimension.
func NewVectorBuffer(capacity, dim int, codec quantization.Codec) *VectorBuffer {
	b := &VectorBuffer{
		dim:      dim,
		capacity: capacity,
		codec:    codec,
		index:    make(map[string]int, capacity),
	}
	if codec == nil || codec.Mode() == quantization.ModeNone {
		b.vectors = make([]float32, 0, capacity*dim)
	} else {
		b.encoded = make([][]byte, 0, capacity)
	}
	return b
}

// Size returns the number of occupied slots.
func (b *VectorBuffer) Size() int { return len(b.slots) }

// IsFull reports whether the buffer has reached capacity.
func (b *VectorBuffer) IsFull() bool { return len(b.slots) >= b.capacity }

// Capacity returns the buffer's fixed capacity.
func (b *VectorBuffer) Capacity() int { return b.capacity }

// Contains reports whether id currently occupies a slot.
func (b *VectorBuffer) Contains(id string) bool {
	_, ok := b.index[id]
	return ok
}

// AddBatch appends as many (id, vector) pairs as fit before the buffer
// fills, returning the count actually added. Dimension validation is the
// caller's responsibility (the coordinator validates before routing here).
func (b *VectorBuffer) AddBatch(ids []string, vecs [][]float32) int {
	added := 0
	for i, id := range ids {
		if b.IsFull() {
			break
		}
		if _, exists := b.index[id]; exists {
			continue
		}
		b.appendSlot(id, vecs[i])
		added++
	}
	return added
}

func (b *VectorBuffer) appendSlot(id string, vec []float32) {
	slot := len(b.slots)
	b.slots = append(b.slots, bufferSlot{id: id})
	b.index[id] = slot

	if b.vectors != nil {
		b.vectors = append(b.vectors, vec...)
	} else {
		enc, err := b.codec.Encode(vec)
		if err != nil {
			// The codecs fail to encode only on a dimension mismatch, which
			// the coordinator rules out by validating dimension before
			// routing here. A failed slot stores nil and decodes to nil.
			enc = nil
		}
		b.encoded = append(b.encoded, enc)
	}
}

// GetVectorByID returns the (dequantized) vector for id, or (nil, false).
func (b *VectorBuffer) GetVectorByID(id string) ([]float32, bool) {
	slot, ok := b.index[id]
	if !ok {
		return nil, false
	}
	return b.vectorAt(slot), true
}

func (b *VectorBuffer) vectorAt(slot int) []float32 {
	if b.vectors != nil {
		out := make([]float32, b.dim)
		copy(out, b.vectors[slot*b.dim:(slot+1)*b.dim])
		return out
	}
	vec, err := b.codec.Decode(b.encoded[slot])
	if err != nil {
		return nil
	}
	return vec
}

// Delete removes id, compacting the slot array so indices stay contiguous
// (spec §4.2 invariant). Returns whether id was present.
func (b *VectorBuffer) Delete(id string) bool {
	slot, ok := b.index[id]
	if !ok {
		return false
	}
	last := len(b.slots) - 1

	if slot != last {
		b.slots[slot] = b.slots[last]
		b.index[b.slots[slot].id] = slot
		if b.vectors != nil {
			copy(b.vectors[slot*b.dim:(slot+1)*b.dim], b.vectors[last*b.dim:(last+1)*b.dim])
		} else {
			b.encoded[slot] = b.encoded[last]
		}
	}

	b.slots = b.slots[:last]
	if b.vectors != nil {
		b.vectors = b.vectors[:last*b.dim]
	} else {
		b.encoded = b.encoded[:last]
	}
	delete(b.index, id)
	return true
}

// Clear empties the buffer, releasing its arenas back to zero length.
func (b *VectorBuffer) Clear() {
	b.slots = b.slots[:0]
	if b.vectors != nil {
		b.vectors = b.vectors[:0]
	} else {
		b.encoded = b.encoded[:0]
	}
	b.index = make(map[string]int, b.capacity)
}

// scanResult is a single linear-scan candidate.
type scanResult struct {
	id   string
	dist float32
}

// SearchLinear performs a brute-force scan over every buffered vector and
// returns the k closest by cosine distance, ascending.
func (b *VectorBuffer) SearchLinear(query []float32, k int) []scanResult {
	if k <= 0 || len(b.slots) == 0 {
		return nil
	}

	results := make([]scanResult, 0, len(b.slots))
	for slot, s := range b.slots {
		vec := b.vectorAt(slot)
		if vec == nil {
			continue
		}
		results = append(results, scanResult{id: s.id, dist: index.CosineDistance(query, vec)})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].dist < results[j].dist })
	if len(results) > k {
		results = results[:k]
	}
	return results
}

// Each calls fn for every (id, vector) pair currently buffered, in slot
// order. Used by flush to bulk-load the graph.
func (b *VectorBuffer) Each(fn func(id string, vec []float32)) {
	for slot, s := range b.slots {
		fn(s.id, b.vectorAt(slot))
	}
}

// Ids returns the ids currently buffered, in slot order.
func (b *VectorBuffer) Ids() []string {
	ids := make([]string, len(b.slots))
	for i, s := range b.slots {
		ids[i] = s.id
	}
	return ids
}

// BytesUsed approximates the buffer's live memory footprint for Stats().
func (b *VectorBuffer) BytesUsed() int64 {
	if b.vectors != nil {
		return int64(len(b.vectors)) * 4
	}
	var n int64
	for _, e := range b.encoded {
		n += int64(len(e))
	}
	return n
}
