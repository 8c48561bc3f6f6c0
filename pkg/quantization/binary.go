package quantization

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// BinaryCodec implements 1-bit per-dimension quantization (spec §4.4):
// bit_i = 1 if v_i > mean(v) else 0, packed via bits-and-blooms/bitset.
// The teacher's BinaryQuantizer thresholds each dimension against a
// corpus-trained per-dimension mean; this codec has no training step, so
// it thresholds each vector against its own mean instead.
type BinaryCodec struct {
	dim int
}

// NewBinaryCodec returns a binary codec for the given dimension.
func NewBinaryCodec(dim int) *BinaryCodec { return &BinaryCodec{dim: dim} }

func (c *BinaryCodec) Mode() Mode     { return ModeBinary }
func (c *BinaryCodec) Dimension() int { return c.dim }

// Encode packs one bit per dimension (1 if above the vector's own mean).
func (c *BinaryCodec) Encode(vec []float32) ([]byte, error) {
	if len(vec) != c.dim {
		return nil, fmt.Errorf("quantization: binary encode: expected dim %d, got %d", c.dim, len(vec))
	}

	var sum float32
	for _, v := range vec {
		sum += v
	}
	mean := sum / float32(c.dim)

	bs := bitset.New(uint(c.dim))
	for i, v := range vec {
		if v > mean {
			bs.Set(uint(i))
		}
	}

	packed, err := bs.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("quantization: binary encode: %w", err)
	}
	return packed, nil
}

// Decode reconstructs a {-1, +1} approximation of the original vector from
// its bitset: bit set -> +1, bit clear -> -1. This loses magnitude
// information entirely, which is the expected tradeoff of binary
// quantization (spec §4.4); Distance below uses Hamming distance directly
// rather than round-tripping through Decode for accuracy.
func (c *BinaryCodec) Decode(encoded []byte) ([]float32, error) {
	bs := &bitset.BitSet{}
	if err := bs.UnmarshalBinary(encoded); err != nil {
		return nil, fmt.Errorf("quantization: binary decode: %w", err)
	}

	vec := make([]float32, c.dim)
	for i := 0; i < c.dim; i++ {
		if bs.Test(uint(i)) {
			vec[i] = 1
		} else {
			vec[i] = -1
		}
	}
	return vec, nil
}

// Distance quantizes query with the same per-vector mean rule and returns
// the normalized Hamming distance between the two bit patterns, scaled to
// the same [0, 2] range CosineDistance produces so callers can compare
// candidates consistently regardless of codec.
func (c *BinaryCodec) Distance(query []float32, encoded []byte) float32 {
	qEncoded, err := c.Encode(query)
	if err != nil {
		return 1
	}

	qbs := &bitset.BitSet{}
	sbs := &bitset.BitSet{}
	if err := qbs.UnmarshalBinary(qEncoded); err != nil {
		return 1
	}
	if err := sbs.UnmarshalBinary(encoded); err != nil {
		return 1
	}

	xor := qbs.SymmetricDifference(sbs)
	hamming := xor.Count()
	return 2 * float32(hamming) / float32(c.dim)
}
