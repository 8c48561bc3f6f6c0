package quantization

import (
	"encoding/binary"
	"math"

	"github.com/chewxy/math32"
)

// Float32SliceToBytes little-endian encodes vec with no length prefix (the
// dimension is known from context/the codec).
func Float32SliceToBytes(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(v))
	}
	return buf
}

// BytesToFloat32Slice is the inverse of Float32SliceToBytes, reading dim
// components.
func BytesToFloat32Slice(data []byte, dim int) []float32 {
	vec := make([]float32, dim)
	for i := 0; i < dim && (i+1)*4 <= len(data); i++ {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4 : i*4+4]))
	}
	return vec
}

// cosineDistance mirrors pkg/index.CosineDistance; duplicated locally (with
// the same grounding) rather than imported, so the quantization package has
// no dependency on the graph package it is embedded in.
func cosineDistance(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}
	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	sim := dot / (math32.Sqrt(normA) * math32.Sqrt(normB))
	if sim > 1 {
		sim = 1
	} else if sim < -1 {
		sim = -1
	}
	return 1 - sim
}
