// Package index implements the Vamana/DiskANN-style graph ANN index: a
// building-mode adjacency-list graph that finalizes into an immutable CSR
// layout, searched with beam search and built with robust (α-RNG) pruning.
package index

import "github.com/chewxy/math32"

// CosineDistance computes 1 - cosine_similarity(a, b), the fixed metric
// used throughout the engine (spec §3). Vectors of mismatched length or
// zero magnitude are treated as maximally dissimilar (distance 1)
// rather than panicking, keeping the graph total per spec §4.3.8.
func CosineDistance(a, b []float32) float32 {
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

// Similarity converts a cosine distance to the [0, 1] similarity score
// returned to callers (spec §3: "clamp(1 − distance, 0, 1)").
func Similarity(dist float32) float32 {
	sim := 1 - dist
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
