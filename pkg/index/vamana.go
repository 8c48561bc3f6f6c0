package index

import (
	"sync"

	"github.com/omendb/omendb/pkg/quantization"
)

// Result is a single search hit: an id and its distance to the query.
type Result struct {
	ID   string
	Dist float32
}

// GraphIndex is the Vamana/DiskANN graph engine of spec §4.3: insertion via
// beam_search_build + robust_prune, search via beam_search from the
// medoid, lazy CSR finalization on first search after a write.
type GraphIndex struct {
	mu sync.RWMutex
	g  *CSRGraph

	r       int
	lBuild  int
	lSearch int
	alpha   float32
}

// Params bundles the Vamana tuning knobs of spec §4.3.1.
type Params struct {
	R       int
	LBuild  int
	LSearch int
	Alpha   float32
}

// DefaultParams returns the spec's default R/L_build/L_search/alpha.
func DefaultParams() Params {
	return Params{R: 64, LBuild: 100, LSearch: 70, Alpha: 1.2}
}

// NewGraphIndex constructs an empty graph for dim, using codec (which may
// be quantization.NewNoneCodec(dim)) and the given Vamana parameters.
func NewGraphIndex(dim int, codec quantization.Codec, p Params) *GraphIndex {
	return &GraphIndex{
		g:       NewCSRGraph(dim, codec),
		r:       p.R,
		lBuild:  p.LBuild,
		lSearch: p.LSearch,
		alpha:   p.Alpha,
	}
}

// Len returns the number of nodes ever added, including tombstoned ones.
func (idx *GraphIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.g.Len()
}

// LiveCount returns the number of non-tombstoned nodes.
func (idx *GraphIndex) LiveCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.g.LiveCount()
}

// Contains reports whether id names a live node in the graph.
func (idx *GraphIndex) Contains(id string) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.g.Contains(id)
}

// NodeIndex returns id's internal node index, used by callers that track
// Location{Kind, Index} alongside the graph rather than re-resolving ids on
// every lookup.
func (idx *GraphIndex) NodeIndex(id string) (uint32, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.g.NodeIndex(id)
}

// Vector returns id's raw (dequantized, if quantized) vector.
func (idx *GraphIndex) Vector(id string) ([]float32, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	n, ok := idx.g.NodeIndex(id)
	if !ok {
		return nil, false
	}
	return idx.g.Vector(n), true
}

// Add inserts a single node following spec §4.3.3's per-node algorithm.
func (idx *GraphIndex) Add(id string, vec []float32) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.addLocked(id, vec)
}

// AddBatch inserts a flat batch of (ids, vecs). Spec §4.3.7 only requires
// the resulting graph be equivalent (modulo α-RNG tie-breaking) to a
// sequence of individual adds; this implementation takes the straightforward
// route of inserting sequentially under a single lock acquisition, which
// amortizes the lock overhead across the batch.
func (idx *GraphIndex) AddBatch(ids []string, vecs [][]float32) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for i, id := range ids {
		idx.addLocked(id, vecs[i])
	}
}

func (idx *GraphIndex) addLocked(id string, vec []float32) {
	u := idx.g.addNode(id, vec)

	if idx.g.Len() == 1 {
		// Only node: it is already the medoid (set by addNode); nothing
		// more to wire.
		return
	}

	medoid, _ := idx.g.Medoid()
	uVec := idx.g.Vector(u)
	candidates := beamSearch(idx.g, uVec, medoid, idx.lBuild)

	candNodes := make([]uint32, 0, len(candidates))
	for _, c := range candidates {
		candNodes = append(candNodes, c.node)
	}

	selected := robustPrune(idx.g, u, candNodes, idx.r, idx.alpha)
	idx.g.setNeighbors(u, selected)

	for _, w := range selected {
		idx.g.addEdge(w, u)
		if idx.g.degree(w) > idx.r {
			wNeighbors := append([]uint32(nil), idx.g.neighborsOf(w)...)
			pruned := robustPrune(idx.g, w, wNeighbors, idx.r, idx.alpha)
			idx.g.setNeighbors(w, pruned)
		}
	}

	idx.g.RefreshMedoidIfDue()
}

// Delete tombstones id if present (DESIGN.md: tombstone over rejection).
// Reports whether id was present.
func (idx *GraphIndex) Delete(id string) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	n, ok := idx.g.NodeIndex(id)
	if !ok {
		return false
	}
	idx.g.tombstone(n)
	return true
}

// AdaptiveBeamWidth implements spec §4.3.1's formula:
// beam = max(2k, 50) + δ(N), δ = 0 (N<1k), 20 (<10k), 50 (<100k), 100 (≥100k).
func AdaptiveBeamWidth(k, n int) int {
	beam := 2 * k
	if beam < 50 {
		beam = 50
	}
	var delta int
	switch {
	case n < 1000:
		delta = 0
	case n < 10000:
		delta = 20
	case n < 100000:
		delta = 50
	default:
		delta = 100
	}
	return beam + delta
}

// Search runs spec §4.3.6: lazily finalize, beam search with the given
// effective beam width (0 selects AdaptiveBeamWidth(k, LiveCount())), and return
// the top-k ascending results.
func (idx *GraphIndex) Search(query []float32, k int, beamWidth int) []Result {
	idx.mu.Lock()
	idx.g.EnsureFinalized()
	idx.mu.Unlock()

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if k <= 0 || idx.g.Len() == 0 {
		return nil
	}
	medoid, ok := idx.g.Medoid()
	if !ok {
		return nil
	}

	l := beamWidth
	if l <= 0 {
		l = AdaptiveBeamWidth(k, idx.g.LiveCount())
	}
	if l < k {
		l = k
	}

	entries := beamSearch(idx.g, query, medoid, l)

	results := make([]Result, 0, k)
	for _, e := range entries {
		if idx.g.nodes[e.node].deleted {
			continue
		}
		results = append(results, Result{ID: idx.g.nodes[e.node].id, Dist: e.dist})
		if len(results) == k {
			break
		}
	}
	return results
}

// TotalEdges sums the out-degree across every node, tombstoned nodes
// included, for Stats().
func (idx *GraphIndex) TotalEdges() uint64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.g.TotalEdges()
}

// BytesUsed approximates the graph's live memory footprint for Stats().
func (idx *GraphIndex) BytesUsed() int64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.g.BytesUsed()
}

// Each calls fn for every live (id, vector) pair in the graph.
func (idx *GraphIndex) Each(fn func(id string, vec []float32)) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	idx.g.Each(fn)
}
