package index

import "github.com/omendb/omendb/pkg/quantization"

// node is a single graph vertex: its id, its stored vector form, and its
// adjacency. With no codec active the raw vector is kept; with a codec
// active only the encoded payload is kept (the raw vector is kept instead
// only if encoding failed), so Vector returns the decoded reconstruction.
type node struct {
	id       string
	vector   []float32
	encoded  []byte // codec-encoded payload, nil when codec is None
	deleted  bool
	// neighbors is the growable Building-mode adjacency list for this
	// node. Once finalized it still holds the authoritative edge set;
	// offsets/edges below are a compacted read-only mirror of it.
	neighbors []uint32
}

// csrMode is the tagged {Building, Finalized} variant of spec §4.3.2.
type csrMode int

const (
	csrBuilding csrMode = iota
	csrFinalized
)

// CSRGraph is the Vamana adjacency structure. In Building mode, adjacency
// lives in each node's growable neighbors slice. Finalize compacts that
// into immutable offsets/edges CSR arrays; finalization is idempotent and
// triggered lazily on the first search after any write (spec §4.3.2).
type CSRGraph struct {
	dim   int
	codec quantization.Codec

	mode  csrMode
	nodes []node
	index map[string]uint32 // id -> node index, dense and stable

	medoid       uint32
	hasMedoid    bool
	insertsSince uint64 // inserts since the last medoid refresh

	// offsets/edges are the Finalized-mode CSR mirror: neighbors of node i
	// are edges[offsets[i]:offsets[i+1]].
	offsets []uint32
	edges   []uint32
	dirty   bool // true once any write has happened since the last finalize
}

// NewCSRGraph constructs an empty graph for the given dimension and codec.
// codec may be quantization.NewNoneCodec(dim) when quantization is off.
func NewCSRGraph(dim int, codec quantization.Codec) *CSRGraph {
	return &CSRGraph{
		dim:   dim,
		codec: codec,
		index: make(map[string]uint32),
	}
}

// Len returns the number of nodes ever added, including tombstoned ones.
func (g *CSRGraph) Len() int { return len(g.nodes) }

// Contains reports whether id names a live (non-tombstoned) node.
func (g *CSRGraph) Contains(id string) bool {
	idx, ok := g.index[id]
	return ok && !g.nodes[idx].deleted
}

// NodeIndex returns the dense node index for id.
func (g *CSRGraph) NodeIndex(id string) (uint32, bool) {
	idx, ok := g.index[id]
	if !ok || g.nodes[idx].deleted {
		return 0, false
	}
	return idx, true
}

// Vector returns the raw (dequantized, if quantized) vector stored for idx.
func (g *CSRGraph) Vector(idx uint32) []float32 {
	n := &g.nodes[idx]
	if n.vector != nil {
		return n.vector
	}
	if n.encoded == nil {
		return nil
	}
	vec, err := g.codec.Decode(n.encoded)
	if err != nil {
		return nil
	}
	return vec
}

// distanceTo computes distance from query to node idx, delegating to the
// codec's Distance when the node holds an encoded payload (ScalarCodec
// decodes the payload and uses cosine distance; BinaryCodec compares bit
// patterns) and to CosineDistance on the raw vector otherwise.
func (g *CSRGraph) distanceTo(query []float32, idx uint32) float32 {
	n := &g.nodes[idx]
	if n.encoded != nil {
		return g.codec.Distance(query, n.encoded)
	}
	return CosineDistance(query, n.vector)
}

// addNode appends a new node to the arena and returns its dense index.
// Does not wire any adjacency; callers link edges separately.
func (g *CSRGraph) addNode(id string, vec []float32) uint32 {
	idx := uint32(len(g.nodes))
	n := node{id: id}

	if g.codec == nil || g.codec.Mode() == quantization.ModeNone {
		n.vector = vec
	} else {
		enc, err := g.codec.Encode(vec)
		if err == nil {
			n.encoded = enc
		} else {
			n.vector = vec
		}
	}

	g.nodes = append(g.nodes, n)
	g.index[id] = idx
	if !g.hasMedoid {
		g.medoid = idx
		g.hasMedoid = true
	}
	g.dirty = true
	return idx
}

// degree returns the current Building-mode out-degree of idx.
func (g *CSRGraph) degree(idx uint32) int { return len(g.nodes[idx].neighbors) }

// neighborsOf returns the adjacency of idx: the CSR slice when finalized
// and not yet touched since, or the growable list while building.
func (g *CSRGraph) neighborsOf(idx uint32) []uint32 {
	if g.mode == csrFinalized && !g.dirty {
		return g.edges[g.offsets[idx]:g.offsets[idx+1]]
	}
	return g.nodes[idx].neighbors
}

// setNeighbors replaces idx's adjacency wholesale (used by robust_prune's
// replacement step and by initial edge writing).
func (g *CSRGraph) setNeighbors(idx uint32, neighbors []uint32) {
	g.nodes[idx].neighbors = neighbors
	g.dirty = true
}

// addEdge appends a single directed edge u -> v if not already present.
func (g *CSRGraph) addEdge(u, v uint32) {
	for _, n := range g.nodes[u].neighbors {
		if n == v {
			return
		}
	}
	g.nodes[u].neighbors = append(g.nodes[u].neighbors, v)
	g.dirty = true
}

// tombstone marks idx deleted: excluded from results and counts, but left
// physically in place so it remains traversable as an intermediate beam
// search hop (DESIGN.md Open Question: tombstone over rejection).
func (g *CSRGraph) tombstone(idx uint32) {
	g.nodes[idx].deleted = true
	delete(g.index, g.nodes[idx].id)
}

// Finalize compacts Building-mode adjacency into immutable CSR arrays.
// Idempotent: a no-op when the graph has no writes since the last call.
func (g *CSRGraph) Finalize() {
	if g.mode == csrFinalized && !g.dirty {
		return
	}

	n := len(g.nodes)
	offsets := make([]uint32, n+1)
	total := 0
	for i := 0; i < n; i++ {
		total += len(g.nodes[i].neighbors)
	}
	edges := make([]uint32, 0, total)

	for i := 0; i < n; i++ {
		offsets[i] = uint32(len(edges))
		edges = append(edges, g.nodes[i].neighbors...)
	}
	offsets[n] = uint32(len(edges))

	g.offsets = offsets
	g.edges = edges
	g.mode = csrFinalized
	g.dirty = false
}

// EnsureFinalized finalizes the graph if it has been mutated since the
// last finalize, per spec §4.3.6 step 1 ("lazily on the first search
// after any write").
func (g *CSRGraph) EnsureFinalized() {
	if g.dirty {
		g.Finalize()
	}
}

// TotalEdges sums the out-degree across every node, tombstoned nodes
// included, for Stats().
func (g *CSRGraph) TotalEdges() uint64 {
	var total uint64
	for i := range g.nodes {
		total += uint64(len(g.nodes[i].neighbors))
	}
	return total
}

// LiveCount returns the number of non-tombstoned nodes.
func (g *CSRGraph) LiveCount() int {
	count := 0
	for i := range g.nodes {
		if !g.nodes[i].deleted {
			count++
		}
	}
	return count
}

// BytesUsed approximates the graph's live memory footprint for Stats().
func (g *CSRGraph) BytesUsed() int64 {
	var n int64
	for i := range g.nodes {
		n += int64(len(g.nodes[i].vector)) * 4
		n += int64(len(g.nodes[i].encoded))
		n += int64(len(g.nodes[i].neighbors)) * 4
	}
	return n
}

// Medoid returns the current entry point node index.
func (g *CSRGraph) Medoid() (uint32, bool) {
	if !g.hasMedoid {
		return 0, false
	}
	return g.medoid, true
}

// RefreshMedoidIfDue, every 1000 inserts, scans every live node and picks
// the highest-degree one as the new medoid (spec §4.3.3 step 6): degree
// stands in as an approximation of graph centrality.
func (g *CSRGraph) RefreshMedoidIfDue() {
	g.insertsSince++
	if g.insertsSince < 1000 {
		return
	}
	g.insertsSince = 0

	best := g.medoid
	bestDeg := -1
	for i := range g.nodes {
		if g.nodes[i].deleted {
			continue
		}
		if d := len(g.nodes[i].neighbors); d > bestDeg {
			bestDeg = d
			best = uint32(i)
		}
	}
	if bestDeg >= 0 {
		g.medoid = best
	}
}

// Each calls fn for every live node (id, vector), in node-index order.
func (g *CSRGraph) Each(fn func(id string, vec []float32)) {
	for i := range g.nodes {
		if g.nodes[i].deleted {
			continue
		}
		fn(g.nodes[i].id, g.Vector(uint32(i)))
	}
}
