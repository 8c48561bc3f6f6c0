package index

import (
	"container/heap"

	"github.com/bits-and-blooms/bitset"
)

// candidateHeap is a min-heap of (node, distance) pairs ordered by
// distance, ties broken by node index ascending (spec §4.3.4).
type candidateHeap []beamEntry

type beamEntry struct {
	node uint32
	dist float32
}

func (h candidateHeap) Len() int { return len(h) }
func (h candidateHeap) Less(i, j int) bool {
	if h[i].dist != h[j].dist {
		return h[i].dist < h[j].dist
	}
	return h[i].node < h[j].node
}
func (h candidateHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *candidateHeap) Push(x any)        { *h = append(*h, x.(beamEntry)) }
func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// boundedResults maintains W of spec §4.3.4: a bounded set of size ≤ L,
// kept sorted ascending by distance so max(W) and eviction are O(1)/O(n)
// respectively over small L (≤ a few hundred).
type boundedResults struct {
	limit   int
	entries []beamEntry
}

func newBoundedResults(limit int) *boundedResults {
	return &boundedResults{limit: limit, entries: make([]beamEntry, 0, limit)}
}

func (w *boundedResults) max() (float32, bool) {
	if len(w.entries) == 0 {
		return 0, false
	}
	return w.entries[len(w.entries)-1].dist, true
}

func (w *boundedResults) len() int { return len(w.entries) }

// insert adds e in sorted position, evicting the worst entry if over the
// limit. Ties break by node index ascending, per spec §4.3.4.
func (w *boundedResults) insert(e beamEntry) {
	pos := len(w.entries)
	for pos > 0 {
		prev := w.entries[pos-1]
		if prev.dist < e.dist || (prev.dist == e.dist && prev.node < e.node) {
			break
		}
		pos--
	}
	w.entries = append(w.entries, beamEntry{})
	copy(w.entries[pos+1:], w.entries[pos:])
	w.entries[pos] = e

	if len(w.entries) > w.limit {
		w.entries = w.entries[:w.limit]
	}
}

// beamSearch runs a beam search over the graph starting from entry with
// beam width l, returning the bounded result set sorted ascending by
// distance. Used both for querying (beam_search) and, during insertion,
// for finding a new node's candidate neighbor set (beam_search_build) —
// the Building-mode adjacency list is identical to the finalized CSR view
// as far as neighborsOf is concerned, so one routine serves both.
func beamSearch(g *CSRGraph, query []float32, entry uint32, l int) []beamEntry {
	if l <= 0 || g.Len() == 0 {
		return nil
	}

	visited := bitset.New(uint(g.Len()))
	candidates := &candidateHeap{}
	heap.Init(candidates)
	w := newBoundedResults(l)

	startDist := g.distanceTo(query, entry)
	heap.Push(candidates, beamEntry{node: entry, dist: startDist})
	visited.Set(uint(entry))
	if !g.nodes[entry].deleted {
		w.insert(beamEntry{node: entry, dist: startDist})
	}

	for candidates.Len() > 0 {
		c := heap.Pop(candidates).(beamEntry)

		if maxW, ok := w.max(); ok && w.len() >= l && c.dist > maxW {
			break
		}

		for _, n := range g.neighborsOf(c.node) {
			if visited.Test(uint(n)) {
				continue
			}
			visited.Set(uint(n))

			dn := g.distanceTo(query, n)
			maxW, full := w.max()
			if w.len() < l || dn < maxW || !full {
				heap.Push(candidates, beamEntry{node: n, dist: dn})
				if !g.nodes[n].deleted {
					w.insert(beamEntry{node: n, dist: dn})
				}
			}
		}
	}

	return w.entries
}
