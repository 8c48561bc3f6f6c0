package index

import "sort"

// robustPrune implements spec §4.3.5's α-RNG rule: from candidate set
// candidates (node indices, distances to p not yet known), select at most
// R diverse neighbors for node p.
func robustPrune(g *CSRGraph, p uint32, candidates []uint32, r int, alpha float32) []uint32 {
	pVec := g.Vector(p)

	type scored struct {
		node uint32
		dist float32
	}
	v := make([]scored, 0, len(candidates))
	seen := make(map[uint32]bool, len(candidates))
	for _, c := range candidates {
		if c == p || seen[c] {
			continue
		}
		seen[c] = true
		v = append(v, scored{node: c, dist: g.distanceTo(pVec, c)})
	}

	sort.Slice(v, func(i, j int) bool {
		if v[i].dist != v[j].dist {
			return v[i].dist < v[j].dist
		}
		return v[i].node < v[j].node
	})

	selected := make([]uint32, 0, r)
	for len(v) > 0 && len(selected) < r {
		best := v[0]
		selected = append(selected, best.node)
		v = v[1:]

		kept := v[:0]
		bestVec := g.Vector(best.node)
		for _, cand := range v {
			// Keep cand only if it is NOT closer to best than to p by
			// factor alpha: d(cand, best) >= alpha * d(cand, p).
			dCandBest := g.distanceTo(bestVec, cand.node)
			if dCandBest >= alpha*cand.dist {
				kept = append(kept, cand)
			}
		}
		v = kept
	}

	return selected
}
