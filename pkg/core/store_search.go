package core

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/omendb/omendb/pkg/index"
)

// SearchResult is a single (id, similarity) hit, similarity in [0, 1]
// ascending-distance order (spec P8).
type SearchResult struct {
	ID         string
	Similarity float32
}

// Search returns the top-k nearest neighbors to query, optionally
// restricted to ids whose metadata satisfies filter (spec P9), using the
// adaptive beam width of spec §4.3.1.
func (s *VectorStore) Search(query []float32, k int, filter map[string]string) ([]SearchResult, error) {
	return s.SearchWithBeam(query, k, filter, 0)
}

// SearchWithBeam is Search with an explicit beam width override; 0
// selects the adaptive default.
func (s *VectorStore) SearchWithBeam(query []float32, k int, filter map[string]string, beamWidth int) ([]SearchResult, error) {
	if k <= 0 {
		return nil, wrapError("search", ErrInvalidK)
	}
	if err := validateVector(query); err != nil {
		return nil, wrapError("search", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, wrapError("search", ErrStoreClosed)
	}
	if !s.dimGuard.IsSet() {
		return nil, nil
	}
	if len(query) != s.dimGuard.Dimension() {
		return nil, wrapError("search", ErrDimensionMismatch)
	}

	// Widen the beam when a filter will post-reduce results, per spec
	// §4.3.6 step 2 ("optionally enlarge by 2x").
	effectiveBeam := beamWidth
	if len(filter) > 0 && effectiveBeam > 0 {
		effectiveBeam *= 2
	} else if len(filter) > 0 {
		effectiveBeam = index.AdaptiveBeamWidth(k, s.graph.LiveCount()) * 2
	}

	fetchK := k
	if len(filter) > 0 {
		fetchK = k * 4 // over-fetch so post-filtering still has k candidates to pick from
		if fetchK < k {
			fetchK = k
		}
	}

	type scored struct {
		id   string
		dist float32
	}
	var candidates []scored

	for _, r := range s.buffer.SearchLinear(query, fetchK) {
		candidates = append(candidates, scored{id: r.id, dist: r.dist})
	}
	for _, r := range s.graph.Search(query, fetchK, effectiveBeam) {
		candidates = append(candidates, scored{id: r.ID, dist: r.Dist})
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].dist < candidates[j].dist })

	results := make([]SearchResult, 0, k)
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if seen[c.id] {
			continue
		}
		seen[c.id] = true
		if !s.meta.Matches(c.id, filter) {
			continue
		}
		results = append(results, SearchResult{ID: c.id, Similarity: index.Similarity(c.dist)})
		if len(results) == k {
			break
		}
	}

	s.cfg.Metrics.IncrCounter("omendb.search", 1)
	return results, nil
}

// BatchSearch runs Search for every query, parallelized across queries via
// golang.org/x/sync/errgroup (spec §5: batch_search "MAY be parallelized
// across queries by the implementation").
func (s *VectorStore) BatchSearch(queries [][]float32, k int, filter map[string]string) ([][]SearchResult, error) {
	results := make([][]SearchResult, len(queries))

	g, _ := errgroup.WithContext(context.Background())
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			r, err := s.Search(q, k, filter)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, wrapError("batch_search", err)
	}
	return results, nil
}
