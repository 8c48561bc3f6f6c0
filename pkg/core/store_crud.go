package core

// Delete removes id. Present-in-buffer ids are removed outright;
// present-in-graph ids are tombstoned (DESIGN.md Open Question decision:
// tombstone over rejection for indexed ids, permitted by spec §4.1).
// Returns false if id did not exist.
func (s *VectorStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLocked(id)
}

func (s *VectorStore) deleteLocked(id string) bool {
	loc, ok := s.ids.Get(id)
	if !ok || loc.Kind == Absent {
		return false
	}

	switch loc.Kind {
	case InBuffer:
		s.buffer.Delete(id)
		// Delete moved the last slot into the freed one; keep that id's
		// recorded slot index in step.
		if int(loc.Index) < s.buffer.Size() {
			moved := s.buffer.slots[loc.Index].id
			s.ids.Set(moved, Location{Kind: InBuffer, Index: loc.Index})
		}
	case InIndex:
		s.graph.Delete(id)
	}

	s.ids.Tombstone(id)
	s.meta.Delete(id)
	s.cfg.Metrics.IncrCounter("omendb.delete", 1)
	return true
}

// Update replaces id's vector and (optionally) metadata; semantics are
// delete-then-add (spec §6). Returns false if id did not previously
// exist, or if the new vector fails validation.
func (s *VectorStore) Update(id string, vector []float32, metadata map[string]string) (bool, error) {
	if err := validateVector(vector); err != nil {
		return false, wrapError("update", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, wrapError("update", ErrStoreClosed)
	}
	if !s.ids.Exists(id) {
		return false, nil
	}
	if err := s.dimGuard.Check(vector); err != nil {
		return false, wrapError("update", err)
	}

	s.deleteLocked(id)

	vecCopy := append([]float32(nil), vector...)
	s.graph.Add(id, vecCopy)
	nodeIdx, _ := s.graph.NodeIndex(id)
	s.ids.Set(id, Location{Kind: InIndex, Index: nodeIdx})
	if len(metadata) > 0 {
		s.meta.Set(id, metadata)
	}

	s.cfg.Metrics.IncrCounter("omendb.update", 1)
	return true, nil
}

// Exists reports whether id currently resolves to a live location.
func (s *VectorStore) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ids.Exists(id)
}

// Count returns the number of currently live ids (spec P4).
func (s *VectorStore) Count() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(s.ids.Count())
}

// GetVector returns id's (dequantized, if quantized) vector, or
// (nil, false) if id does not exist.
func (s *VectorStore) GetVector(id string) ([]float32, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	loc, ok := s.ids.Get(id)
	if !ok || loc.Kind == Absent {
		return nil, false
	}
	switch loc.Kind {
	case InBuffer:
		return s.buffer.GetVectorByID(id)
	case InIndex:
		return s.graph.Vector(id)
	}
	return nil, false
}

// GetMetadata returns id's metadata map, or (nil, false) per spec P5.
func (s *VectorStore) GetMetadata(id string) (map[string]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ids.Exists(id) {
		return nil, false
	}
	return s.meta.Get(id)
}

// Clear empties the Buffer, Graph, IdMap, and MetadataMap and forgets the
// learned dimension, returning the store to its pre-first-insert state.
// The configured quantization mode is retained, so the next insert
// re-allocates a codec of the same kind for whatever dimension it learns.
func (s *VectorStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.buffer != nil {
		s.buffer.Clear()
	}
	if s.dimGuard.IsSet() {
		s.graph = nil
		s.dimGuard = DimensionGuard{}
		s.buffer = nil
		s.codec = nil
	}
	s.ids.Clear()
	s.meta.Clear()
	s.cfg.Metrics.IncrCounter("omendb.clear", 1)
}
