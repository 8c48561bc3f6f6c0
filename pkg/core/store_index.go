package core

// EnableScalarQuantization switches the store to 8-bit scalar quantization
// (spec §4.4). Fails (returns false) once any vector has been inserted,
// since the storage shape is fixed at first insert.
func (s *VectorStore) EnableScalarQuantization() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimGuard.IsSet() {
		return false
	}
	s.quantMode = QuantScalar
	return true
}

// EnableBinaryQuantization switches the store to 1-bit binary
// quantization. Implemented (not stubbed, per DESIGN.md's Open Question
// decision); always returns true unless vectors already exist, since the
// spec permits but does not require returning false for "unsupported".
func (s *VectorStore) EnableBinaryQuantization() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimGuard.IsSet() {
		return false
	}
	s.quantMode = QuantBinary
	return true
}

// SetPersistence attaches binding as this store's persistence layer.
// useWAL is accepted for interface compatibility but ignored: the core
// only ever does mmap snapshot checkpointing (spec §6). If the store's
// dimension is already known and conflicts with the binding's persisted
// dimension, the binding is rejected.
func (s *VectorStore) SetPersistence(binding PersistenceBinding, useWAL bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = useWAL

	if s.dimGuard.IsSet() {
		if pd, ok := binding.Dimension(); ok && pd != s.dimGuard.Dimension() {
			return false
		}
	}
	s.persist = binding
	return true
}

// Checkpoint snapshots the store's current live state and commits it
// durably (spec §4.5's two-phase algorithm). A second checkpoint call
// while one is in flight waits for the first to finish (spec §5).
func (s *VectorStore) Checkpoint() bool {
	s.checkpointMu.Lock()
	defer s.checkpointMu.Unlock()

	s.mu.Lock()
	if s.persist == nil || !s.dimGuard.IsSet() {
		s.mu.Unlock()
		return false
	}

	entries := make([]PersistedVector, 0, s.ids.Count())
	s.ids.Each(func(id string, loc Location) {
		var vec []float32
		switch loc.Kind {
		case InBuffer:
			vec, _ = s.buffer.GetVectorByID(id)
		case InIndex:
			vec, _ = s.graph.Vector(id)
		}
		if vec == nil {
			return
		}
		meta, _ := s.meta.Get(id)
		entries = append(entries, PersistedVector{ID: id, Vector: vec, Metadata: meta})
	})
	dim := s.dimGuard.Dimension()
	s.mu.Unlock()

	token, err := s.persist.BeginCheckpoint(dim, entries)
	if err != nil {
		s.cfg.Logger.Warn("checkpoint begin failed", "err", err)
		return false
	}
	if err := s.persist.Commit(token); err != nil {
		s.cfg.Logger.Warn("checkpoint commit failed", "err", err)
		return false
	}

	s.cfg.Metrics.IncrCounter("omendb.checkpoint", 1)
	return true
}

// Recover reads the last committed checkpoint and replays it via
// add_batch into a freshly cleared store (spec §4.5's recover algorithm).
// Returns the number of vectors recovered.
func (s *VectorStore) Recover() int {
	s.mu.Lock()
	if s.persist == nil {
		s.mu.Unlock()
		return 0
	}
	s.mu.Unlock()

	entries, err := s.persist.Recover()
	if err != nil {
		s.cfg.Logger.Warn("recover failed", "err", err)
		return 0
	}
	if len(entries) == 0 {
		return 0
	}

	s.Clear()

	ids := make([]string, len(entries))
	vecs := make([][]float32, len(entries))
	metas := make([]map[string]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
		vecs[i] = e.Vector
		metas[i] = e.Metadata
	}

	results := s.AddBatch(ids, vecs, metas)
	recovered := 0
	for _, ok := range results {
		if ok {
			recovered++
		}
	}
	s.Flush()

	s.cfg.Metrics.IncrCounter("omendb.recover", int64(recovered))
	return recovered
}

// Stats reports the spec's stats() operation: counts, storage mode,
// algorithm, quantization, and byte footprints.
func (s *VectorStore) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		Algorithm:    s.cfg.Algorithm,
		Quantization: s.quantMode,
		Count:        uint64(s.ids.Count()),
		Dimension:    s.dimGuard.Dimension(),
	}
	if s.buffer == nil {
		st.StorageMode = "empty"
		return st
	}

	st.BufferCount = s.buffer.Size()
	st.GraphCount = s.graph.LiveCount()
	st.GraphEdges = s.graph.TotalEdges()
	if st.GraphCount > 0 {
		st.AvgDegree = float64(st.GraphEdges) / float64(st.GraphCount)
	}
	st.BytesBuffer = s.buffer.BytesUsed()
	st.BytesGraph = s.graph.BytesUsed()
	st.BytesVectors = st.BytesBuffer + st.BytesGraph

	switch {
	case st.BufferCount > 0 && st.GraphCount > 0:
		st.StorageMode = "mixed"
	case st.GraphCount > 0:
		st.StorageMode = "graph"
	default:
		st.StorageMode = "buffer-only"
	}
	return st
}
