package core

// Close shuts the store down: it best-effort checkpoints the current state
// (if a persistence binding is attached), then marks the store closed so
// every subsequent Add/Update/Search call fails fast with ErrStoreClosed
// (spec's error taxonomy) and AddBatch reports every item as false,
// grounded on sqvect's
// SQLiteStore.Close (save-snapshot-then-close, idempotent, logged).
// Close is idempotent: closing an already-closed store is a no-op.
func (s *VectorStore) Close() error {
	s.mu.RLock()
	alreadyClosed := s.closed
	hasPersist := s.persist != nil
	s.mu.RUnlock()
	if alreadyClosed {
		return nil
	}

	if hasPersist {
		if !s.Checkpoint() {
			s.cfg.Logger.Warn("checkpoint before close failed, closing anyway")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	if s.persist != nil {
		err = s.persist.Close()
	}
	s.cfg.Logger.Info("store closed")
	return err
}
