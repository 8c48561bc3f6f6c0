package core

import (
	"math/rand"
	"testing"
)

func newTestStore(bufferSize int) *VectorStore {
	cfg := DefaultConfig()
	cfg.BufferSize = bufferSize
	return NewVectorStore(cfg)
}

func TestStoreBasicAddSearch(t *testing.T) {
	s := newTestStore(10)
	mustAdd(t, s, "a", []float32{1, 0, 0})
	mustAdd(t, s, "b", []float32{0, 1, 0})
	mustAdd(t, s, "c", []float32{0, 0, 1})

	results, err := s.Search([]float32{1, 0, 0}, 2, nil)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].ID != "a" || results[0].Similarity < 0.999 {
		t.Errorf("top result = %+v, want a with similarity ~1", results[0])
	}
	if results[1].Similarity >= 1 {
		t.Errorf("second result similarity should be < 1, got %v", results[1].Similarity)
	}
}

func TestStoreDimensionMismatch(t *testing.T) {
	s := newTestStore(10)
	mustAdd(t, s, "x", []float32{1, 2})

	ok, err := s.Add("y", []float32{1, 2, 3}, nil)
	if ok || err == nil {
		t.Fatalf("expected add with mismatched dimension to fail, got ok=%v err=%v", ok, err)
	}
	if s.Count() != 1 {
		t.Errorf("count = %d, want 1", s.Count())
	}
}

func TestStoreDuplicateId(t *testing.T) {
	s := newTestStore(10)
	mustAdd(t, s, "k", []float32{1, 0})

	ok, err := s.Add("k", []float32{0, 1}, nil)
	if ok || err != nil {
		t.Fatalf("expected duplicate add to return (false, nil), got (%v, %v)", ok, err)
	}
	vec, found := s.GetVector("k")
	if !found || vec[0] != 1 || vec[1] != 0 {
		t.Errorf("get_vector(k) = %v, want original [1 0]", vec)
	}
}

func TestStoreFlushBoundary(t *testing.T) {
	s := newTestStore(4)
	ids := []string{"v1", "v2", "v3", "v4", "v5", "v6"}
	vecs := [][]float32{
		{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0},
		{0, 0, 0, 1}, {1, 1, 0, 0}, {0, 0, 1, 1},
	}

	results := s.AddBatch(ids, vecs, nil)
	for i, ok := range results {
		if !ok {
			t.Fatalf("item %d (%s) failed to add", i, ids[i])
		}
	}

	for i, id := range ids {
		got, err := s.Search(vecs[i], 1, nil)
		if err != nil {
			t.Fatalf("search for %s: %v", id, err)
		}
		if len(got) != 1 || got[0].ID != id {
			t.Errorf("search(%s) top result = %+v, want itself", id, got)
		}
	}
}

func TestStoreCheckpointRecover(t *testing.T) {
	s := newTestStore(128)
	binding := newFakeBinding()
	s.SetPersistence(binding, false)

	rng := rand.New(rand.NewSource(1))
	const n = 200
	ids := make([]string, n)
	vecs := make([][]float32, n)
	metas := make([]map[string]string, n)
	for i := 0; i < n; i++ {
		ids[i] = idFor(i)
		vecs[i] = []float32{rng.Float32(), rng.Float32(), rng.Float32(), rng.Float32()}
		if i%2 == 0 {
			metas[i] = map[string]string{"group": "A"}
		}
	}
	results := s.AddBatch(ids, vecs, metas)
	for _, ok := range results {
		if !ok {
			t.Fatal("expected every add_batch item to succeed")
		}
	}

	if !s.Checkpoint() {
		t.Fatal("checkpoint failed")
	}

	s2 := newTestStore(128)
	s2.SetPersistence(binding, false)
	recovered := s2.Recover()
	if recovered != n {
		t.Fatalf("recovered %d, want %d", recovered, n)
	}
	if s2.Count() != uint64(n) {
		t.Fatalf("count after recover = %d, want %d", s2.Count(), n)
	}

	filtered, err := s2.Search(vecs[0], n, map[string]string{"group": "A"})
	if err != nil {
		t.Fatalf("filtered search: %v", err)
	}
	for _, r := range filtered {
		meta, ok := s2.GetMetadata(r.ID)
		if !ok || meta["group"] != "A" {
			t.Errorf("result %s does not satisfy group=A filter", r.ID)
		}
	}
}

func TestStoreScalarQuantizationRecall(t *testing.T) {
	s := newTestStore(512)
	if !s.EnableScalarQuantization() {
		t.Fatal("expected EnableScalarQuantization to succeed on empty store")
	}

	rng := rand.New(rand.NewSource(7))
	const n = 100
	vecs := make([][]float32, n)
	for i := 0; i < n; i++ {
		vecs[i] = []float32{rng.Float32()*2 - 1, rng.Float32()*2 - 1, rng.Float32()*2 - 1, rng.Float32()*2 - 1}
		mustAdd(t, s, idFor(i), vecs[i])
	}

	hits := 0
	for i := 0; i < n; i++ {
		results, err := s.Search(vecs[i], 1, nil)
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if len(results) == 1 && results[0].ID == idFor(i) {
			hits++
		}
	}
	if hits < 95 {
		t.Errorf("recall = %d/100, want >= 95", hits)
	}
}

func TestStoreEnableQuantizationFailsAfterInsert(t *testing.T) {
	s := newTestStore(10)
	mustAdd(t, s, "a", []float32{1, 2})

	if s.EnableScalarQuantization() {
		t.Error("expected EnableScalarQuantization to fail once vectors exist")
	}
}

func TestStoreCloseRejectsFurtherWrites(t *testing.T) {
	s := newTestStore(10)
	mustAdd(t, s, "a", []float32{1, 0})

	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if ok, err := s.Add("b", []float32{0, 1}, nil); ok || err == nil {
		t.Errorf("expected add after close to fail, got ok=%v err=%v", ok, err)
	}
	if _, err := s.Search([]float32{1, 0}, 1, nil); err == nil {
		t.Error("expected search after close to fail")
	}

	// Close is idempotent.
	if err := s.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestStoreCloseCheckpointsBeforeClosing(t *testing.T) {
	s := newTestStore(10)
	binding := newFakeBinding()
	s.SetPersistence(binding, false)
	mustAdd(t, s, "a", []float32{1, 0})

	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s2 := newTestStore(10)
	s2.SetPersistence(binding, false)
	if recovered := s2.Recover(); recovered != 1 {
		t.Fatalf("recovered %d, want 1 (close should have checkpointed first)", recovered)
	}
}

func mustAdd(t *testing.T, s *VectorStore, id string, vec []float32) {
	t.Helper()
	ok, err := s.Add(id, vec, nil)
	if !ok || err != nil {
		t.Fatalf("add(%s) failed: ok=%v err=%v", id, ok, err)
	}
}

func idFor(i int) string {
	const letters = "0123456789abcdef"
	buf := make([]byte, 0, 12)
	buf = append(buf, "id"...)
	n := i
	if n == 0 {
		buf = append(buf, '0')
	}
	var digits []byte
	for n > 0 {
		digits = append(digits, letters[n%16])
		n /= 16
	}
	for j := len(digits) - 1; j >= 0; j-- {
		buf = append(buf, digits[j])
	}
	return string(buf)
}

// fakeBinding is an in-memory stand-in for a real PersistenceBinding, used
// so pkg/core's tests don't need to import pkg/persistence (which itself
// depends on pkg/core).
type fakeBinding struct {
	dim      int
	dimKnown bool
	pending  map[CheckpointToken][]PersistedVector
	stored   []PersistedVector
}

func newFakeBinding() *fakeBinding {
	return &fakeBinding{pending: make(map[CheckpointToken][]PersistedVector)}
}

func (f *fakeBinding) Dimension() (int, bool) { return f.dim, f.dimKnown }

func (f *fakeBinding) BeginCheckpoint(dim int, entries []PersistedVector) (CheckpointToken, error) {
	token := CheckpointToken{}
	for i := range token {
		token[i] = byte(len(f.pending) + i)
	}
	cp := append([]PersistedVector(nil), entries...)
	f.pending[token] = cp
	f.dim = dim
	return token, nil
}

func (f *fakeBinding) Commit(token CheckpointToken) error {
	f.stored = f.pending[token]
	delete(f.pending, token)
	f.dimKnown = true
	return nil
}

func (f *fakeBinding) Recover() ([]PersistedVector, error) {
	return append([]PersistedVector(nil), f.stored...), nil
}

func (f *fakeBinding) Close() error { return nil }
