package core

import "testing"

func TestCollectionRegistryDefaultAlwaysPresent(t *testing.T) {
	r := NewCollectionRegistry(func() *VectorStore { return NewVectorStore(DefaultConfig()) })
	if !r.Exists(DefaultCollectionName) {
		t.Fatal("expected default collection to exist")
	}
	if r.Delete(DefaultCollectionName) {
		t.Error("expected delete of default collection to fail")
	}
}

func TestCollectionRegistryCreateGetDelete(t *testing.T) {
	r := NewCollectionRegistry(func() *VectorStore { return NewVectorStore(DefaultConfig()) })

	if !r.Create("docs") {
		t.Fatal("expected create of new collection to succeed")
	}
	if r.Create("docs") {
		t.Error("expected create of existing collection to fail")
	}

	s, ok := r.Get("docs")
	if !ok || s == nil {
		t.Fatal("expected to get the docs collection")
	}

	if !r.Delete("docs") {
		t.Fatal("expected delete of docs to succeed")
	}
	if r.Exists("docs") {
		t.Error("expected docs to no longer exist after delete")
	}
}

func TestCollectionRegistryCollectionsAreIndependent(t *testing.T) {
	r := NewCollectionRegistry(func() *VectorStore { return NewVectorStore(DefaultConfig()) })
	r.Create("a")
	r.Create("b")

	sa, _ := r.Get("a")
	sb, _ := r.Get("b")

	mustAdd(t, sa, "x", []float32{1, 0})
	if sb.Exists("x") {
		t.Error("expected collections to have independent id spaces")
	}
}

func TestCollectionRegistrySearchInForwardsToNamedCollection(t *testing.T) {
	r := NewCollectionRegistry(func() *VectorStore { return NewVectorStore(DefaultConfig()) })
	r.Create("docs")
	s, _ := r.Get("docs")
	mustAdd(t, s, "a", []float32{1, 0})
	mustAdd(t, s, "b", []float32{0, 1})

	results, err := r.SearchIn("docs", []float32{1, 0}, 1, nil)
	if err != nil {
		t.Fatalf("search_in: %v", err)
	}
	if len(results) != 1 || results[0].ID != "a" {
		t.Errorf("search_in results = %+v, want [a]", results)
	}

	if _, err := r.SearchIn("missing", []float32{1, 0}, 1, nil); err == nil {
		t.Error("expected search_in on an unknown collection to fail")
	}
}

func TestCollectionRegistryBatchSearchInForwardsToNamedCollection(t *testing.T) {
	r := NewCollectionRegistry(func() *VectorStore { return NewVectorStore(DefaultConfig()) })
	r.Create("docs")
	s, _ := r.Get("docs")
	mustAdd(t, s, "a", []float32{1, 0})

	results, err := r.BatchSearchIn("docs", [][]float32{{1, 0}}, 1, nil)
	if err != nil {
		t.Fatalf("batch_search_in: %v", err)
	}
	if len(results) != 1 || len(results[0]) != 1 || results[0][0].ID != "a" {
		t.Errorf("batch_search_in results = %+v, want [[a]]", results)
	}
}

func TestCollectionRegistryList(t *testing.T) {
	r := NewCollectionRegistry(func() *VectorStore { return NewVectorStore(DefaultConfig()) })
	r.Create("alpha")
	r.Create("beta")

	names := r.List()
	want := map[string]bool{DefaultCollectionName: true, "alpha": true, "beta": true}
	if len(names) != len(want) {
		t.Fatalf("got %d names, want %d", len(names), len(want))
	}
	for _, n := range names {
		if !want[n] {
			t.Errorf("unexpected collection name %q", n)
		}
	}
}
