package core

import "testing"

func TestIdMapSetGetDelete(t *testing.T) {
	m := NewIdMap()
	m.Set("a", Location{Kind: InBuffer, Index: 0})

	if !m.Exists("a") {
		t.Fatal("expected a to exist")
	}
	loc, ok := m.Get("a")
	if !ok || loc.Kind != InBuffer {
		t.Fatalf("got loc=%+v ok=%v, want InBuffer", loc, ok)
	}

	m.Delete("a")
	if m.Exists("a") {
		t.Error("expected a to no longer exist after Delete")
	}
}

func TestIdMapTombstoneExcludesFromCount(t *testing.T) {
	m := NewIdMap()
	m.Set("a", Location{Kind: InIndex, Index: 1})
	m.Set("b", Location{Kind: InIndex, Index: 2})

	m.Tombstone("a")
	if m.Count() != 1 {
		t.Errorf("count = %d, want 1", m.Count())
	}
	if m.Exists("a") {
		t.Error("tombstoned id should not Exist")
	}
}

func TestMetadataMapMatchesFilter(t *testing.T) {
	mm := NewMetadataMap()
	mm.Set("a", map[string]string{"group": "A", "region": "us"})
	mm.Set("b", map[string]string{"group": "B"})

	if !mm.Matches("a", map[string]string{"group": "A"}) {
		t.Error("expected a to match group=A")
	}
	if mm.Matches("b", map[string]string{"group": "A"}) {
		t.Error("expected b to not match group=A")
	}
	if !mm.Matches("a", nil) {
		t.Error("expected empty filter to match everything")
	}
	if mm.Matches("missing", map[string]string{"group": "A"}) {
		t.Error("expected missing id to not match a non-empty filter")
	}
}

func TestMetadataMapGetReflectsLastSet(t *testing.T) {
	mm := NewMetadataMap()
	mm.Set("a", map[string]string{"k": "v1"})
	mm.Set("a", map[string]string{"k": "v2"})

	got, ok := mm.Get("a")
	if !ok || got["k"] != "v2" {
		t.Errorf("got %v, want k=v2", got)
	}
}
