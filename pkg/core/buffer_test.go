package core

import (
	"testing"

	"github.com/omendb/omendb/pkg/quantization"
)

func TestVectorBufferAddAndGet(t *testing.T) {
	b := NewVectorBuffer(4, 3, quantization.NewNoneCodec(3))

	added := b.AddBatch([]string{"a", "b"}, [][]float32{{1, 0, 0}, {0, 1, 0}})
	if added != 2 {
		t.Fatalf("added = %d, want 2", added)
	}
	if b.Size() != 2 {
		t.Fatalf("size = %d, want 2", b.Size())
	}

	vec, ok := b.GetVectorByID("a")
	if !ok {
		t.Fatal("expected to find id a")
	}
	if vec[0] != 1 || vec[1] != 0 || vec[2] != 0 {
		t.Errorf("vector = %v, want [1 0 0]", vec)
	}
}

func TestVectorBufferRefusesWhenFull(t *testing.T) {
	b := NewVectorBuffer(2, 2, quantization.NewNoneCodec(2))
	added := b.AddBatch([]string{"a", "b", "c"}, [][]float32{{1, 1}, {2, 2}, {3, 3}})
	if added != 2 {
		t.Fatalf("added = %d, want 2 (capacity-limited)", added)
	}
	if !b.IsFull() {
		t.Error("expected buffer to report full")
	}
	if b.Contains("c") {
		t.Error("third item should have been refused")
	}
}

func TestVectorBufferDeleteCompacts(t *testing.T) {
	b := NewVectorBuffer(4, 2, quantization.NewNoneCodec(2))
	b.AddBatch([]string{"a", "b", "c"}, [][]float32{{1, 1}, {2, 2}, {3, 3}})

	if !b.Delete("a") {
		t.Fatal("expected delete of existing id to succeed")
	}
	if b.Size() != 2 {
		t.Fatalf("size after delete = %d, want 2", b.Size())
	}
	if b.Contains("a") {
		t.Error("deleted id should not be Contained")
	}
	for _, id := range []string{"b", "c"} {
		if !b.Contains(id) {
			t.Errorf("expected %s to survive compaction", id)
		}
		if _, ok := b.GetVectorByID(id); !ok {
			t.Errorf("expected %s's vector to survive compaction", id)
		}
	}
}

func TestVectorBufferSearchLinearOrdersByDistance(t *testing.T) {
	b := NewVectorBuffer(4, 2, quantization.NewNoneCodec(2))
	b.AddBatch([]string{"a", "b", "c"}, [][]float32{{1, 0}, {0, 1}, {-1, 0}})

	results := b.SearchLinear([]float32{1, 0}, 2)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].id != "a" {
		t.Errorf("top result = %s, want a", results[0].id)
	}
	if results[0].dist > results[1].dist {
		t.Error("results not sorted ascending by distance")
	}
}

func TestVectorBufferQuantizedRoundTrip(t *testing.T) {
	b := NewVectorBuffer(4, 3, quantization.NewScalarCodec(3))
	b.AddBatch([]string{"a"}, [][]float32{{1, -2, 3}})

	vec, ok := b.GetVectorByID("a")
	if !ok {
		t.Fatal("expected to find id a")
	}
	for i, want := range []float32{1, -2, 3} {
		if diff := vec[i] - want; diff > 0.1 || diff < -0.1 {
			t.Errorf("component %d = %v, want ~%v", i, vec[i], want)
		}
	}
}
