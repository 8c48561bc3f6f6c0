package persistence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/omendb/omendb/pkg/core"
)

func testEntries() []core.PersistedVector {
	return []core.PersistedVector{
		{ID: "a", Vector: []float32{1, 2, 3}, Metadata: map[string]string{"group": "A"}},
		{ID: "b", Vector: []float32{4, 5, 6}},
		{ID: "c", Vector: []float32{-1, -2, -3}, Metadata: map[string]string{"group": "B", "region": "eu"}},
	}
}

func TestMemoryMappedStoreCheckpointRecover(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store")
	s := NewMemoryMappedStore(path)

	entries := testEntries()
	token, err := s.BeginCheckpoint(3, entries)
	if err != nil {
		t.Fatalf("begin checkpoint: %v", err)
	}
	if err := s.Commit(token); err != nil {
		t.Fatalf("commit: %v", err)
	}

	for _, suffix := range []string{".vectors", ".metadata"} {
		if _, err := os.Stat(path + suffix); err != nil {
			t.Errorf("expected %s to exist: %v", suffix, err)
		}
	}

	recovered, err := s.Recover()
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if len(recovered) != len(entries) {
		t.Fatalf("recovered %d entries, want %d", len(recovered), len(entries))
	}

	byID := make(map[string]core.PersistedVector, len(recovered))
	for _, e := range recovered {
		byID[e.ID] = e
	}
	for _, want := range entries {
		got, ok := byID[want.ID]
		if !ok {
			t.Fatalf("missing recovered entry %s", want.ID)
		}
		for i := range want.Vector {
			if got.Vector[i] != want.Vector[i] {
				t.Errorf("%s: component %d = %v, want %v", want.ID, i, got.Vector[i], want.Vector[i])
			}
		}
		for k, v := range want.Metadata {
			if got.Metadata[k] != v {
				t.Errorf("%s: metadata[%s] = %v, want %v", want.ID, k, got.Metadata[k], v)
			}
		}
	}

	if dim, ok := s.Dimension(); !ok || dim != 3 {
		t.Errorf("Dimension() = (%d, %v), want (3, true)", dim, ok)
	}
}

func TestMemoryMappedStoreRecoverNoFilesYet(t *testing.T) {
	s := NewMemoryMappedStore(filepath.Join(t.TempDir(), "missing"))
	recovered, err := s.Recover()
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if recovered != nil {
		t.Errorf("expected nil recovered set, got %v", recovered)
	}
}

func TestSnapshotStoreCheckpointRecover(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap")
	s := NewSnapshotStore(path)

	entries := testEntries()
	token, err := s.BeginCheckpoint(3, entries)
	if err != nil {
		t.Fatalf("begin checkpoint: %v", err)
	}
	if err := s.Commit(token); err != nil {
		t.Fatalf("commit: %v", err)
	}

	recovered, err := s.Recover()
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if len(recovered) != len(entries) {
		t.Fatalf("recovered %d entries, want %d", len(recovered), len(entries))
	}
}

func TestCheckpointAtomicRenameLeavesNoTempFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atomic")
	s := NewSnapshotStore(path)

	token, _ := s.BeginCheckpoint(3, testEntries())
	if err := s.Commit(token); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if _, err := os.Stat(path + ".vectors.tmp"); !os.IsNotExist(err) {
		t.Errorf("expected temp file to be gone after commit, stat err = %v", err)
	}
}
