package persistence

import (
	"fmt"
	"os"

	"github.com/omendb/omendb/pkg/core"
)

// SnapshotStore is the "legacy" binding named in spec §4: a plain
// (non-mmap) binary writer/reader sharing MemoryMappedStore's wire
// format, for hosts that cannot or do not want to mmap (e.g. network
// filesystems, constrained sandboxes).
type SnapshotStore struct {
	*binding
}

// NewSnapshotStore returns a binding rooted at path.
func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{binding: newBinding(path)}
}

// BeginCheckpoint implements core.PersistenceBinding.
func (s *SnapshotStore) BeginCheckpoint(dim int, entries []core.PersistedVector) (core.CheckpointToken, error) {
	return s.beginCheckpoint(dim, entries)
}

// Commit implements core.PersistenceBinding.
func (s *SnapshotStore) Commit(token core.CheckpointToken) error {
	pc, err := s.takePending(token)
	if err != nil {
		return err
	}
	return s.commitFiles(pc)
}

// Recover reads both segments into memory with a plain os.ReadFile and
// decodes them, mirroring MemoryMappedStore.Recover without the mapping.
func (s *SnapshotStore) Recover() ([]core.PersistedVector, error) {
	vecData, err := readFileIfExists(s.path + ".vectors")
	if err != nil {
		return nil, err
	}
	if vecData == nil {
		return nil, nil
	}

	dim, entries, err := decodeVectorsSegment(vecData)
	if err != nil {
		return nil, err
	}

	metaData, err := readFileIfExists(s.path + ".metadata")
	if err != nil {
		return nil, err
	}
	if metaData != nil {
		metaByID, err := decodeMetadataSegment(metaData)
		if err != nil {
			return nil, err
		}
		for i := range entries {
			if m, ok := metaByID[entries[i].ID]; ok {
				entries[i].Metadata = m
			}
		}
	}

	s.setDimension(dim)
	return entries, nil
}

// Close is a no-op: Recover never keeps a file handle open.
func (s *SnapshotStore) Close() error { return nil }

func readFileIfExists(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("persistence: read %s: %w", path, err)
	}
	return data, nil
}
