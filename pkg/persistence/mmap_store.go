package persistence

import "github.com/omendb/omendb/pkg/core"

// MemoryMappedStore is the primary persistence binding of spec §4.5: the
// "vectors" and "metadata" segments are read back via mmap on Recover
// (grounded on duynguyendang-gca's pkg/meb/vector mmap-backed storage),
// while Commit writes them with a conventional buffered write + fsync +
// rename, since a checkpoint is written once and then the mapping is
// dropped rather than kept live for random access.
type MemoryMappedStore struct {
	*binding
}

// NewMemoryMappedStore returns a binding rooted at path (segments are
// path+".vectors" and path+".metadata").
func NewMemoryMappedStore(path string) *MemoryMappedStore {
	return &MemoryMappedStore{binding: newBinding(path)}
}

// BeginCheckpoint implements core.PersistenceBinding.
func (s *MemoryMappedStore) BeginCheckpoint(dim int, entries []core.PersistedVector) (core.CheckpointToken, error) {
	return s.beginCheckpoint(dim, entries)
}

// Commit implements core.PersistenceBinding.
func (s *MemoryMappedStore) Commit(token core.CheckpointToken) error {
	pc, err := s.takePending(token)
	if err != nil {
		return err
	}
	return s.commitFiles(pc)
}

// Recover mmaps both segments and decodes them (spec §4.5's recover
// algorithm steps 1-3), returning one PersistedVector per entry with its
// metadata merged in.
func (s *MemoryMappedStore) Recover() ([]core.PersistedVector, error) {
	vecFile, err := openMapped(s.path + ".vectors")
	if err != nil {
		return nil, err
	}
	if vecFile == nil {
		return nil, nil
	}

	dim, entries, err := decodeVectorsSegment(vecFile.data)
	if err != nil {
		vecFile.Close()
		return nil, err
	}

	metaFile, err := openMapped(s.path + ".metadata")
	if err != nil {
		vecFile.Close()
		return nil, err
	}
	var metaByID map[string]map[string]string
	if metaFile != nil {
		metaByID, err = decodeMetadataSegment(metaFile.data)
		metaFile.Close()
		if err != nil {
			vecFile.Close()
			return nil, err
		}
	}
	vecFile.Close()

	for i := range entries {
		if m, ok := metaByID[entries[i].ID]; ok {
			entries[i].Metadata = m
		}
	}

	s.setDimension(dim)
	return entries, nil
}

// Close is a no-op: Recover's mapping is unmapped before it returns, so
// there is nothing left open between calls.
func (s *MemoryMappedStore) Close() error {
	return nil
}
