package persistence

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/omendb/omendb/pkg/core"
)

// pendingCheckpoint is the cold-side snapshot produced by BeginCheckpoint
// and not yet durably written; Commit consumes exactly one of these (spec
// §9's "explicit two-phase commit" design note).
type pendingCheckpoint struct {
	dim          int
	vectorsData  []byte
	metadataData []byte
}

// binding holds the state shared by MemoryMappedStore and SnapshotStore:
// the backing path, the dimension learned from the first checkpoint or
// recover, and in-flight checkpoints keyed by opaque token.
type binding struct {
	mu       sync.Mutex
	path     string
	dim      int
	dimKnown bool
	pending  map[core.CheckpointToken]pendingCheckpoint
}

func newBinding(path string) *binding {
	return &binding{path: path, pending: make(map[core.CheckpointToken]pendingCheckpoint)}
}

// Dimension implements core.PersistenceBinding.
func (b *binding) Dimension() (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dim, b.dimKnown
}

// beginCheckpoint encodes entries into both segments immediately (the
// "swap hot <-> checkpoint" of spec §4.5 is, in this in-process
// implementation, the act of handing the coordinator's snapshot off to a
// token-keyed holding area) and stashes them for Commit.
func (b *binding) beginCheckpoint(dim int, entries []core.PersistedVector) (core.CheckpointToken, error) {
	token := uuid.New()
	pc := pendingCheckpoint{
		dim:          dim,
		vectorsData:  encodeVectorsSegment(dim, entries),
		metadataData: encodeMetadataSegment(entries),
	}

	b.mu.Lock()
	b.pending[token] = pc
	b.mu.Unlock()
	return token, nil
}

func (b *binding) takePending(token core.CheckpointToken) (pendingCheckpoint, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	pc, ok := b.pending[token]
	if !ok {
		return pendingCheckpoint{}, fmt.Errorf("persistence: unknown checkpoint token %s", token)
	}
	delete(b.pending, token)
	return pc, nil
}

// commitFiles performs the durable half of spec §4.5's checkpoint
// algorithm: atomic rename + fsync of both segments.
func (b *binding) commitFiles(pc pendingCheckpoint) error {
	if err := writeAtomic(b.path+".vectors", pc.vectorsData); err != nil {
		return err
	}
	if err := writeAtomic(b.path+".metadata", pc.metadataData); err != nil {
		return err
	}

	b.mu.Lock()
	b.dim = pc.dim
	b.dimKnown = true
	b.mu.Unlock()
	return nil
}

func (b *binding) setDimension(dim int) {
	b.mu.Lock()
	b.dim = dim
	b.dimKnown = true
	b.mu.Unlock()
}
