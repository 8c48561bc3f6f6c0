package core

import "github.com/google/uuid"

// PersistedVector is a single (id, vector, metadata) tuple as read from or
// written to a persistence binding's on-disk segment (spec §4.5).
type PersistedVector struct {
	ID       string
	Vector   []float32
	Metadata map[string]string
}

// CheckpointToken is the opaque handle spec §9's "explicit two-phase
// commit" design note describes: BeginCheckpoint returns one, Commit
// consumes it.
type CheckpointToken = uuid.UUID

// PersistenceBinding is the abstract interface behind
// MemoryMappedStore (primary) and SnapshotStore (legacy); core code
// depends only on this interface, never a concrete implementation (spec
// §2's collaborator list).
type PersistenceBinding interface {
	// Dimension reports the binding's fixed dimension and whether one has
	// been established yet (either by a prior checkpoint or a completed
	// recover).
	Dimension() (int, bool)
	// BeginCheckpoint snapshots entries into a cold checkpoint buffer
	// (the hot/checkpoint swap of spec §4.5) and returns a token
	// identifying this in-flight checkpoint. The hot side remains free to
	// absorb further writes before Commit.
	BeginCheckpoint(dim int, entries []PersistedVector) (CheckpointToken, error)
	// Commit durably writes the checkpoint identified by token: atomic
	// rename + fsync, per spec §4.5.
	Commit(token CheckpointToken) error
	// Recover reads the last committed checkpoint back.
	Recover() ([]PersistedVector, error)
	// Close releases any open file handles or mapped regions.
	Close() error
}
