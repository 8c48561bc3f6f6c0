package core

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced to callers, per the error taxonomy.
var (
	// ErrEmptyVector is returned when an inserted vector has zero length.
	ErrEmptyVector = errors.New("empty vector")
	// ErrDimensionMismatch is returned when a vector's length does not match
	// the dimension fixed by the store's first insert.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrDuplicateID is returned when adding an id already present in the
	// buffer or the graph.
	ErrDuplicateID = errors.New("duplicate id")
	// ErrNotFound names the taxonomy's missing-id case. The store's lookups
	// and Delete/Update report a missing id with a false result instead of
	// returning this error.
	ErrNotFound = errors.New("id not found")
	// ErrStoreClosed is returned once a store has been closed.
	ErrStoreClosed = errors.New("store is closed")
	// ErrInvalidK is returned for a non-positive top-k request.
	ErrInvalidK = errors.New("invalid k")
	// ErrAlreadyHasVectors names the case of enabling quantization once the
	// store already holds vectors. EnableScalarQuantization /
	// EnableBinaryQuantization report it by returning false, not this error.
	ErrAlreadyHasVectors = errors.New("quantization must be enabled before first insert")
	// ErrPersistenceDimensionConflict is returned by Add when a persistence
	// binding attached before the first insert already holds a different
	// dimension (AddBatch reports such items as false). SetPersistence
	// reports a conflict with an already-fixed dimension by returning false.
	ErrPersistenceDimensionConflict = errors.New("persisted dimension conflicts with store dimension")
	// ErrCapacityExceeded is returned by Add when the implementation-defined
	// maximum live vector count is reached; AddBatch reports such items as
	// false.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrCollectionExists names the case of creating a collection whose
	// name is already registered; CollectionRegistry.Create reports it by
	// returning false, not this error.
	ErrCollectionExists = errors.New("collection already exists")
	// ErrCollectionNotFound is returned by CollectionRegistry.SearchIn,
	// SearchWithBeamIn and BatchSearchIn for an unregistered name; Get and
	// Delete report an unregistered name by returning false.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrDefaultCollection names the case of deleting the reserved "default"
	// collection; CollectionRegistry.Delete reports it by returning false,
	// not this error.
	ErrDefaultCollection = errors.New("cannot delete the default collection")
)

// StoreError wraps an underlying error with the operation name that
// produced it, so callers can log "op: cause" without string parsing.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("omendb: %v", e.Err)
	}
	return fmt.Sprintf("omendb: %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying error for errors.Is/errors.As.
func (e *StoreError) Unwrap() error { return e.Err }

// Is supports errors.Is(err, target) by delegating to the wrapped error.
func (e *StoreError) Is(target error) bool { return errors.Is(e.Err, target) }

// wrapError wraps err with an operation tag, or returns nil unchanged.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
