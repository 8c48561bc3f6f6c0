package core

import (
	"sync"

	"github.com/omendb/omendb/internal/encoding"
	"github.com/omendb/omendb/pkg/index"
	"github.com/omendb/omendb/pkg/quantization"
)

// validateVector rejects empty vectors with the specific ErrEmptyVector
// sentinel (spec's ValidationError taxonomy names it separately from a
// generic invalid-vector error) and delegates the NaN/Inf check to
// internal/encoding, shared with the wire codec.
func validateVector(vec []float32) error {
	if len(vec) == 0 {
		return ErrEmptyVector
	}
	return encoding.ValidateVector(vec)
}

// VectorStore mediates every insert, query, update, and persistence
// operation for one collection (spec §4.1). It owns its Buffer, Graph,
// IdMap, MetadataMap, and PersistenceBinding exclusively; it is
// single-writer, with reads permitted to overlap with reads (spec §5).
//
// Grounded on sqvect's SQLiteStore: the same method-per-file split
// (store.go/store_crud.go/store_search.go/store_index.go) and the same
// sync.RWMutex writer-priority discipline, generalized to the
// buffer+graph two-tier write path the teacher's write-through HNSW never
// needed.
type VectorStore struct {
	mu sync.RWMutex

	cfg      Config
	dimGuard DimensionGuard

	quantMode QuantizationMode
	codec     quantization.Codec // nil until dimension is learned

	buffer *VectorBuffer
	graph  *index.GraphIndex
	ids    *IdMap
	meta   *MetadataMap

	persist      PersistenceBinding
	checkpointMu sync.Mutex // serializes checkpoints (spec §5: "a second checkpoint MUST wait")

	closed bool
}

// NewVectorStore constructs an uninitialized store for one collection.
// Storage (Buffer/Graph/codec) is not allocated until the first insert
// learns the dimension (spec §4.1 "Lazy sizing").
func NewVectorStore(cfg Config) *VectorStore {
	cfg.fillDefaults()
	return &VectorStore{
		cfg:       cfg,
		quantMode: cfg.Quantization,
		ids:       NewIdMap(),
		meta:      NewMetadataMap(),
	}
}

// ensureInitialized learns dim on the first call, allocating the Buffer,
// Graph, and quantization codec; on later calls it only validates. If a
// persistence binding was registered before the dimension was known (spec
// §4.1), its own dimension is consulted/reconciled here too.
func (s *VectorStore) ensureInitialized(dim int) error {
	if s.dimGuard.IsSet() {
		if dim != s.dimGuard.Dimension() {
			return ErrDimensionMismatch
		}
		return nil
	}

	if s.persist != nil {
		if pd, ok := s.persist.Dimension(); ok && pd != dim {
			return ErrPersistenceDimensionConflict
		}
	}

	s.dimGuard.Learn(dim)
	s.codec = s.newCodec(dim)
	s.buffer = NewVectorBuffer(s.cfg.BufferSize, dim, s.codec)
	s.graph = index.NewGraphIndex(dim, s.codec, index.Params{
		R:       s.cfg.R,
		LBuild:  s.cfg.LBuild,
		LSearch: s.cfg.LSearch,
		Alpha:   s.cfg.Alpha,
	})
	return nil
}

func (s *VectorStore) newCodec(dim int) quantization.Codec {
	switch s.quantMode {
	case QuantScalar:
		return quantization.NewScalarCodec(dim)
	case QuantBinary:
		return quantization.NewBinaryCodec(dim)
	default:
		return quantization.NewNoneCodec(dim)
	}
}

// Add inserts a single (id, vector, metadata) tuple directly into the
// Graph, bypassing the Buffer (spec §4.1 "Insert routing": "every
// single-vector add goes directly to the Graph... to avoid a write cliff
// when the buffer flushes"). Returns false without mutation on any
// validation failure or duplicate id.
func (s *VectorStore) Add(id string, vector []float32, metadata map[string]string) (bool, error) {
	if err := validateVector(vector); err != nil {
		return false, wrapError("add", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, wrapError("add", ErrStoreClosed)
	}
	if err := s.dimGuard.Check(vector); err != nil {
		return false, wrapError("add", err)
	}
	if s.ids.Exists(id) {
		return false, nil
	}
	if err := s.ensureInitialized(len(vector)); err != nil {
		return false, wrapError("add", err)
	}
	if s.cfg.MaxVectors > 0 && s.ids.Count() >= s.cfg.MaxVectors {
		return false, wrapError("add", ErrCapacityExceeded)
	}

	vecCopy := append([]float32(nil), vector...)
	s.graph.Add(id, vecCopy)
	nodeIdx, _ := s.graph.NodeIndex(id)
	s.ids.Set(id, Location{Kind: InIndex, Index: nodeIdx})
	if len(metadata) > 0 {
		s.meta.Set(id, metadata)
	}

	s.cfg.Metrics.IncrCounter("omendb.add", 1)
	s.cfg.Logger.Debug("add", "id", id, "dim", len(vector))
	return true, nil
}

// AddBatch inserts a flat batch of (ids, vectors, metadata) through the
// Buffer (spec §4.1): per-item validation and duplicate-skip, preserving
// input order; when the buffer fills mid-batch, flush drains it into the
// Graph before continuing. Returns one success flag per item.
func (s *VectorStore) AddBatch(ids []string, vectors [][]float32, metadataList []map[string]string) []bool {
	results := make([]bool, len(ids))

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return results
	}

	for i, id := range ids {
		vec := vectors[i]
		if err := validateVector(vec); err != nil {
			continue
		}
		if err := s.dimGuard.Check(vec); err != nil {
			continue
		}
		if s.ids.Exists(id) {
			continue
		}
		if err := s.ensureInitialized(len(vec)); err != nil {
			continue
		}
		if s.cfg.MaxVectors > 0 && s.ids.Count() >= s.cfg.MaxVectors {
			continue
		}

		if s.buffer.IsFull() {
			s.flushLocked()
		}

		vecCopy := append([]float32(nil), vec...)
		added := s.buffer.AddBatch([]string{id}, [][]float32{vecCopy})
		if added != 1 {
			continue
		}
		slot, _ := s.buffer.index[id]
		s.ids.Set(id, Location{Kind: InBuffer, Index: uint32(slot)})
		if i < len(metadataList) && len(metadataList[i]) > 0 {
			s.meta.Set(id, metadataList[i])
		}
		results[i] = true
		s.cfg.Metrics.IncrCounter("omendb.add_batch.item", 1)
	}

	s.cfg.Logger.Debug("add_batch", "count", len(ids))
	return results
}

// flushLocked drains the Buffer into the Graph via add_batch (spec §4.1
// "Flush"). Caller must hold s.mu.
func (s *VectorStore) flushLocked() {
	if s.buffer.Size() == 0 {
		return
	}

	ids := make([]string, 0, s.buffer.Size())
	vecs := make([][]float32, 0, s.buffer.Size())
	s.buffer.Each(func(id string, vec []float32) {
		ids = append(ids, id)
		vecs = append(vecs, vec)
	})

	s.graph.AddBatch(ids, vecs)
	for _, id := range ids {
		nodeIdx, _ := s.graph.NodeIndex(id)
		s.ids.Set(id, Location{Kind: InIndex, Index: nodeIdx})
	}

	s.buffer.Clear()
	s.cfg.Metrics.IncrCounter("omendb.flush", 1)
	s.cfg.Logger.Info("flush", "count", len(ids))
}

// Flush forces a drain of the Buffer into the Graph, even if it is not
// full. Exposed for hosts that want to bound search-path latency ahead of
// a batch of queries.
func (s *VectorStore) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushLocked()
}
