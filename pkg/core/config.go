package core

import "github.com/dustin/go-humanize"

// QuantizationMode selects the codec applied to vectors before graph
// insertion. It must be fixed before the first insert (spec §4.4).
type QuantizationMode int

const (
	QuantNone QuantizationMode = iota
	QuantScalar
	QuantBinary
)

func (m QuantizationMode) String() string {
	switch m {
	case QuantScalar:
		return "scalar"
	case QuantBinary:
		return "binary"
	default:
		return "none"
	}
}

// Algorithm names the ANN algorithm used by the graph tier. Only Vamana is
// implemented; the field is informational, matching the spec's
// "only one algorithm is implemented" note.
type Algorithm string

const AlgorithmVamana Algorithm = "vamana"

// Config holds the knobs that shape storage and must not change after the
// first insert.
type Config struct {
	// BufferSize is the capacity of the write-ahead VectorBuffer.
	BufferSize int
	// Algorithm is informational (only "vamana" is implemented).
	Algorithm Algorithm
	// UseColumnar is reserved for a future storage layout; has no effect.
	UseColumnar bool
	// IsServer is informational, set by hosts that embed the core inside a
	// long-running server process versus a one-shot CLI/tool.
	IsServer bool
	// Quantization selects the vector codec.
	Quantization QuantizationMode

	// Vamana graph parameters, see spec §4.3.1.
	R       int     // max out-degree
	LBuild  int     // build-time beam width
	// LSearch is passed to the graph's parameters (a value <= 0 becomes the
	// default), but searches do not read it: a search without an explicit
	// beam width uses index.AdaptiveBeamWidth.
	LSearch int
	Alpha   float32 // prune diversity factor

	// MaxVectors is an implementation-defined safety cap on live vector
	// count, checked by Add and AddBatch; 0 disables the cap.
	MaxVectors int

	Logger  Logger
	Metrics Metrics
}

// DefaultConfig returns the spec's documented defaults (§4.3.1).
func DefaultConfig() Config {
	return Config{
		BufferSize:   4096,
		Algorithm:    AlgorithmVamana,
		Quantization: QuantNone,
		R:            64,
		LBuild:       100,
		LSearch:      70,
		Alpha:        1.2,
		MaxVectors:   0,
		Logger:       NopLogger(),
		Metrics:      NopMetrics(),
	}
}

func (c *Config) fillDefaults() {
	d := DefaultConfig()
	if c.BufferSize <= 0 {
		c.BufferSize = d.BufferSize
	}
	if c.Algorithm == "" {
		c.Algorithm = d.Algorithm
	}
	if c.R <= 0 {
		c.R = d.R
	}
	if c.LBuild <= 0 {
		c.LBuild = d.LBuild
	}
	if c.LSearch <= 0 {
		c.LSearch = d.LSearch
	}
	if c.Alpha <= 0 {
		c.Alpha = d.Alpha
	}
	if c.Logger == nil {
		c.Logger = d.Logger
	}
	if c.Metrics == nil {
		c.Metrics = d.Metrics
	}
}

// Stats reports the answer to the spec's stats() operation.
type Stats struct {
	Count       uint64
	Dimension   int
	Algorithm   Algorithm
	StorageMode string // "empty", "buffer-only", "graph", "mixed"
	Quantization QuantizationMode

	BufferCount int
	GraphCount  int
	GraphEdges  uint64
	AvgDegree   float64

	BytesVectors int64
	BytesGraph   int64
	BytesBuffer  int64
}

// HumanVectors returns Stats.BytesVectors formatted like "12 MB".
func (s Stats) HumanVectors() string { return humanize.Bytes(uint64(max64(s.BytesVectors))) }

// HumanGraph returns Stats.BytesGraph formatted like "12 MB".
func (s Stats) HumanGraph() string { return humanize.Bytes(uint64(max64(s.BytesGraph))) }

// HumanBuffer returns Stats.BytesBuffer formatted like "12 MB".
func (s Stats) HumanBuffer() string { return humanize.Bytes(uint64(max64(s.BytesBuffer))) }

func max64(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
