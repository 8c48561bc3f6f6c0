// Package quantization implements the scalar (8-bit) and binary (1-bit)
// vector codecs the graph and buffer share so vectors are never
// materialized twice (spec §4.4).
package quantization

// Mode identifies which codec is active for a store.
type Mode int

const (
	ModeNone Mode = iota
	ModeScalar
	ModeBinary
)

// Codec is the "codec trait" of Design Note 9: a single interface with
// None/Scalar/Binary implementations, held for the lifetime of a
// VectorStore.
type Codec interface {
	// Mode reports which concrete codec this is.
	Mode() Mode
	// Dimension returns the vector dimension this codec was created for.
	Dimension() int
	// Encode compresses vec into its on-graph storage form.
	Encode(vec []float32) ([]byte, error)
	// Decode reconstructs a float32 vector from an encoded payload.
	Decode(encoded []byte) ([]float32, error)
	// Distance computes the distance between a raw query vector and an
	// encoded stored vector. NoneCodec and ScalarCodec decode the payload
	// on the fly and use cosine distance (spec §4.4 default); BinaryCodec
	// compares bit patterns instead.
	Distance(query []float32, encoded []byte) float32
}

// NoneCodec passes vectors through unencoded: Encode/Decode are the
// identity, and distance is plain cosine distance.
type NoneCodec struct {
	dim int
}

// NewNoneCodec returns the pass-through codec for dimension dim.
func NewNoneCodec(dim int) *NoneCodec { return &NoneCodec{dim: dim} }

func (c *NoneCodec) Mode() Mode      { return ModeNone }
func (c *NoneCodec) Dimension() int  { return c.dim }

func (c *NoneCodec) Encode(vec []float32) ([]byte, error) {
	return Float32SliceToBytes(vec), nil
}

func (c *NoneCodec) Decode(encoded []byte) ([]float32, error) {
	return BytesToFloat32Slice(encoded, c.dim), nil
}

func (c *NoneCodec) Distance(query []float32, encoded []byte) float32 {
	return cosineDistance(query, BytesToFloat32Slice(encoded, c.dim))
}
