// Package encoding implements the little-endian binary codecs shared by the
// persistence layer for vectors and metadata tables.
package encoding

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrInvalidVector is returned when a vector is nil, empty, or contains a
// non-finite component.
var ErrInvalidVector = errors.New("invalid vector")

// EncodeVector serializes a float32 vector as a length-prefixed, little-endian
// byte sequence: 4-byte count followed by count*4 bytes of component data.
func EncodeVector(vec []float32) ([]byte, error) {
	if vec == nil {
		return nil, ErrInvalidVector
	}

	buf := make([]byte, 4+len(vec)*4)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(vec)))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4+i*4:8+i*4], math.Float32bits(v))
	}
	return buf, nil
}

// DecodeVector is the inverse of EncodeVector.
func DecodeVector(data []byte) ([]float32, error) {
	if len(data) < 4 {
		return nil, ErrInvalidVector
	}

	n := binary.LittleEndian.Uint32(data[0:4])
	expected := 4 + int(n)*4
	if len(data) < expected {
		return nil, fmt.Errorf("encoding: %w: truncated vector body", ErrInvalidVector)
	}

	vec := make([]float32, n)
	for i := range vec {
		off := 4 + i*4
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[off : off+4]))
	}
	return vec, nil
}

// ValidateVector rejects nil, empty, or non-finite vectors.
func ValidateVector(vec []float32) error {
	if len(vec) == 0 {
		return ErrInvalidVector
	}
	for _, v := range vec {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return fmt.Errorf("encoding: %w: non-finite component", ErrInvalidVector)
		}
	}
	return nil
}

// WriteID writes a length-prefixed UTF-8 id to buf.
func WriteID(buf *bytes.Buffer, id string) error {
	if len(id) > math.MaxUint32 {
		return fmt.Errorf("encoding: id too long: %d bytes", len(id))
	}
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(id)))
	if _, err := buf.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := buf.WriteString(id)
	return err
}

// ReadID reads a length-prefixed UTF-8 id, returning the remaining bytes.
func ReadID(data []byte) (id string, rest []byte, err error) {
	if len(data) < 4 {
		return "", nil, fmt.Errorf("encoding: truncated id length")
	}
	n := binary.LittleEndian.Uint32(data[0:4])
	if uint32(len(data)-4) < n {
		return "", nil, fmt.Errorf("encoding: truncated id body")
	}
	id = string(data[4 : 4+n])
	rest = data[4+n:]
	return id, rest, nil
}
