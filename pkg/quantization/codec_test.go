package quantization

import "testing"

func TestNoneCodecRoundTrip(t *testing.T) {
	c := NewNoneCodec(4)
	vec := []float32{1, -2, 3.5, 0}

	enc, err := c.Encode(vec)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	dec, err := c.Decode(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for i := range vec {
		if dec[i] != vec[i] {
			t.Errorf("component %d: got %v, want %v", i, dec[i], vec[i])
		}
	}
}

func TestScalarCodecRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		vec  []float32
	}{
		{"mixed", []float32{-1, 0, 1, 2.5, -3.3}},
		{"constant", []float32{5, 5, 5, 5}},
		{"negative", []float32{-10, -5, -1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewScalarCodec(len(tc.vec))
			enc, err := c.Encode(tc.vec)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			if len(enc) != scalarHeaderSize+len(tc.vec) {
				t.Fatalf("encoded length = %d, want %d", len(enc), scalarHeaderSize+len(tc.vec))
			}
			dec, err := c.Decode(enc)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}

			min, max := tc.vec[0], tc.vec[0]
			for _, v := range tc.vec {
				if v < min {
					min = v
				}
				if v > max {
					max = v
				}
			}
			tol := (max-min)/255 + 1e-3
			if tol == 0 {
				tol = 1e-3
			}
			for i, v := range tc.vec {
				diff := dec[i] - v
				if diff < 0 {
					diff = -diff
				}
				if diff > tol {
					t.Errorf("component %d: got %v, want ~%v (tol %v)", i, dec[i], v, tol)
				}
			}
		})
	}
}

func TestScalarCodecDistancePrefersCloser(t *testing.T) {
	c := NewScalarCodec(3)
	query := []float32{1, 0, 0}

	closeEnc, _ := c.Encode([]float32{1, 0, 0})
	farEnc, _ := c.Encode([]float32{0, 1, 0})

	if d := c.Distance(query, closeEnc); d > c.Distance(query, farEnc) {
		t.Errorf("expected identical vector to be closer: close=%v far=%v", d, c.Distance(query, farEnc))
	}
}

func TestBinaryCodecRoundTripSign(t *testing.T) {
	c := NewBinaryCodec(4)
	vec := []float32{3, -1, 5, -2} // mean = 1.25

	enc, err := c.Encode(vec)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	dec, err := c.Decode(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	wantSign := []float32{1, -1, 1, -1}
	for i, want := range wantSign {
		if (dec[i] > 0) != (want > 0) {
			t.Errorf("component %d: got sign %v, want %v", i, dec[i], want)
		}
	}
}

func TestBinaryCodecDistanceZeroForIdentical(t *testing.T) {
	c := NewBinaryCodec(8)
	vec := []float32{1, 2, -1, -2, 3, -3, 0.5, -0.5}
	enc, _ := c.Encode(vec)

	if d := c.Distance(vec, enc); d != 0 {
		t.Errorf("identical vector distance = %v, want 0", d)
	}
}

func TestScalarCodecRejectsWrongDimension(t *testing.T) {
	c := NewScalarCodec(4)
	if _, err := c.Encode([]float32{1, 2}); err == nil {
		t.Error("expected error for wrong-dimension vector")
	}
}
