package encoding

import "testing"

func TestEncodeDecodeMetadataRoundTrip(t *testing.T) {
	pairs := []KV{{Key: "group", Value: "A"}, {Key: "region", Value: "us"}}
	enc, err := EncodeMetadata(pairs)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	dec, err := DecodeMetadata(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(dec) != len(pairs) {
		t.Fatalf("decoded %d pairs, want %d", len(dec), len(pairs))
	}
	for i := range pairs {
		if dec[i] != pairs[i] {
			t.Errorf("pair %d = %+v, want %+v", i, dec[i], pairs[i])
		}
	}
}

func TestMapToPairsIsDeterministic(t *testing.T) {
	m := map[string]string{"z": "1", "a": "2", "m": "3"}
	pairs := MapToPairs(m)
	for i := 1; i < len(pairs); i++ {
		if pairs[i-1].Key >= pairs[i].Key {
			t.Errorf("pairs not sorted ascending by key: %+v", pairs)
		}
	}
}

func TestPairsToMapRoundTrip(t *testing.T) {
	m := map[string]string{"a": "1", "b": "2"}
	pairs := MapToPairs(m)
	back := PairsToMap(pairs)
	if len(back) != len(m) {
		t.Fatalf("got %d entries, want %d", len(back), len(m))
	}
	for k, v := range m {
		if back[k] != v {
			t.Errorf("back[%s] = %s, want %s", k, back[k], v)
		}
	}
}
