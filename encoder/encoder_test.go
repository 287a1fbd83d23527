package encoder

import (
	"bytes"
	"testing"
)

func testK1() []byte {
	return bytes.Repeat([]byte{0xFF}, 16)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	e, err := New("^[a-z0-9]{40}$", 40, testK1())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tests := [][]byte{
		nil,
		[]byte("x"),
		[]byte("a medium length message under capacity"),
		bytes.Repeat([]byte{0x01}, e.CapacityBytes()*4),
	}
	for _, x := range tests {
		covertext, err := e.Encode(x)
		if err != nil {
			t.Fatalf("Encode(%d bytes): %v", len(x), err)
		}
		if len(covertext) < e.MaxLen() {
			t.Fatalf("covertext shorter than MaxLen")
		}

		fragment, remaining, err := e.Decode(covertext)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		got := append(append([]byte{}, fragment...), remaining...)
		want := x
		if !bytes.Equal(got, want) {
			t.Errorf("round trip mismatch for %d-byte input: got %q, want %q", len(x), got, want)
		}
	}
}

func TestDecodeShortCovertext(t *testing.T) {
	e, err := New("^[a-z0-9]{40}$", 40, testK1())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, _, err := e.Decode(make([]byte, 10)); err != ErrShortCovertext {
		t.Errorf("got %v, want ErrShortCovertext", err)
	}
}

func TestEncodeLowCapacityFormatReturnsError(t *testing.T) {
	// (0|1)+ over 32 bytes has a slice count of 2^32, giving a capacity of
	// only a few bytes -- far too small to hold the 16-byte header.
	e, err := New("^(0|1)+$", 32, testK1())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if e.CapacityBytes() >= 16 {
		t.Fatalf("test format has capacity %d, want < 16 to exercise the guard", e.CapacityBytes())
	}
	if _, err := e.Encode([]byte("x")); err != ErrCapacityTooSmall {
		t.Errorf("Encode on an undersized format: got %v, want ErrCapacityTooSmall", err)
	}
}

func TestNewCachesByRegexAndMaxLen(t *testing.T) {
	e1, err := New("^[a-z]{20}$", 20, testK1())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e2, err := New("^[a-z]{20}$", 20, testK1())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if e1 != e2 {
		t.Error("expected New to return the cached Encoder for the same (regex, maxLen)")
	}
}
