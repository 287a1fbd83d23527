package record

import (
	"bytes"
	"errors"
	"testing"

	"github.com/coregx/fte/ae"
	"github.com/coregx/fte/encoder"
)

func testCipher(t *testing.T) *ae.Cipher {
	t.Helper()
	k1 := bytes.Repeat([]byte{0xFF}, ae.KeyLen)
	k2 := bytes.Repeat([]byte{0x00}, ae.KeyLen)
	c, err := ae.New(k1, k2)
	if err != nil {
		t.Fatalf("ae.New: %v", err)
	}
	return c
}

func testEncoder(t *testing.T) *encoder.Encoder {
	t.Helper()
	k1 := bytes.Repeat([]byte{0xFF}, ae.KeyLen)
	e, err := encoder.New("^[a-z0-9]{200}$", 200, k1)
	if err != nil {
		t.Fatalf("encoder.New: %v", err)
	}
	return e
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	enc := NewEncoder(testEncoder(t), testCipher(t))
	dec := NewDecoder(testEncoder(t), testCipher(t))

	messages := [][]byte{
		[]byte("hello"),
		bytes.Repeat([]byte{0x42}, 5000),
		[]byte(""),
	}
	for _, m := range messages {
		enc.Push(m)
	}
	covertext, err := enc.Pop()
	if err != nil {
		t.Fatalf("Encoder.Pop: %v", err)
	}

	dec.Push(covertext)
	got, err := dec.Pop()
	if err != nil {
		t.Fatalf("Decoder.Pop: %v", err)
	}

	var want []byte
	for _, m := range messages {
		want = append(want, m...)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("round trip mismatch: got %d bytes, want %d bytes", len(got), len(want))
	}
}

// TestCellConcatenationInvariant checks the central property of the record
// layer: however the Encoder's output bytes are repartitioned before
// reaching the Decoder, the concatenation of everything Decoder.Pop returns
// equals the concatenation of everything pushed to the Encoder.
func TestCellConcatenationInvariant(t *testing.T) {
	enc := NewEncoder(testEncoder(t), testCipher(t))
	dec := NewDecoder(testEncoder(t), testCipher(t))

	fragments := [][]byte{
		[]byte("the quick brown fox"),
		bytes.Repeat([]byte{0x01, 0x02, 0x03}, 2000),
		[]byte("jumps over"),
		{},
		[]byte("the lazy dog"),
	}
	var want []byte
	var allCovertext []byte
	for _, f := range fragments {
		want = append(want, f...)
		enc.Push(f)
		chunk, err := enc.Pop()
		if err != nil {
			t.Fatalf("Encoder.Pop: %v", err)
		}
		allCovertext = append(allCovertext, chunk...)
	}

	// Feed the accumulated covertext to the Decoder in small, uneven
	// partitions rather than in one shot, to exercise the buffered
	// short-read paths.
	var got []byte
	partitionSizes := []int{1, 7, 50, 3, 500, 11}
	pos := 0
	pi := 0
	for pos < len(allCovertext) {
		size := partitionSizes[pi%len(partitionSizes)]
		pi++
		end := pos + size
		if end > len(allCovertext) {
			end = len(allCovertext)
		}
		dec.Push(allCovertext[pos:end])
		pos = end

		out, err := dec.Pop()
		if err != nil && !isRecoverable(err) {
			t.Fatalf("Decoder.Pop: %v", err)
		}
		got = append(got, out...)
	}

	if !bytes.Equal(got, want) {
		t.Errorf("concatenation invariant broken: got %d bytes, want %d bytes", len(got), len(want))
	}
}

func isRecoverable(err error) bool {
	return errors.Is(err, ErrShortCovertext) || errors.Is(err, ErrShortHeader) || errors.Is(err, ErrShortCiphertext)
}

func TestDecoderWaitsForMoreData(t *testing.T) {
	enc := NewEncoder(testEncoder(t), testCipher(t))
	dec := NewDecoder(testEncoder(t), testCipher(t))

	enc.Push([]byte("a complete message"))
	covertext, err := enc.Pop()
	if err != nil {
		t.Fatalf("Encoder.Pop: %v", err)
	}

	dec.Push(covertext[:len(covertext)-1])
	out, err := dec.Pop()
	if len(out) != 0 {
		t.Errorf("expected no output from a partial covertext, got %d bytes", len(out))
	}
	if !isRecoverable(err) {
		t.Fatalf("expected a recoverable error, got %v", err)
	}

	dec.Push(covertext[len(covertext)-1:])
	out, err = dec.Pop()
	if err != nil {
		t.Fatalf("Decoder.Pop after completing covertext: %v", err)
	}
	if string(out) != "a complete message" {
		t.Errorf("got %q, want %q", out, "a complete message")
	}
}

func TestEncoderPopEmptyBuffer(t *testing.T) {
	enc := NewEncoder(testEncoder(t), testCipher(t))
	out, err := enc.Pop()
	if err != nil || out != nil {
		t.Errorf("Pop on empty buffer: got (%v, %v), want (nil, nil)", out, err)
	}
}
