package record

import (
	"bytes"
	"errors"

	"github.com/coregx/fte/ae"
	"github.com/coregx/fte/encoder"
)

// DefaultMaxCellSize bounds how much plaintext one cell carries before it is
// AE-encrypted and regex-encoded into its own covertext unit.
const DefaultMaxCellSize = 1 << 15

// Encoder buffers pushed plaintext and, on Pop, cuts it into cells of at
// most MaxCellSize bytes, each independently AE-encrypted then regex-encoded.
type Encoder struct {
	enc         *encoder.Encoder
	cipher      *ae.Cipher
	MaxCellSize int
	buf         bytes.Buffer
}

func NewEncoder(enc *encoder.Encoder, cipher *ae.Cipher) *Encoder {
	return &Encoder{enc: enc, cipher: cipher, MaxCellSize: DefaultMaxCellSize}
}

// Push appends data to the pending plaintext buffer.
func (e *Encoder) Push(data []byte) {
	e.buf.Write(data)
}

// Pop drains the pending buffer, emitting the concatenation of one covertext
// per cell. An empty buffer yields a nil slice and no error.
func (e *Encoder) Pop() ([]byte, error) {
	var out []byte
	for e.buf.Len() > 0 {
		n := e.MaxCellSize
		if e.buf.Len() < n {
			n = e.buf.Len()
		}
		cell := e.buf.Next(n)

		ciphertext, err := e.cipher.Encrypt(cell)
		if err != nil {
			return out, err
		}
		covertext, err := e.enc.Encode(ciphertext)
		if err != nil {
			return out, err
		}
		out = append(out, covertext...)
	}
	return out, nil
}

// Decoder buffers pushed covertext and, on Pop, peels off and decrypts as
// many complete cells as are present, leaving any trailing partial cell
// buffered for the next Push.
type Decoder struct {
	enc    *encoder.Encoder
	cipher *ae.Cipher
	buf    bytes.Buffer
}

func NewDecoder(enc *encoder.Encoder, cipher *ae.Cipher) *Decoder {
	return &Decoder{enc: enc, cipher: cipher}
}

// Push appends data to the pending covertext buffer.
func (d *Decoder) Push(data []byte) {
	d.buf.Write(data)
}

// Pop decodes as many complete cells as the buffered covertext holds,
// returning their concatenated plaintext. A recoverable error
// (ErrShortCovertext, ErrShortHeader, ErrShortCiphertext) means the buffer
// ends mid-cell: the bytes already decoded are still returned, the
// undecoded remainder stays buffered, and the caller should Push more and
// Pop again. A buffer drained exactly to a cell boundary yields no error.
// Any other error is fatal to the stream.
func (d *Decoder) Pop() ([]byte, error) {
	var out []byte
	for {
		plaintext, err := d.PopOne()
		if err != nil {
			if d.buf.Len() == 0 && errors.Is(err, ErrShortCovertext) {
				return out, nil
			}
			return out, err
		}
		out = append(out, plaintext...)
	}
}

// PopOne decodes at most a single complete cell from the buffered
// covertext, consuming only that cell's bytes on success. Package
// negotiate uses this directly: a NegotiateCell must be consumed without
// touching whatever application cell immediately follows it in the same
// buffered read.
func (d *Decoder) PopOne() ([]byte, error) {
	buffered := d.buf.Bytes()
	maxLen := d.enc.MaxLen()
	if len(buffered) < maxLen {
		return nil, ErrShortCovertext
	}

	fragment, remaining, err := d.enc.Decode(buffered)
	if err != nil {
		return nil, err
	}

	var header []byte
	switch {
	case len(fragment) >= ae.HeaderLen:
		header = fragment[:ae.HeaderLen]
	default:
		short := ae.HeaderLen - len(fragment)
		if len(remaining) < short {
			return nil, ErrShortHeader
		}
		header = append(append([]byte(nil), fragment...), remaining[:short]...)
	}

	ciphertextLen, err := d.cipher.GetCiphertextLen(header)
	if err != nil {
		return nil, err
	}

	tailNeeded := ciphertextLen - len(fragment)
	if tailNeeded < 0 {
		tailNeeded = 0
	}
	if len(remaining) < tailNeeded {
		return nil, ErrShortCiphertext
	}

	ciphertext := append(append([]byte(nil), fragment...), remaining[:tailNeeded]...)
	plaintext, err := d.cipher.Decrypt(ciphertext)
	if err != nil {
		return nil, err
	}

	d.buf.Next(maxLen + tailNeeded)
	return plaintext, nil
}
