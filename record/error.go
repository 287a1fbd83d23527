// Package record turns a regex encoder into a stream transport: an Encoder
// cuts pushed plaintext into cells, AE-encrypts and regex-encodes each one,
// and a Decoder reverses the process, locating cell boundaries by walking
// max_len plus the header-derived tail length with no framing of its own.
//
// Push/Pop are sans-I/O: callers own the actual reads and writes and push
// whatever bytes arrive, in whatever chunks arrive, then pop whatever is
// ready to go. The split mirrors framing.Encoder/Decoder from pluggable
// transports, which separate wire buffering from the network loop the same
// way.
package record

import "errors"

// ErrShortCovertext, ErrShortCiphertext and ErrShortHeader are recoverable:
// the Decoder's internal buffer does not yet hold a complete cell. Pop
// leaves the buffer untouched and returns what it already decoded; the
// caller should push more bytes and pop again.
var (
	ErrShortCovertext  = errors.New("record: short covertext")
	ErrShortCiphertext = errors.New("record: short ciphertext")
	ErrShortHeader     = errors.New("record: short header")
)
