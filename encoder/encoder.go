package encoder

import (
	"crypto/rand"
	"encoding/binary"
	"math/big"

	"github.com/coregx/fte/ae"
	"github.com/coregx/fte/rank"
)

const (
	hdrPlainLen   = 8  // HDR_P: header plaintext bytes (unrank_payload_len, big-endian)
	hdrCipherLen  = 16 // HDR_C: header ciphertext bytes, one AES block
)

// Encoder packs and unpacks plaintext fragments into covertext shaped by a
// single compiled language. Keys are bound once, at construction, and are
// assumed constant for a given (regex, max_len) pair for the life of the
// process — this module's only process-global state is the bounded,
// never-evicted cache of compiled languages behind New.
type Encoder struct {
	ls            *rank.LanguageSlice
	k1            []byte
	capacityBytes int
}

// New returns the Encoder for (regex, maxLen), compiling and caching the
// underlying language on first use. k1 is retained for header encryption;
// k2 is not needed here (AE bulk encryption happens one layer up, in
// package record).
func New(regex string, maxLen int, k1 []byte) (*Encoder, error) {
	key := cacheKey{regex: regex, maxLen: maxLen}
	return global.getOrBuild(key, func() (*Encoder, error) {
		ls, err := rank.New(regex, maxLen)
		if err != nil {
			return nil, err
		}
		capacityBytes := ls.Capacity() / 8
		return &Encoder{
			ls:            ls,
			k1:            append([]byte(nil), k1...),
			capacityBytes: capacityBytes,
		}, nil
	})
}

// MaxLen returns the fixed length of the ranked prefix this encoder emits.
func (e *Encoder) MaxLen() int { return e.ls.MaxLen() }

// CapacityBytes returns how many payload bytes fit inside one ranked
// prefix, header included.
func (e *Encoder) CapacityBytes() int { return e.capacityBytes }

// Encode packs x into a covertext: a ranked prefix of length MaxLen carrying
// as much of x as fits behind an encrypted length header, followed by
// whatever didn't fit as a plaintext tail.
func (e *Encoder) Encode(x []byte) ([]byte, error) {
	if e.capacityBytes < hdrCipherLen {
		return nil, ErrCapacityTooSmall
	}

	carry := e.capacityBytes - hdrCipherLen
	unrankPayloadLen := len(x)
	if unrankPayloadLen > carry {
		unrankPayloadLen = carry
	}

	hdrPlain := make([]byte, 16)
	binary.BigEndian.PutUint64(hdrPlain[16-hdrPlainLen:], uint64(unrankPayloadLen))
	if _, err := rand.Read(hdrPlain[:16-hdrPlainLen]); err != nil {
		return nil, err
	}
	hdr, err := ae.EncryptBlock(e.k1, hdrPlain)
	if err != nil {
		return nil, err
	}

	payload := make([]byte, e.capacityBytes)
	if _, err := rand.Read(payload); err != nil {
		return nil, err
	}
	copy(payload[:hdrCipherLen], hdr)
	copy(payload[e.capacityBytes-unrankPayloadLen:], x[:unrankPayloadLen])

	idx := new(big.Int).SetBytes(payload)
	s, err := e.ls.Unrank(idx)
	if err != nil {
		return nil, err
	}

	covertext := make([]byte, 0, len(s)+len(x)-unrankPayloadLen)
	covertext = append(covertext, s...)
	covertext = append(covertext, x[unrankPayloadLen:]...)
	return covertext, nil
}

// Decode recovers the plaintext fragment carried inside c's leading MaxLen
// bytes. remaining is everything in c beyond the ranked prefix: together,
// plaintextFragment and remaining reassemble the AE ciphertext this
// covertext carries, but it's the record layer, not this package, that
// knows where that ciphertext ends within remaining.
func (e *Encoder) Decode(c []byte) (plaintextFragment, remaining []byte, err error) {
	if len(c) < e.ls.MaxLen() {
		return nil, nil, ErrShortCovertext
	}

	i, err := e.ls.Rank(c[:e.ls.MaxLen()])
	if err != nil {
		return nil, nil, err
	}

	if e.capacityBytes < hdrCipherLen {
		return nil, nil, ErrCorruptHeader
	}
	payload := make([]byte, e.capacityBytes)
	i.FillBytes(payload)

	hdrPlain, err := ae.DecryptBlock(e.k1, payload[:hdrCipherLen])
	if err != nil {
		return nil, nil, err
	}
	unrankPayloadLen := int(binary.BigEndian.Uint64(hdrPlain[16-hdrPlainLen:]))

	maxCarry := e.capacityBytes - hdrCipherLen
	if unrankPayloadLen < 0 || unrankPayloadLen > maxCarry {
		return nil, nil, ErrCorruptHeader
	}

	fragment := payload[e.capacityBytes-unrankPayloadLen:]
	return fragment, c[e.ls.MaxLen():], nil
}
