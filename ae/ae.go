package ae

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"math"
)

const (
	// KeyLen is the required length, in bytes, of both K1 (block cipher key)
	// and K2 (MAC key).
	KeyLen = 16

	// HeaderLen is the size in bytes of the encrypted header H.
	HeaderLen = 16

	// TagLen is the size in bytes of the truncated HMAC tag T.
	TagLen = 16

	ivLen         = 7
	headerMarker  = 0x01
	counterMarker = 0x02
	minCiphertext = HeaderLen + TagLen
)

// maxPlaintext is the largest length the 8-byte length field can carry while
// still passing the header's zero-padding check: the upper 4 bytes of the
// big-endian u64 must be zero, so the value fits in 32 bits.
const maxPlaintext uint64 = math.MaxUint32

// Cipher holds the two keys this scheme needs: K1 for AES-ECB/CTR, K2 for
// the HMAC tag. The published test-vector defaults (K1 = 0xFF*16,
// K2 = 0x00*16) exist for interoperability with reference traffic, not for
// production use.
type Cipher struct {
	k1 []byte
	k2 []byte
}

// New validates k1 and k2 and returns a Cipher bound to them.
func New(k1, k2 []byte) (*Cipher, error) {
	if len(k1) != KeyLen {
		return nil, fmt.Errorf("ae: K1 must be %d bytes, got %d", KeyLen, len(k1))
	}
	if len(k2) != KeyLen {
		return nil, fmt.Errorf("ae: K2 must be %d bytes, got %d", KeyLen, len(k2))
	}
	return &Cipher{
		k1: append([]byte(nil), k1...),
		k2: append([]byte(nil), k2...),
	}, nil
}

// Encrypt returns H || C || T for plaintext, drawing a fresh 7-byte IV from
// crypto/rand.
func (c *Cipher) Encrypt(plaintext []byte) ([]byte, error) {
	if uint64(len(plaintext)) > maxPlaintext {
		return nil, fmt.Errorf("ae: plaintext too long (%d bytes)", len(plaintext))
	}

	block, err := aes.NewCipher(c.k1)
	if err != nil {
		return nil, err
	}

	iv := make([]byte, ivLen)
	if _, err := rand.Read(iv); err != nil {
		return nil, err
	}

	hdrPlain := make([]byte, HeaderLen)
	hdrPlain[0] = headerMarker
	copy(hdrPlain[1:1+ivLen], iv)
	binary.BigEndian.PutUint64(hdrPlain[8:16], uint64(len(plaintext)))

	h := make([]byte, HeaderLen)
	block.Encrypt(h, hdrPlain)

	civ := make([]byte, block.BlockSize())
	civ[0] = counterMarker
	copy(civ[1:1+ivLen], iv)

	ctrStream := cipher.NewCTR(block, civ)
	body := make([]byte, len(plaintext))
	ctrStream.XORKeyStream(body, plaintext)

	mac := hmac.New(sha512.New, c.k2)
	mac.Write(h)
	mac.Write(body)
	tag := mac.Sum(nil)[:TagLen]

	out := make([]byte, 0, HeaderLen+len(body)+TagLen)
	out = append(out, h...)
	out = append(out, body...)
	out = append(out, tag...)
	return out, nil
}

// decodeHeader decrypts and validates the leading HeaderLen bytes of a
// ciphertext, returning the declared body length and the IV. It does no
// body or MAC work, so GetCiphertextLen can share it with Decrypt.
func decodeHeader(block cipher.Block, prefix []byte) (length uint64, iv []byte, err error) {
	if len(prefix) < HeaderLen {
		return 0, nil, ErrShortHeader
	}
	hdrPlain := make([]byte, HeaderLen)
	block.Decrypt(hdrPlain, prefix[:HeaderLen])

	if hdrPlain[0] != headerMarker {
		return 0, nil, ErrInvalidHeader
	}
	for _, b := range hdrPlain[8:12] {
		if b != 0 {
			return 0, nil, ErrInvalidHeader
		}
	}
	length = binary.BigEndian.Uint64(hdrPlain[8:16])
	if length > maxPlaintext {
		return 0, nil, ErrInvalidHeader
	}
	return length, hdrPlain[1 : 1+ivLen], nil
}

// Decrypt recovers the plaintext from H || C || T, verifying the header
// padding and the MAC before returning anything.
func (c *Cipher) Decrypt(ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(c.k1)
	if err != nil {
		return nil, err
	}

	length, iv, err := decodeHeader(block, ciphertext)
	if err != nil {
		return nil, err
	}

	if uint64(len(ciphertext)) < length+uint64(minCiphertext) {
		return nil, ErrShortCiphertext
	}
	l := int(length)
	body := ciphertext[HeaderLen : HeaderLen+l]
	tagExpected := ciphertext[HeaderLen+l : HeaderLen+l+TagLen]

	mac := hmac.New(sha512.New, c.k2)
	mac.Write(ciphertext[:HeaderLen])
	mac.Write(body)
	tagGot := mac.Sum(nil)[:TagLen]
	if !hmac.Equal(tagGot, tagExpected) {
		return nil, ErrBadMac
	}

	civ := make([]byte, block.BlockSize())
	civ[0] = counterMarker
	copy(civ[1:1+ivLen], iv)

	plaintext := make([]byte, l)
	cipher.NewCTR(block, civ).XORKeyStream(plaintext, body)
	return plaintext, nil
}

// GetCiphertextLen returns the total length (header + body + tag) a
// ciphertext beginning with prefix will occupy, decrypting only the header.
// The record layer uses this to find a ciphertext's end without doing the
// MAC and body work Decrypt would.
func (c *Cipher) GetCiphertextLen(prefix []byte) (int, error) {
	block, err := aes.NewCipher(c.k1)
	if err != nil {
		return 0, err
	}
	length, _, err := decodeHeader(block, prefix)
	if err != nil {
		return 0, err
	}
	return int(length) + minCiphertext, nil
}

// EncryptBlock performs raw AES-ECB encryption of a single 16-byte block
// under key. It is the only way to get ECB semantics out of crypto/cipher,
// which intentionally exposes no ECB BlockMode: encrypting a single block
// *is* ECB, and needs no mode wrapper at all.
//
// Used by the regex encoder's own 16-byte header, never for bulk payloads.
func EncryptBlock(key, block []byte) ([]byte, error) {
	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(block) != c.BlockSize() {
		return nil, fmt.Errorf("ae: block must be %d bytes, got %d", c.BlockSize(), len(block))
	}
	out := make([]byte, len(block))
	c.Encrypt(out, block)
	return out, nil
}

// DecryptBlock is the inverse of EncryptBlock.
func DecryptBlock(key, block []byte) ([]byte, error) {
	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(block) != c.BlockSize() {
		return nil, fmt.Errorf("ae: block must be %d bytes, got %d", c.BlockSize(), len(block))
	}
	out := make([]byte, len(block))
	c.Decrypt(out, block)
	return out, nil
}
