// Package ae implements the fixed-layout authenticated-encryption scheme
// this module's record and encoding layers build on: an AES-ECB header
// carrying a random IV and the plaintext length, an AES-CTR body keyed off
// that same IV, and an HMAC-SHA-512 tag truncated to 16 bytes covering both.
//
// The layout is part of the wire contract, not an implementation detail, so
// it is built directly on crypto/aes, crypto/cipher and crypto/hmac rather
// than a generic cipher.AEAD, the same way codahale-lockstitch-go composes
// its own authenticated construction from the same primitives.
package ae

import "errors"

var (
	// ErrShortHeader means fewer than HeaderLen bytes are available to even
	// attempt decrypting the header. Recoverable: more bytes may arrive.
	ErrShortHeader = errors.New("ae: short header")

	// ErrShortCiphertext means the header decrypted cleanly but the declared
	// body+tag length exceeds what's available. Recoverable.
	ErrShortCiphertext = errors.New("ae: short ciphertext")

	// ErrInvalidHeader means the decrypted header failed its marker-byte or
	// zero-padding check, or declared an implausible length. Unrecoverable.
	ErrInvalidHeader = errors.New("ae: invalid header")

	// ErrBadMac means the authentication tag did not verify. Unrecoverable.
	ErrBadMac = errors.New("ae: bad mac")
)
