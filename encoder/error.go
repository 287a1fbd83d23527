// Package encoder combines a ranked language slice (package rank) with
// authenticated encryption (package ae) into a single regex-shaped
// covertext: Encode hides a plaintext fragment's length inside a small
// encrypted header carried within the ranked prefix, Decode reverses it.
package encoder

import "errors"

var (
	// ErrShortCovertext means fewer than max_len bytes are available to rank.
	ErrShortCovertext = errors.New("encoder: short covertext")

	// ErrCorruptHeader means the decrypted unrank_payload_len exceeds the
	// ranked prefix's capacity, which can only happen if the prefix was
	// forged or corrupted.
	ErrCorruptHeader = errors.New("encoder: corrupt header")

	// ErrCapacityTooSmall means the language's ranked prefix cannot even
	// hold the 16-byte header, so no payload of any length can be carried.
	ErrCapacityTooSmall = errors.New("encoder: capacity too small for header")
)
