// Package negotiate implements format discovery: a client that doesn't
// share a pre-agreed catalog entry with its peer sends a NegotiateCell
// naming the format pair it intends to use, and a server probes its
// catalog's request-side formats until one decodes the cell.
package negotiate

import "errors"

var (
	// ErrShortCell means fewer than CellLen bytes were recovered.
	ErrShortCell = errors.New("negotiate: short cell")

	// ErrInvalidCell means the cell's zero-padding region was nonzero.
	ErrInvalidCell = errors.New("negotiate: invalid cell")

	// ErrLanguageTooLong and ErrReleaseTooLong mean a name didn't fit the
	// cell's fixed fields.
	ErrLanguageTooLong = errors.New("negotiate: language name too long")
	ErrReleaseTooLong  = errors.New("negotiate: release identifier too long")

	// ErrUnknownLanguage means a decoded cell named a format pair absent
	// from the server's catalog.
	ErrUnknownLanguage = errors.New("negotiate: unknown language")

	// ErrNegotiateTimeout means no candidate format decoded the cell,
	// either because the deadline expired or because every candidate failed.
	ErrNegotiateTimeout = errors.New("negotiate: timed out")
)
