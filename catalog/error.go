// Package catalog loads the JSON format-definitions file that maps a
// covertext format name to the regex and fixed length its DFA is built
// from, keyed by a release identifier (e.g. "20131224").
package catalog

import "errors"

var (
	// ErrUnknownFormat is returned when a requested format name is not
	// present in a loaded Catalog.
	ErrUnknownFormat = errors.New("catalog: unknown format")
)
