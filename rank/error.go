// Package rank implements the rank/unrank bijection between the integers
// [0, slice_count) and the length-max_len strings accepted by a regular
// language, built on top of a minimized DFA and its rank table.
package rank

import "errors"

var (
	// ErrLanguageEmpty is returned by New when the language's fixed-length
	// slice contains no strings at all.
	ErrLanguageEmpty = errors.New("rank: language slice is empty")

	// ErrNotInLanguage is returned by Rank when the input string is not
	// accepted by the DFA at length max_len.
	ErrNotInLanguage = errors.New("rank: string not in language slice")

	// ErrIntegerOutOfRange is returned by Unrank when the requested index
	// falls outside [0, slice_count).
	ErrIntegerOutOfRange = errors.New("rank: integer out of range")
)
