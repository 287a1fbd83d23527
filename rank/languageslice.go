package rank

import (
	"math/big"

	"github.com/coregx/fte/internal/regexfsm"
)

// LanguageSlice bundles a compiled DFA with its rank table and the
// bookkeeping needed to rank and unrank exactly the slice of strings of
// length max_len it accepts.
type LanguageSlice struct {
	dfa    *regexfsm.DFA
	table  *regexfsm.Table
	maxLen int

	total      *big.Int
	sliceCount *big.Int
	offset     *big.Int
	capacity   int
}

// New compiles pattern and builds its rank table up to maxLen, returning a
// LanguageSlice ready for Rank and Unrank. It fails with ErrLanguageEmpty if
// no string of length exactly maxLen is accepted.
func New(pattern string, maxLen int) (*LanguageSlice, error) {
	dfa, err := regexfsm.BuildDFA(pattern)
	if err != nil {
		return nil, err
	}
	table := regexfsm.BuildTable(dfa, maxLen)

	total := new(big.Int)
	for k := 0; k <= maxLen; k++ {
		total.Add(total, table.At(dfa.Start, k))
	}
	sliceCount := new(big.Int).Set(table.At(dfa.Start, maxLen))
	if sliceCount.Sign() == 0 {
		return nil, ErrLanguageEmpty
	}
	offset := new(big.Int).Sub(total, sliceCount)

	// capacity = floor(log2(sliceCount)) - 1, with one bit of slack.
	// BitLen() is floor(log2(x))+1 for x >= 1, so floor(log2(x)) = BitLen()-1.
	capacity := sliceCount.BitLen() - 2
	if capacity < 0 {
		capacity = 0
	}

	return &LanguageSlice{
		dfa:        dfa,
		table:      table,
		maxLen:     maxLen,
		total:      total,
		sliceCount: sliceCount,
		offset:     offset,
		capacity:   capacity,
	}, nil
}

// MaxLen returns the fixed length of strings this slice ranks.
func (ls *LanguageSlice) MaxLen() int { return ls.maxLen }

// SliceCount returns the number of strings of length MaxLen in the language.
func (ls *LanguageSlice) SliceCount() *big.Int { return new(big.Int).Set(ls.sliceCount) }

// Capacity returns the number of payload bits that fit in one ranked string,
// after reserving one bit of slack.
func (ls *LanguageSlice) Capacity() int { return ls.capacity }
