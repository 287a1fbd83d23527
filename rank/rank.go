package rank

import "math/big"

// Rank returns the slice-relative rank of s, a string of length MaxLen. It
// fails with ErrNotInLanguage if s is not accepted by the underlying DFA at
// that length.
func (ls *LanguageSlice) Rank(s []byte) (*big.Int, error) {
	if len(s) != ls.maxLen {
		return nil, ErrNotInLanguage
	}

	q := ls.dfa.Start
	// i is the cumulative rank over every accepted string of length <=
	// MaxLen: all offset shorter strings precede s, so it starts at offset.
	i := new(big.Int).Set(ls.offset)
	for p, b := range s {
		m := ls.maxLen - p
		c := ls.dfa.ClassOf(b)
		lo, _ := ls.dfa.ClassRange(c)
		target := ls.dfa.Delta(q, b)

		for c2 := 0; c2 < c; c2++ {
			t2 := ls.dfa.Trans[q][c2]
			cnt := ls.table.At(t2, m-1)
			if cnt.Sign() == 0 {
				continue
			}
			weight := big.NewInt(int64(ls.dfa.ClassSize(c2)))
			i.Add(i, new(big.Int).Mul(cnt, weight))
		}
		if int(b) > int(lo) {
			within := ls.table.At(target, m-1)
			if within.Sign() != 0 {
				i.Add(i, new(big.Int).Mul(within, big.NewInt(int64(b)-int64(lo))))
			}
		}
		q = target
	}

	if !ls.dfa.IsAccept(q) {
		return nil, ErrNotInLanguage
	}

	result := new(big.Int).Sub(i, ls.offset)
	if result.Sign() < 0 {
		return nil, ErrNotInLanguage
	}
	return result, nil
}

// Unrank returns the length-MaxLen string at slice-relative index idx. It
// fails with ErrIntegerOutOfRange if idx does not satisfy
// 0 <= idx < SliceCount().
func (ls *LanguageSlice) Unrank(idx *big.Int) ([]byte, error) {
	if idx.Sign() < 0 || idx.Cmp(ls.sliceCount) >= 0 {
		return nil, ErrIntegerOutOfRange
	}

	j := new(big.Int).Add(idx, ls.offset)
	out := make([]byte, ls.maxLen)
	q := ls.dfa.Start

	// Skip every accepted string shorter than MaxLen (offset of them in all),
	// leaving j as a rank within the length-MaxLen slice the walk covers.
	for k := 0; k < ls.maxLen; k++ {
		j.Sub(j, ls.table.At(q, k))
	}

	for p := 0; p < ls.maxLen; p++ {
		m := ls.maxLen - p
		chosen := false
		for c := 0; c < ls.dfa.Classes && !chosen; c++ {
			target := ls.dfa.Trans[q][c]
			perByte := ls.table.At(target, m-1)
			if perByte.Sign() == 0 {
				continue
			}
			lo, hi := ls.dfa.ClassRange(c)
			for b := int(lo); b <= int(hi); b++ {
				if j.Cmp(perByte) < 0 {
					out[p] = byte(b)
					q = target
					chosen = true
					break
				}
				j.Sub(j, perByte)
			}
		}
		if !chosen {
			panic("rank: DFA/table inconsistency during unrank")
		}
	}

	if j.Sign() != 0 || !ls.dfa.IsAccept(q) {
		panic("rank: DFA/table inconsistency during unrank")
	}
	return out, nil
}
