package regexfsm

import "math/big"

// Table is the rank table T[q][k]: the number of length-k strings accepted
// starting from state q, for every state q and every length 0..maxLen. It is
// built once, bottom-up by length, and is read-only afterwards.
type Table struct {
	maxLen int
	rows   [][]*big.Int // rows[k][q]
}

// BuildTable computes d's rank table up to maxLen.
//
// Row k is derived only from row k-1 (T[q][k] = sum over classes c of
// classSize(c) * T[delta(q,c)][k-1]), so the table is filled one row at a
// time from the row before it. Every row is kept, not just the last two,
// because Rank and Unrank both need T[*][k] for every k encountered while
// walking a length-maxLen string.
func BuildTable(d *DFA, maxLen int) *Table {
	rows := make([][]*big.Int, maxLen+1)
	row0 := make([]*big.Int, d.NumStates)
	for q := 0; q < d.NumStates; q++ {
		if d.Accept[q] {
			row0[q] = big.NewInt(1)
		} else {
			row0[q] = big.NewInt(0)
		}
	}
	rows[0] = row0

	for k := 1; k <= maxLen; k++ {
		prev := rows[k-1]
		cur := make([]*big.Int, d.NumStates)
		for q := 0; q < d.NumStates; q++ {
			sum := new(big.Int)
			for c := 0; c < d.Classes; c++ {
				target := d.Trans[q][c]
				if prev[target].Sign() == 0 {
					continue
				}
				weight := big.NewInt(int64(d.ClassSize(c)))
				sum.Add(sum, new(big.Int).Mul(prev[target], weight))
			}
			cur[q] = sum
		}
		rows[k] = cur
	}
	return &Table{maxLen: maxLen, rows: rows}
}

// At returns T[q][k].
func (t *Table) At(q StateID, k int) *big.Int {
	return t.rows[k][q]
}

// MaxLen returns the length this table was built for.
func (t *Table) MaxLen() int {
	return t.maxLen
}
