package regexfsm

// DFA is a minimized deterministic finite automaton over a reduced byte
// alphabet (see byteClasses). State 0 is always the start state. There is no
// separate exported "dead state" field: a state equivalent to dead (no path
// to acceptance) is simply a state that is never accepting and whose
// transitions never lead anywhere else -- Rank/Unrank detect this exactly as
// spec'd, via a zero rank-table count, with no special-casing required.
type DFA struct {
	NumStates int
	Start     StateID
	Accept    []bool
	Classes   int // number of byte-equivalence classes
	Trans     [][]StateID
	classes   *byteClasses
}

// BuildDFA compiles pattern into a minimized DFA ready for rank-table
// construction.
func BuildDFA(pattern string) (*DFA, error) {
	n, err := Compile(pattern)
	if err != nil {
		return nil, err
	}
	bc := newByteClasses(n)
	raw := determinize(n, bc)
	dfa := minimize(raw)
	dfa.classes = bc
	return dfa, nil
}

// Delta returns the state reached from q on byte b.
func (d *DFA) Delta(q StateID, b byte) StateID {
	return d.Trans[q][d.classes.Of(b)]
}

// ClassOf returns the equivalence class of byte b.
func (d *DFA) ClassOf(b byte) int {
	return int(d.classes.Of(b))
}

// ClassRange returns the inclusive byte interval covered by class c.
func (d *DFA) ClassRange(c int) (lo, hi byte) {
	return d.classes.Range(c)
}

// ClassSize returns how many raw byte values class c covers.
func (d *DFA) ClassSize(c int) int {
	return d.classes.Size(c)
}

// IsAccept reports whether q is an accepting state.
func (d *DFA) IsAccept(q StateID) bool {
	return d.Accept[q]
}
