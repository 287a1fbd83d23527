package regexfsm

import (
	"encoding/binary"
	"sort"

	"github.com/coregx/fte/internal/conv"
	"github.com/coregx/fte/internal/sparse"
)

// rawDFA is the output of powerset determinization, before minimization:
// every state discovered is reachable from the start state, but states may
// still be Myhill-Nerode equivalent to one another.
type rawDFA struct {
	numClasses int
	trans      [][]StateID // [state][class] -> state
	accept     []bool
	start      StateID
}

// determinize converts a Thompson NFA into a DFA via the classic subset
// construction, working over byte-equivalence classes rather than raw bytes
// so the transition table stays small even for wide character classes.
//
// State 0 of the result is always the dead state (empty NFA-state set):
// every class not otherwise reachable self-loops there.
func determinize(n *NFA, bc *byteClasses) *rawDFA {
	numClasses := bc.NumClasses()
	closure := sparse.New(len(n.states))
	var frontier []StateID
	var stack []StateID

	type discovered struct {
		members []StateID
		accept  bool
	}
	var states []discovered
	seen := map[string]StateID{}

	keyOf := func(members []StateID) string {
		sorted := append([]StateID(nil), members...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		buf := make([]byte, 4*len(sorted))
		for i, id := range sorted {
			binary.BigEndian.PutUint32(buf[4*i:], uint32(id))
		}
		return string(buf)
	}

	internFrontier := func(members []StateID) StateID {
		key := keyOf(members)
		if id, ok := seen[key]; ok {
			return id
		}
		accept := false
		for _, id := range members {
			if n.states[id].kind == kindMatch {
				accept = true
				break
			}
		}
		id := StateID(conv.IntToUint32(len(states)))
		cp := append([]StateID(nil), members...)
		states = append(states, discovered{members: cp, accept: accept})
		seen[key] = id
		return id
	}

	// State 0: the dead state, the empty subset.
	deadID := internFrontier(nil)

	closure.Clear()
	frontier = frontier[:0]
	epsilonClosure(n.states, n.start, closure, &frontier, &stack)
	start := internFrontier(frontier)

	trans := map[StateID][]StateID{}
	processed := map[StateID]bool{deadID: true}
	trans[deadID] = make([]StateID, numClasses)

	worklist := []StateID{start}
	for len(worklist) > 0 {
		cur := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		if processed[cur] {
			continue
		}
		processed[cur] = true

		row := make([]StateID, numClasses)
		members := states[cur].members
		for c := 0; c < numClasses; c++ {
			lo, _ := bc.Range(c)
			closure.Clear()
			frontier = frontier[:0]
			for _, sid := range members {
				s := &n.states[sid]
				if s.kind == kindByteRange && s.lo <= lo && lo <= s.hi {
					epsilonClosure(n.states, s.next, closure, &frontier, &stack)
				}
			}
			if len(frontier) == 0 {
				row[c] = deadID
				continue
			}
			next := internFrontier(frontier)
			row[c] = next
			if !processed[next] {
				worklist = append(worklist, next)
			}
		}
		trans[cur] = row
	}

	out := &rawDFA{
		numClasses: numClasses,
		trans:      make([][]StateID, len(states)),
		accept:     make([]bool, len(states)),
		start:      start,
	}
	for id := range states {
		out.accept[id] = states[id].accept
		if row, ok := trans[StateID(id)]; ok {
			out.trans[id] = row
		} else {
			out.trans[id] = make([]StateID, numClasses)
		}
	}
	return out
}
