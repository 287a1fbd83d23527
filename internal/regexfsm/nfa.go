// Package regexfsm compiles the restricted regex subset used to describe
// covertext languages (concatenation, alternation, Kleene star, bounded
// repetition, character classes, '.', required '^'/'$' anchors) into a
// minimized deterministic finite automaton over the byte alphabet, plus the
// per-state rank table the ranker needs.
//
// Compilation goes Thompson NFA -> powerset-determinized DFA -> minimized
// DFA (Moore's algorithm) -> streaming rank table, mirroring the classic
// regex compilation pipeline but addressed entirely by integer StateID,
// never by pointer, so the cyclic transition graph (Kleene star introduces
// back edges) never needs a cycle-aware collector.
package regexfsm

import (
	"github.com/coregx/fte/internal/conv"
	"github.com/coregx/fte/internal/sparse"
)

// StateID addresses a state in an NFA or DFA by its index.
type StateID uint32

// InvalidState marks a not-yet-patched transition target.
const InvalidState StateID = 0xFFFFFFFF

// stateKind discriminates the union inside State.
type stateKind uint8

const (
	kindByteRange stateKind = iota
	kindSplit
	kindEpsilon
	kindMatch
)

// state is one Thompson-construction NFA state. Exactly one of its fields is
// meaningful, selected by kind.
type state struct {
	kind stateKind

	// kindByteRange: consume one byte in [lo, hi], go to next.
	lo, hi byte
	next   StateID

	// kindSplit: two epsilon transitions, explored in order (left, right).
	left, right StateID
}

// NFA is a Thompson-constructed non-deterministic automaton addressed by
// StateID. Built once by Compile and consumed by determinize.
type NFA struct {
	states []state
	start  StateID
}

// builder accumulates NFA states and supports forward-patching, the
// standard technique for wiring loops (Kleene star) before their target
// state exists.
type builder struct {
	states []state
}

func newBuilder() *builder {
	return &builder{states: make([]state, 0, 32)}
}

func (b *builder) addMatch() StateID {
	id := StateID(conv.IntToUint32(len(b.states)))
	b.states = append(b.states, state{kind: kindMatch})
	return id
}

func (b *builder) addByteRange(lo, hi byte, next StateID) StateID {
	id := StateID(conv.IntToUint32(len(b.states)))
	b.states = append(b.states, state{kind: kindByteRange, lo: lo, hi: hi, next: next})
	return id
}

func (b *builder) addSplit(left, right StateID) StateID {
	id := StateID(conv.IntToUint32(len(b.states)))
	b.states = append(b.states, state{kind: kindSplit, left: left, right: right})
	return id
}

func (b *builder) addEpsilon(next StateID) StateID {
	id := StateID(conv.IntToUint32(len(b.states)))
	b.states = append(b.states, state{kind: kindEpsilon, next: next})
	return id
}

// patch rewrites a dangling (InvalidState) target on a single-output state.
// Concatenation and star/plus loops use this to stitch fragments together
// after both ends of a fragment are known.
func (b *builder) patch(id, target StateID) {
	s := &b.states[id]
	switch s.kind {
	case kindByteRange, kindEpsilon:
		s.next = target
	default:
		panic("regexfsm: patch called on a state with no single output")
	}
}

func (b *builder) nfa(start StateID) *NFA {
	return &NFA{states: b.states, start: start}
}

// NumStates reports how many NFA states were allocated during compilation.
func (n *NFA) NumStates() int { return len(n.states) }

// epsilonClosure adds to `into` every state reachable from `from` by zero or
// more epsilon/split transitions, and appends any byte-range or match states
// found along the way to `frontier` (cleared by the caller beforehand).
//
// into and stack are caller-owned scratch space (into is a sparse.Set sized
// to the NFA's fixed state count), reused across calls so determinization,
// which computes thousands of closures, allocates neither per call.
func epsilonClosure(states []state, from StateID, into *sparse.Set, frontier *[]StateID, stack *[]StateID) {
	*stack = append((*stack)[:0], from)
	for len(*stack) > 0 {
		id := (*stack)[len(*stack)-1]
		*stack = (*stack)[:len(*stack)-1]
		if !into.Insert(uint32(id)) {
			continue
		}
		s := &states[id]
		switch s.kind {
		case kindEpsilon:
			*stack = append(*stack, s.next)
		case kindSplit:
			*stack = append(*stack, s.left, s.right)
		case kindByteRange, kindMatch:
			*frontier = append(*frontier, id)
		}
	}
}
