package regexfsm

import (
	"fmt"
	"regexp/syntax"
	"strings"
	"unicode/utf8"
)

// Compile parses pattern (required to be anchored with a leading '^' and a
// trailing '$', per the restricted syntax this system accepts) and lowers it
// to a Thompson NFA over the byte alphabet.
func Compile(pattern string) (*NFA, error) {
	if !strings.HasPrefix(pattern, "^") || !strings.HasSuffix(pattern, "$") || len(pattern) < 2 {
		return nil, &CompileError{Pattern: pattern, Err: ErrInvalidRegex}
	}
	inner := pattern[1 : len(pattern)-1]

	re, err := syntax.Parse(inner, syntax.Perl)
	if err != nil {
		return nil, &CompileError{Pattern: pattern, Err: fmt.Errorf("%w: %w", ErrInvalidRegex, err)}
	}
	re = re.Simplify()

	c := &compiler{b: newBuilder(), pattern: pattern}
	start, end, err := c.compile(re)
	if err != nil {
		return nil, err
	}
	match := c.b.addMatch()
	c.b.patch(end, match)

	return c.b.nfa(start), nil
}

type compiler struct {
	b       *builder
	pattern string
	depth   int
}

const maxRecursionDepth = 200

func (c *compiler) fail(err error) error {
	return &CompileError{Pattern: c.pattern, Err: err}
}

// compile lowers re to an NFA fragment and returns its start state and a
// dangling "end" state (an Epsilon or ByteRange state whose next is
// InvalidState) for the caller to patch once the continuation is known.
func (c *compiler) compile(re *syntax.Regexp) (start, end StateID, err error) {
	c.depth++
	defer func() { c.depth-- }()
	if c.depth > maxRecursionDepth {
		return 0, 0, c.fail(ErrUnsupportedConstruct)
	}

	switch re.Op {
	case syntax.OpEmptyMatch:
		e := c.b.addEpsilon(InvalidState)
		return e, e, nil

	case syntax.OpLiteral:
		return c.compileLiteral(re.Rune)

	case syntax.OpCharClass:
		return c.compileCharClass(re.Rune)

	case syntax.OpAnyCharNotNL:
		return c.compileByteRanges([]byteRange{{0, '\n' - 1}, {'\n' + 1, 0xFF}})

	case syntax.OpAnyChar:
		return c.compileByteRanges([]byteRange{{0, 0xFF}})

	case syntax.OpCapture:
		return c.compile(re.Sub[0])

	case syntax.OpConcat:
		return c.compileConcat(re.Sub)

	case syntax.OpAlternate:
		return c.compileAlternate(re.Sub)

	case syntax.OpStar:
		return c.compileStar(re.Sub[0])

	case syntax.OpPlus:
		return c.compilePlus(re.Sub[0])

	case syntax.OpQuest:
		return c.compileQuest(re.Sub[0])

	case syntax.OpRepeat:
		return c.compileRepeat(re.Sub[0], re.Min, re.Max)

	case syntax.OpNoMatch:
		// A byte range with lo > hi never matches anything.
		dead := c.b.addByteRange(1, 0, InvalidState)
		return dead, dead, nil

	case syntax.OpBeginLine, syntax.OpEndLine, syntax.OpBeginText, syntax.OpEndText,
		syntax.OpWordBoundary, syntax.OpNoWordBoundary:
		return 0, 0, c.fail(ErrUnsupportedConstruct)

	default:
		return 0, 0, c.fail(ErrUnsupportedConstruct)
	}
}

type byteRange struct{ lo, hi byte }

// compileLiteral lowers a run of literal runes to a chain of byte-range
// states, one per UTF-8-encoded byte, so non-ASCII literals compile the same
// way ASCII ones do.
func (c *compiler) compileLiteral(runes []rune) (start, end StateID, err error) {
	if len(runes) == 0 {
		e := c.b.addEpsilon(InvalidState)
		return e, e, nil
	}
	var buf [utf8.UTFMax]byte
	var first StateID = InvalidState
	var prevEnd StateID = InvalidState
	for _, r := range runes {
		n := utf8.EncodeRune(buf[:], r)
		for i := 0; i < n; i++ {
			s := c.b.addByteRange(buf[i], buf[i], InvalidState)
			if prevEnd != InvalidState {
				c.b.patch(prevEnd, s)
			}
			if first == InvalidState {
				first = s
			}
			prevEnd = s
		}
	}
	return first, prevEnd, nil
}

// compileCharClass lowers a regexp/syntax rune-range char class to byte-range
// alternatives. Only single-byte (rune < 256) ranges are supported; wider
// Unicode classes fall outside this system's byte-alphabet model.
func (c *compiler) compileCharClass(runeRanges []rune) (start, end StateID, err error) {
	ranges := make([]byteRange, 0, len(runeRanges)/2)
	for i := 0; i+1 < len(runeRanges); i += 2 {
		lo, hi := runeRanges[i], runeRanges[i+1]
		if lo > 0xFF || hi > 0xFF {
			return 0, 0, c.fail(ErrUnsupportedConstruct)
		}
		ranges = append(ranges, byteRange{byte(lo), byte(hi)})
	}
	return c.compileByteRanges(ranges)
}

// compileByteRanges builds a fragment matching any single byte within any of
// the given ranges: a split chain converging on one shared end state.
func (c *compiler) compileByteRanges(ranges []byteRange) (start, end StateID, err error) {
	if len(ranges) == 0 {
		return 0, 0, c.fail(ErrInvalidRegex)
	}
	end = c.b.addEpsilon(InvalidState)
	arms := make([]StateID, len(ranges))
	for i, r := range ranges {
		arms[i] = c.b.addByteRange(r.lo, r.hi, end)
	}
	start = c.buildSplitChain(arms)
	return start, end, nil
}

func (c *compiler) buildSplitChain(arms []StateID) StateID {
	if len(arms) == 1 {
		return arms[0]
	}
	right := c.buildSplitChain(arms[1:])
	return c.b.addSplit(arms[0], right)
}

func (c *compiler) compileConcat(subs []*syntax.Regexp) (start, end StateID, err error) {
	if len(subs) == 0 {
		e := c.b.addEpsilon(InvalidState)
		return e, e, nil
	}
	start, end, err = c.compile(subs[0])
	if err != nil {
		return 0, 0, err
	}
	for _, sub := range subs[1:] {
		nextStart, nextEnd, err := c.compile(sub)
		if err != nil {
			return 0, 0, err
		}
		c.b.patch(end, nextStart)
		end = nextEnd
	}
	return start, end, nil
}

func (c *compiler) compileAlternate(subs []*syntax.Regexp) (start, end StateID, err error) {
	if len(subs) == 0 {
		e := c.b.addEpsilon(InvalidState)
		return e, e, nil
	}
	starts := make([]StateID, len(subs))
	ends := make([]StateID, len(subs))
	for i, sub := range subs {
		s, e, err := c.compile(sub)
		if err != nil {
			return 0, 0, err
		}
		starts[i], ends[i] = s, e
	}
	join := c.b.addEpsilon(InvalidState)
	for _, e := range ends {
		c.b.patch(e, join)
	}
	return c.buildSplitChain(starts), join, nil
}

// compileStar lowers sub* to a split that either enters sub and loops back,
// or exits immediately (zero repetitions allowed).
func (c *compiler) compileStar(sub *syntax.Regexp) (start, end StateID, err error) {
	subStart, subEnd, err := c.compile(sub)
	if err != nil {
		return 0, 0, err
	}
	end = c.b.addEpsilon(InvalidState)
	split := c.b.addSplit(subStart, end)
	c.b.patch(subEnd, split)
	return split, end, nil
}

// compilePlus lowers sub+ to one mandatory pass through sub followed by a
// star over sub.
func (c *compiler) compilePlus(sub *syntax.Regexp) (start, end StateID, err error) {
	subStart, subEnd, err := c.compile(sub)
	if err != nil {
		return 0, 0, err
	}
	end = c.b.addEpsilon(InvalidState)
	split := c.b.addSplit(subStart, end)
	c.b.patch(subEnd, split)
	return subStart, end, nil
}

func (c *compiler) compileQuest(sub *syntax.Regexp) (start, end StateID, err error) {
	subStart, subEnd, err := c.compile(sub)
	if err != nil {
		return 0, 0, err
	}
	end = c.b.addEpsilon(InvalidState)
	c.b.patch(subEnd, end)
	start = c.b.addSplit(subStart, end)
	return start, end, nil
}

// compileRepeat lowers {min,max} (max == -1 means unbounded) to min
// mandatory copies followed either by a star (unbounded) or by
// (max-min) optional copies.
func (c *compiler) compileRepeat(sub *syntax.Regexp, min, max int) (start, end StateID, err error) {
	if max == -1 {
		if min == 0 {
			return c.compileStar(sub)
		}
		parts := make([]*syntax.Regexp, min-1)
		for i := range parts {
			parts[i] = sub
		}
		star := &syntax.Regexp{Op: syntax.OpStar, Sub: []*syntax.Regexp{sub}}
		if min == 1 {
			return c.compilePlus(sub)
		}
		return c.compileConcat(append(parts, sub, star))
	}

	if max == 0 {
		e := c.b.addEpsilon(InvalidState)
		return e, e, nil
	}

	var parts []*syntax.Regexp
	for i := 0; i < min; i++ {
		parts = append(parts, sub)
	}
	for i := min; i < max; i++ {
		parts = append(parts, &syntax.Regexp{Op: syntax.OpQuest, Sub: []*syntax.Regexp{sub}})
	}
	return c.compileConcat(parts)
}
