package regexfsm

// classRange is one byte-equivalence class: a contiguous, inclusive byte
// interval that every DFA state treats identically (same successor state for
// every byte in the interval). Classes always appear in ascending,
// non-overlapping, gap-free order covering [0, 255], so iterating classes in
// index order is equivalent to iterating their representative bytes in
// ascending order -- the ordering the ranker's lexicographic walk relies on.
type classRange struct {
	lo, hi byte
}

// byteClasses reduces the 256-byte alphabet to the (usually small) set of
// classes the NFA's byte-range transitions actually distinguish. Two bytes
// that never cause a different transition in any state collapse to one
// class, shrinking both the DFA's transition rows and the per-state sum in
// the rank-table fill from 256 entries to the class count.
type byteClasses struct {
	ranges []classRange
	classOf [256]byte
}

// newByteClasses derives classes from every byte-range boundary appearing in
// the NFA. A byte b is a boundary if some transition's range starts at b or
// ends at b; splitting the alphabet at every boundary guarantees no class
// straddles two transitions with different targets.
func newByteClasses(n *NFA) *byteClasses {
	var isBoundary [256]bool
	for _, s := range n.states {
		if s.kind != kindByteRange || s.lo > s.hi {
			continue
		}
		if s.lo > 0 {
			isBoundary[s.lo-1] = true
		}
		isBoundary[s.hi] = true
	}
	isBoundary[255] = true

	bc := &byteClasses{}
	class := byte(0)
	start := byte(0)
	for b := 0; b < 256; b++ {
		bc.classOf[b] = class
		if isBoundary[b] {
			bc.ranges = append(bc.ranges, classRange{start, byte(b)})
			if b < 255 {
				class++
				start = byte(b + 1)
			}
		}
	}
	return bc
}

// NumClasses reports the number of distinct byte-equivalence classes.
func (bc *byteClasses) NumClasses() int { return len(bc.ranges) }

// Of returns the class index for byte b.
func (bc *byteClasses) Of(b byte) byte { return bc.classOf[b] }

// Range returns the inclusive byte interval covered by class c.
func (bc *byteClasses) Range(c int) (lo, hi byte) {
	r := bc.ranges[c]
	return r.lo, r.hi
}

// Size returns how many raw byte values class c covers.
func (bc *byteClasses) Size(c int) int {
	r := bc.ranges[c]
	return int(r.hi) - int(r.lo) + 1
}
