package rank

import (
	"math/big"
	"testing"
)

func mustNew(t *testing.T, pattern string, maxLen int) *LanguageSlice {
	t.Helper()
	ls, err := New(pattern, maxLen)
	if err != nil {
		t.Fatalf("New(%q, %d): %v", pattern, maxLen, err)
	}
	return ls
}

func TestRankUnrankInverse(t *testing.T) {
	tests := []struct {
		pattern string
		maxLen  int
	}{
		{"^[ab]*$", 4},
		{"^[0-9]{3}$", 3},
		{"^a(bc)*d$", 6},
		{"^(foo|bar|baz)$", 3},
	}

	for _, tt := range tests {
		ls := mustNew(t, tt.pattern, tt.maxLen)
		count := ls.SliceCount()
		if !count.IsInt64() || count.Int64() > 10000 {
			t.Fatalf("pattern %q: slice too large for exhaustive test (%s)", tt.pattern, count)
		}
		n := count.Int64()
		for i := int64(0); i < n; i++ {
			idx := big.NewInt(i)
			s, err := ls.Unrank(idx)
			if err != nil {
				t.Fatalf("pattern %q: Unrank(%d): %v", tt.pattern, i, err)
			}
			got, err := ls.Rank(s)
			if err != nil {
				t.Fatalf("pattern %q: Rank(%q): %v", tt.pattern, s, err)
			}
			if got.Cmp(idx) != 0 {
				t.Errorf("pattern %q: round trip on %d produced %q -> %s", tt.pattern, i, s, got)
			}
		}
	}
}

func TestUnrankOutOfRange(t *testing.T) {
	ls := mustNew(t, "^[ab]$", 1)
	count := ls.SliceCount()

	if _, err := ls.Unrank(big.NewInt(-1)); err != ErrIntegerOutOfRange {
		t.Errorf("Unrank(-1): got %v, want ErrIntegerOutOfRange", err)
	}
	if _, err := ls.Unrank(count); err != ErrIntegerOutOfRange {
		t.Errorf("Unrank(sliceCount): got %v, want ErrIntegerOutOfRange", err)
	}
}

func TestRankNotInLanguage(t *testing.T) {
	ls := mustNew(t, "^[0-9]{3}$", 3)

	tests := [][]byte{
		[]byte("12"),
		[]byte("abcd"),
		[]byte("a12"),
	}
	for _, s := range tests {
		if _, err := ls.Rank(s); err != ErrNotInLanguage {
			t.Errorf("Rank(%q): got %v, want ErrNotInLanguage", s, err)
		}
	}
}

func TestNewEmptyLanguage(t *testing.T) {
	if _, err := New("^a$", 2); err != ErrLanguageEmpty {
		t.Errorf("New: got %v, want ErrLanguageEmpty", err)
	}
}

func TestRankOrdering(t *testing.T) {
	ls := mustNew(t, "^[0-9]{2}$", 2)
	prevRank, err := ls.Rank([]byte("00"))
	if err != nil {
		t.Fatalf("Rank(00): %v", err)
	}
	strs := []string{"01", "10", "11", "99"}
	for _, s := range strs {
		r, err := ls.Rank([]byte(s))
		if err != nil {
			t.Fatalf("Rank(%q): %v", s, err)
		}
		if r.Cmp(prevRank) <= 0 {
			t.Errorf("expected rank(%q)=%s > previous rank %s", s, r, prevRank)
		}
		prevRank = r
	}
}
