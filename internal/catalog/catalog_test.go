package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texts(c *Catalog) []string {
	out := make([]string, 0, c.Len())
	for _, e := range c.Entries() {
		out = append(out, e.Text)
	}
	return out
}

func find(t *testing.T, c *Catalog, text string) Entry {
	t.Helper()
	for _, e := range c.Entries() {
		if e.Text == text {
			return e
		}
	}
	t.Fatalf("entry %q not found in %v", text, texts(c))
	return Entry{}
}

func TestAddWordCaseVariant(t *testing.T) {
	c := New()
	c.AddWord("Cat", 2)
	c.Finalize()

	require.Equal(t, 2, c.Len())
	assert.Equal(t, Entry{Text: "Cat", Cap: 2, Len: 3}, find(t, c, "Cat"))
	assert.Equal(t, Entry{Text: "cat", Cap: 2, Len: 3}, find(t, c, "cat"))
}

func TestAddWordNoVariant(t *testing.T) {
	cases := []struct {
		name string
		word string
	}{
		{"punctuation", "!bang"},
		{"digit", "7up"},
		{"space", " x"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := New()
			c.AddWord(tc.word, 1)
			c.Finalize()
			assert.Equal(t, []string{tc.word}, texts(c))
		})
	}
}

func TestAddWordIgnoresEmpty(t *testing.T) {
	c := New()
	c.AddWord("", 1)
	c.Finalize()
	assert.Zero(t, c.Len())
	assert.Zero(t, c.Shortest())
	assert.Zero(t, c.Longest())
}

func TestAddWordClampsCap(t *testing.T) {
	c := New()
	c.AddWord("x", 256)
	c.AddWord("y", 255)
	c.Finalize()

	assert.True(t, find(t, c, "x").Unlimited())
	assert.Equal(t, uint8(255), find(t, c, "y").Cap)
}

func TestFinalizeMergeKeepsLargestCap(t *testing.T) {
	c := New()
	c.AddWord("pass", 1)
	c.AddWord("pass", 3)
	c.AddWord("word", 2)
	c.AddWord("word", 0)
	c.AddWord("word", 3)
	c.Finalize()

	assert.Equal(t, uint8(3), find(t, c, "pass").Cap)
	assert.Equal(t, uint8(3), find(t, c, "Pass").Cap)
	assert.True(t, find(t, c, "word").Unlimited(), "unlimited must dominate finite caps")
	assert.Equal(t, 4, c.Len())
}

func TestFinalizeSortsByLength(t *testing.T) {
	c := New()
	for _, w := range []string{"-----", "-", "---", "--"} {
		c.AddWord(w, 1)
	}
	c.Finalize()

	assert.Equal(t, []string{"-", "--", "---", "-----"}, texts(c))
	assert.Equal(t, 1, c.Shortest())
	assert.Equal(t, 5, c.Longest())
}

func TestFinalizeIdempotent(t *testing.T) {
	c := New()
	for _, w := range []string{"alpha", "Beta", "gamma", "alpha", "x", "Delta", "beta"} {
		c.AddWord(w, 2)
	}
	c.Finalize()
	once := append([]Entry(nil), c.Entries()...)

	c.Finalize()
	if diff := cmp.Diff(once, c.Entries()); diff != "" {
		t.Fatalf("second finalize changed catalog (-once +twice):\n%s", diff)
	}

	c.finalized = false
	c.Finalize()
	if diff := cmp.Diff(once, c.Entries()); diff != "" {
		t.Fatalf("re-running finalize changed catalog (-once +twice):\n%s", diff)
	}
}

func TestAddAfterFinalizeRequiresFinalize(t *testing.T) {
	c := New()
	c.AddWord("a", 1)
	c.Finalize()
	require.True(t, c.Finalized())

	c.AddWord("bb", 1)
	assert.False(t, c.Finalized())
}

func TestLengthCountsRunes(t *testing.T) {
	c := New()
	c.AddWord("héé", 1)
	c.Finalize()
	assert.Equal(t, 3, find(t, c, "héé").Len)
	assert.Equal(t, 3, find(t, c, "Héé").Len)
}

func TestFirstAtLeast(t *testing.T) {
	c := New()
	for _, w := range []string{"-", "--", "--", "----"} {
		c.AddWord(w, 1)
	}
	c.Finalize()

	assert.Equal(t, 0, c.FirstAtLeast(0))
	assert.Equal(t, 0, c.FirstAtLeast(1))
	assert.Equal(t, 1, c.FirstAtLeast(2))
	assert.Equal(t, 2, c.FirstAtLeast(3))
	assert.Equal(t, 3, c.FirstAtLeast(5))
}

func TestStats(t *testing.T) {
	c := New()
	c.AddWord("ab", 0)
	c.AddWord("-cde", 1)
	c.Finalize()

	assert.Equal(t, Stats{Words: 3, Shortest: 2, Longest: 4, Unlimited: 2}, c.Stats())
}
