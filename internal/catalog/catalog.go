// Package catalog holds the deduplicated, case-expanded word catalog.
package catalog

import (
	"cmp"
	"slices"
	"sort"
	"unicode"
	"unicode/utf8"
)

// MaxCap is the largest finite repetition cap. Larger counts become unlimited.
const MaxCap = 255

// Entry is a catalog word and its repetition cap. Cap 0 means unlimited.
type Entry struct {
	Text string
	Cap  uint8
	Len  int
}

// Unlimited reports whether the entry may repeat without bound.
func (e Entry) Unlimited() bool {
	return e.Cap == 0
}

// Catalog is the ordered list of candidate words.
//
// After Finalize the catalog has no duplicate texts, is sorted ascending by
// length and must be treated as read-only; it is shared by pointer across
// every search task.
type Catalog struct {
	entries   []Entry
	finalized bool
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{}
}

// Of builds a finalized catalog from entries as given, without case
// expansion. Len is recomputed from Text.
func Of(entries ...Entry) *Catalog {
	c := &Catalog{entries: make([]Entry, 0, len(entries))}
	for _, e := range entries {
		if e.Text == "" {
			continue
		}
		c.entries = append(c.entries, newEntry(e.Text, e.Cap))
	}
	c.Finalize()
	return c
}

// AddWord appends text with the given repetition count, plus a sibling whose
// first character has its case flipped when the first character is a letter
// or digit. Empty text is ignored. Counts above MaxCap become unlimited.
func (c *Catalog) AddWord(text string, count uint64) {
	if text == "" {
		return
	}
	capValue := clampCap(count)
	c.entries = append(c.entries, newEntry(text, capValue))
	if flipped, ok := flipFirst(text); ok {
		c.entries = append(c.entries, newEntry(flipped, capValue))
	}
	c.finalized = false
}

// Finalize merges duplicate texts and sorts entries by ascending length.
// Calling it again on a finalized catalog is a no-op.
func (c *Catalog) Finalize() {
	if c.finalized {
		return
	}
	slices.SortFunc(c.entries, func(a, b Entry) int {
		return cmp.Compare(a.Text, b.Text)
	})
	merged := c.entries[:0]
	for _, e := range c.entries {
		if n := len(merged); n > 0 && merged[n-1].Text == e.Text {
			merged[n-1].Cap = mergeCap(merged[n-1].Cap, e.Cap)
			continue
		}
		merged = append(merged, e)
	}
	clear(c.entries[len(merged):])
	c.entries = merged
	slices.SortStableFunc(c.entries, func(a, b Entry) int {
		return cmp.Compare(a.Len, b.Len)
	})
	c.finalized = true
}

// Finalized reports whether Finalize ran since the last AddWord.
func (c *Catalog) Finalized() bool {
	return c.finalized
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entry returns the entry at index i.
func (c *Catalog) Entry(i int) Entry {
	return c.entries[i]
}

// Entries returns the backing slice. Callers must not modify it.
func (c *Catalog) Entries() []Entry {
	return c.entries
}

// Shortest returns the length of the shortest entry, or 0 when empty.
func (c *Catalog) Shortest() int {
	if len(c.entries) == 0 {
		return 0
	}
	return c.entries[0].Len
}

// Longest returns the length of the longest entry, or 0 when empty.
func (c *Catalog) Longest() int {
	if len(c.entries) == 0 {
		return 0
	}
	return c.entries[len(c.entries)-1].Len
}

// FirstAtLeast returns the index of the first entry whose length is >= n,
// or Len() when there is none. The catalog must be finalized.
func (c *Catalog) FirstAtLeast(n int) int {
	return sort.Search(len(c.entries), func(i int) bool {
		return c.entries[i].Len >= n
	})
}

// Stats summarizes the catalog.
type Stats struct {
	Words     int
	Shortest  int
	Longest   int
	Unlimited int
}

// Stats returns summary numbers for logging and history.
func (c *Catalog) Stats() Stats {
	s := Stats{
		Words:    len(c.entries),
		Shortest: c.Shortest(),
		Longest:  c.Longest(),
	}
	for _, e := range c.entries {
		if e.Unlimited() {
			s.Unlimited++
		}
	}
	return s
}

func newEntry(text string, capValue uint8) Entry {
	return Entry{Text: text, Cap: capValue, Len: utf8.RuneCountInString(text)}
}

func clampCap(count uint64) uint8 {
	if count > MaxCap {
		return 0
	}
	return uint8(count)
}

// mergeCap keeps the more permissive cap; unlimited beats any finite cap.
func mergeCap(a, b uint8) uint8 {
	if a == 0 || b == 0 {
		return 0
	}
	return max(a, b)
}

func flipFirst(text string) (string, bool) {
	r, size := utf8.DecodeRuneInString(text)
	if r == utf8.RuneError || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
		return "", false
	}
	var flipped rune
	if unicode.IsUpper(r) {
		flipped = unicode.ToLower(r)
	} else {
		flipped = unicode.ToUpper(r)
	}
	if flipped == r {
		return "", false
	}
	return string(flipped) + text[size:], true
}
