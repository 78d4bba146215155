// Package search enumerates ordered word combinations within a length range.
package search

import "github.com/verte-zerg/wordcomb/internal/catalog"

// EmitFunc receives each valid combination as catalog indices. The slice is
// reused after the call returns.
type EmitFunc func(selected []int)

// Searcher owns the mutable state of one search task. It reads the shared
// catalog but never modifies it; use one Searcher per goroutine.
type Searcher struct {
	cat      *catalog.Catalog
	entries  []catalog.Entry
	shortest int
	longest  int

	selected []int
	usage    []uint8
	length   int

	minChars int
	maxChars int
	level    int
	emit     EmitFunc
}

// New returns a Searcher with fresh state sized to cat.
func New(cat *catalog.Catalog) *Searcher {
	return &Searcher{
		cat:      cat,
		entries:  cat.Entries(),
		shortest: cat.Shortest(),
		longest:  cat.Longest(),
		usage:    make([]uint8, cat.Len()),
	}
}

// Search emits every combination of exactly level+1 words that starts with
// the entry at start and whose total length lies in [minChars, maxChars].
// It returns the number of combinations emitted.
func (s *Searcher) Search(start, level, minChars, maxChars int, emit EmitFunc) int {
	if start < 0 || start >= len(s.entries) || level < 0 {
		return 0
	}
	s.minChars, s.maxChars, s.level, s.emit = minChars, maxChars, level, emit
	s.selected = append(s.selected[:0], start)
	s.usage[start] = 1
	s.length = s.entries[start].Len
	defer func() {
		s.usage[start] = 0
		s.selected = s.selected[:0]
		s.length = 0
		s.emit = nil
	}()

	if level == 0 {
		if s.length < minChars || s.length > maxChars {
			return 0
		}
		emit(s.selected)
		return 1
	}
	return s.extend()
}

func (s *Searcher) extend() int {
	if len(s.selected) < s.level {
		return s.extendInner()
	}
	return s.extendLast()
}

// extendInner adds one word that is not the last one of the combination.
func (s *Searcher) extendInner() int {
	remaining := s.level + 1 - len(s.selected)
	if s.length < s.minChars && remaining*s.longest < s.minChars-s.length {
		return 0
	}
	// Words still needed after this one are at least as long as the shortest entry.
	reserve := (remaining - 1) * s.shortest

	count := 0
	for i, e := range s.entries {
		next := s.length + e.Len
		if next+reserve > s.maxChars {
			break
		}
		if !s.take(i) {
			continue
		}
		s.length = next
		count += s.extend()
		s.length -= e.Len
		s.release(i)
	}
	return count
}

// extendLast adds the final word and emits each completed combination.
func (s *Searcher) extendLast() int {
	start := 0
	if s.length < s.minChars {
		start = s.cat.FirstAtLeast(s.minChars - s.length)
	}
	count := 0
	for i := start; i < len(s.entries); i++ {
		e := s.entries[i]
		if s.length+e.Len > s.maxChars {
			break
		}
		if !s.take(i) {
			continue
		}
		s.emit(s.selected)
		s.release(i)
		count++
	}
	return count
}

func (s *Searcher) take(i int) bool {
	e := s.entries[i]
	if e.Cap != 0 && s.usage[i] >= e.Cap {
		return false
	}
	s.usage[i]++
	s.selected = append(s.selected, i)
	return true
}

func (s *Searcher) release(i int) {
	s.selected = s.selected[:len(s.selected)-1]
	s.usage[i]--
}
