// Package wordlist loads words and repetition caps from text and CSV files.
package wordlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/verte-zerg/wordcomb/internal/codec"
)

// Format is the on-disk layout of a wordlist.
type Format int

const (
	// Text holds one word per line.
	Text Format = iota
	// CSV holds word and optional max_count columns.
	CSV
)

func (f Format) String() string {
	if f == CSV {
		return "csv"
	}
	return "text"
}

// AddFunc receives each parsed word and its repetition count. A count of 0
// means unlimited.
type AddFunc func(word string, count uint64)

// Source describes one wordlist argument.
type Source struct {
	Path       string
	Format     Format
	DefaultCap uint64
}

// LoadFile opens src.Path, undoes compression chosen by the extension and
// feeds every word to add. It returns the number of words read.
func LoadFile(src Source, add AddFunc) (int, error) {
	file, err := os.Open(src.Path)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()

	r, err := codec.NewReader(codec.FromPath(src.Path), file)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = r.Close()
	}()

	if src.Format == CSV {
		return LoadCSV(r, src.DefaultCap, add)
	}
	return LoadText(r, src.DefaultCap, add)
}

// LoadText reads one word per line. Trailing control characters such as
// '\r' are stripped and empty lines are skipped.
func LoadText(r io.Reader, defaultCap uint64, add AddFunc) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for scanner.Scan() {
		word := strings.TrimRightFunc(scanner.Text(), unicode.IsControl)
		if word == "" {
			continue
		}
		add(word, defaultCap)
		n++
	}
	if err := scanner.Err(); err != nil {
		return n, fmt.Errorf("failed to read word list: %w", err)
	}
	return n, nil
}
