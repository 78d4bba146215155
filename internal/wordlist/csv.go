package wordlist

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// Column binds a header name to a setter on the row target.
type Column[T any] struct {
	Name     string
	Required bool
	Set      func(target *T, value string)
}

// Mapping routes record fields to setters. It is resolved once from a header
// row; fields without a setter are ignored.
type Mapping[T any] struct {
	setters []func(*T, string)
	// AllMapped reports whether every required column was found.
	AllMapped bool
}

// MapColumns resolves header names against columns. Names are compared
// case-insensitively after trimming spaces.
func MapColumns[T any](header []string, columns []Column[T]) Mapping[T] {
	m := Mapping[T]{setters: make([]func(*T, string), len(header))}
	found := make([]bool, len(columns))
	for i, name := range header {
		name = strings.ToLower(strings.TrimFunc(name, isSpaceOrControl))
		for j, col := range columns {
			if found[j] || strings.ToLower(col.Name) != name {
				continue
			}
			m.setters[i] = col.Set
			found[j] = true
			break
		}
	}
	m.AllMapped = true
	for j, col := range columns {
		if col.Required && !found[j] {
			m.AllMapped = false
		}
	}
	return m
}

// Positional maps columns to fields in order.
func Positional[T any](columns []Column[T]) Mapping[T] {
	m := Mapping[T]{setters: make([]func(*T, string), len(columns)), AllMapped: true}
	for i, col := range columns {
		m.setters[i] = col.Set
	}
	return m
}

// Apply copies record fields into target.
func (m Mapping[T]) Apply(record []string, target *T) {
	for i, value := range record {
		if i >= len(m.setters) || m.setters[i] == nil {
			continue
		}
		m.setters[i](target, value)
	}
}

type csvRow struct {
	word  string
	count string
}

func setWord(r *csvRow, v string)  { r.word = v }
func setCount(r *csvRow, v string) { r.count = v }

// Header names accepted for the repetition column.
var countAliases = []string{"max_count", "max_repetitions", "count"}

func headerColumns() []Column[csvRow] {
	cols := []Column[csvRow]{{Name: "word", Required: true, Set: setWord}}
	for _, alias := range countAliases {
		cols = append(cols, Column[csvRow]{Name: alias, Set: setCount})
	}
	return cols
}

var positionalColumns = []Column[csvRow]{
	{Name: "word", Required: true, Set: setWord},
	{Name: "max_count", Set: setCount},
}

// isHeader reports whether record names both the word column and a count
// column. A row like "word,1" is data.
func isHeader(record []string) bool {
	var word, count bool
	for _, cell := range record {
		name := strings.ToLower(strings.TrimFunc(cell, isSpaceOrControl))
		switch {
		case name == "word":
			word = true
		case slices.Contains(countAliases, name):
			count = true
		}
	}
	return word && count
}

// LoadCSV reads word,max_count records. When the first record is a header
// naming the word column and a count column, columns are matched by name;
// otherwise every record is positional. Empty or unparsable counts use
// defaultCap and malformed rows are skipped.
func LoadCSV(r io.Reader, defaultCap uint64, add AddFunc) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	var mapping Mapping[csvRow]
	first := true
	n := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				continue
			}
			return n, fmt.Errorf("failed to read csv word list: %w", err)
		}
		if first {
			first = false
			if isHeader(record) {
				if mapping = MapColumns(record, headerColumns()); mapping.AllMapped {
					continue
				}
			}
			mapping = Positional(positionalColumns)
		}

		var row csvRow
		mapping.Apply(record, &row)
		word := strings.TrimFunc(row.word, unicode.IsControl)
		if word == "" {
			continue
		}
		add(word, parseCount(row.count, defaultCap))
		n++
	}
	return n, nil
}

func parseCount(value string, defaultCap uint64) uint64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return defaultCap
	}
	count, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return math.MaxUint64
		}
		return defaultCap
	}
	return count
}

func isSpaceOrControl(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsControl(r)
}
