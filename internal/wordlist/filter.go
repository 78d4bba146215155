package wordlist

import (
	"fmt"
	"strings"
	"unicode"
)

// FilterFunc returns true when a word should be kept.
type FilterFunc func(string) bool

// FilterForCharset returns the filter for a charset name: "any" keeps every
// word, "ascii" keeps printable ASCII words and "alnum" keeps ASCII letters
// and digits only.
func FilterForCharset(name string) (FilterFunc, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "any":
		return func(string) bool { return true }, nil
	case "ascii":
		return filterPrintableASCII, nil
	case "alnum":
		return filterASCIIAlnum, nil
	default:
		return nil, fmt.Errorf("unknown charset %q (expected any, ascii or alnum)", name)
	}
}

// Filtered wraps add so that only words accepted by keep reach it.
func Filtered(add AddFunc, keep FilterFunc) AddFunc {
	return func(word string, count uint64) {
		if keep(word) {
			add(word, count)
		}
	}
}

func filterPrintableASCII(word string) bool {
	if word == "" {
		return false
	}
	for i := 0; i < len(word); i++ {
		ch := word[i]
		if ch < 0x20 || ch > 0x7e {
			return false
		}
	}
	return true
}

func filterASCIIAlnum(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}
