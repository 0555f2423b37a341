// Copyright Semchunk Authors
// SPDX-License-Identifier: Apache-2.0

// Package segment splits plain text into sentences.
//
// A boundary is a sentence-ending mark (. ? !) followed by whitespace and
// then an upper-case letter. This is a heuristic: abbreviations such as
// "e.g. the" are not split, while initials such as "J. Smith" are.
package segment

import (
	"iter"
	"regexp"
	"strings"
	"unicode/utf8"
)

// boundary matches the mark, the whitespace run and the upper-case letter
// that opens the next sentence. Only the mark stays with the left side.
// RE2's \s is ASCII only, so the class also lists \v, the information
// separators, NEL and every Unicode separator (NBSP shows up in PDF text).
var boundary = regexp.MustCompile(`[.!?][\s\v\x{1c}-\x{1f}\x{85}\p{Z}]+\p{Lu}`)

// Sentences returns a lazy sequence of trimmed, non-empty sentences. The
// sequence can be ranged over any number of times.
func Sentences(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		start := 0
		for start < len(text) {
			loc := boundary.FindStringIndex(text[start:])
			end := len(text)
			next := len(text)
			if loc != nil {
				end = start + loc[0] + 1 // keep the mark
				_, size := utf8.DecodeLastRuneInString(text[start+loc[0] : start+loc[1]])
				next = start + loc[1] - size
			}
			if s := strings.TrimSpace(text[start:end]); s != "" {
				if !yield(s) {
					return
				}
			}
			start = next
		}
	}
}

// Split collects Sentences(text) into a slice.
func Split(text string) []string {
	var out []string
	for s := range Sentences(text) {
		out = append(out, s)
	}
	return out
}
