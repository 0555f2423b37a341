// Copyright Semchunk Authors
// SPDX-License-Identifier: Apache-2.0

// Package keywords tags chunks with the entries of a fixed vocabulary they
// mention.
package keywords

import (
	"strings"
)

// DefaultVocabulary lists the RFP review checkpoints chunks are tagged with.
var DefaultVocabulary = []string{
	"Key Areas for Innovation",
	"Automating Standard Compliance Checks",
	"legally eligible to bid",
	"state registration",
	"certifications",
	"past performance requirements",
	"deal-breakers",
	"Mandatory Eligibility Criteria",
	"must-have qualifications",
	"experience needed to bid",
	"missing requirements",
	"Submission Checklist",
	"RFP submission requirements",
	"Document format",
	"page limit",
	"font type",
	"font size",
	"line spacing",
	"TOC requirements",
	"attachments",
	"forms",
	"Contract Risks",
	"biased clauses",
	"unilateral termination rights",
	"notice period",
}

type entry struct {
	tag   string
	lower string
}

// Tagger matches vocabulary entries as case-insensitive substrings.
// It is immutable and safe for concurrent use.
type Tagger struct {
	entries []entry
}

// New builds a Tagger. Blank entries are dropped, as are entries that repeat
// an earlier one ignoring case; the first spelling wins.
func New(vocabulary []string) *Tagger {
	t := &Tagger{}
	seen := make(map[string]struct{}, len(vocabulary))
	for _, v := range vocabulary {
		if strings.TrimSpace(v) == "" {
			continue
		}
		lower := strings.ToLower(v)
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		t.entries = append(t.entries, entry{tag: v, lower: lower})
	}
	return t
}

// Vocabulary returns the effective vocabulary in declaration order.
func (t *Tagger) Vocabulary() []string {
	out := make([]string, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.tag
	}
	return out
}

// Tag returns the vocabulary entries found in text, in declaration order.
// The result is never nil.
func (t *Tagger) Tag(text string) []string {
	tags := []string{}
	lowered := strings.ToLower(text)
	for _, e := range t.entries {
		if strings.Contains(lowered, e.lower) {
			tags = append(tags, e.tag)
		}
	}
	return tags
}

// WeightedPassage prepends the tag list, repeated repeat times, to text so
// that an embedding of the passage leans toward its tags:
//
//	"page limit font size page limit font size. <text>"
//
// Text is returned unchanged when there are no tags or repeat < 1.
func WeightedPassage(text string, tags []string, repeat int) string {
	if len(tags) == 0 || repeat < 1 {
		return text
	}
	weighted := make([]string, 0, len(tags)*repeat)
	for range repeat {
		weighted = append(weighted, tags...)
	}
	return strings.Join(weighted, " ") + ". " + text
}
