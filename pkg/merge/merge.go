// Copyright Semchunk Authors
// SPDX-License-Identifier: Apache-2.0

// Package merge re-flows clustered sentences into chunks bounded by a token
// budget, carrying a short overlap from each chunk into the next.
package merge

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leseb/semchunk/pkg/tokenizer"
)

const (
	// DefaultMaxTokens bounds the tokens of a chunk, overlap excluded.
	DefaultMaxTokens = 1000
	// DefaultOverlapTokens is the size of the tail copied into the next chunk.
	DefaultOverlapTokens = 50
)

// Piece is a merged chunk before ids are assigned.
type Piece struct {
	// Text is Overlap followed by the sentences, joined by single spaces.
	Text string
	// Overlap is the tail copied from the previous chunk of the same
	// cluster, empty for the first chunk of a cluster.
	Overlap string
	// Cluster is the position of the source group.
	Cluster int
	// Sentences are the indices of the sentences this chunk owns, ascending.
	Sentences []int
	// Tokens is the sum of the sentence token counts, overlap excluded.
	Tokens int
}

// Merger packs each cluster's sentences into chunks.
type Merger struct {
	Counter       tokenizer.Counter
	MaxTokens     int
	OverlapTokens int // 0 disables overlap
}

func (m *Merger) validate() error {
	switch {
	case m.Counter == nil:
		return errors.New("merge: token counter is required")
	case m.MaxTokens <= 0:
		return fmt.Errorf("merge: max tokens must be positive, got %d", m.MaxTokens)
	case m.OverlapTokens < 0:
		return fmt.Errorf("merge: overlap tokens must not be negative, got %d", m.OverlapTokens)
	}
	return nil
}

// Merge walks every group in order and closes a chunk whenever the next
// sentence would push it past MaxTokens. A sentence is never split: one
// that alone exceeds the budget becomes its own chunk. Pieces come out in
// group order, then in the order they were closed.
func (m *Merger) Merge(sentences []string, groups [][]int) ([]Piece, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}

	var pieces []Piece
	for c, group := range groups {
		var (
			overlap string
			buf     []string
			owned   []int
			running int // tokens of overlap plus buffered sentences
			tokens  int // tokens of buffered sentences only
		)
		closeChunk := func() {
			parts := buf
			if overlap != "" {
				parts = append([]string{overlap}, buf...)
			}
			pieces = append(pieces, Piece{
				Text:      strings.Join(parts, " "),
				Overlap:   overlap,
				Cluster:   c,
				Sentences: owned,
				Tokens:    tokens,
			})
		}

		for _, idx := range group {
			if idx < 0 || idx >= len(sentences) {
				return nil, fmt.Errorf("merge: group %d references sentence %d of %d", c, idx, len(sentences))
			}
			sentence := sentences[idx]
			n, err := m.Counter.Count(sentence)
			if err != nil {
				return nil, &tokenizer.TokenizationError{Sentence: idx + 1, Err: err}
			}

			if running+n > m.MaxTokens && len(buf) > 0 {
				closeChunk()
				closed := pieces[len(pieces)-1].Text

				overlap, err = tokenizer.Tail(m.Counter, closed, m.OverlapTokens)
				if err != nil {
					return nil, &tokenizer.TokenizationError{Err: err}
				}
				seedTokens := 0
				if overlap != "" {
					if seedTokens, err = m.Counter.Count(overlap); err != nil {
						return nil, &tokenizer.TokenizationError{Err: err}
					}
				}
				buf, owned = nil, nil
				running, tokens = seedTokens, 0
			}

			buf = append(buf, sentence)
			owned = append(owned, idx)
			running += n
			tokens += n
		}
		if len(buf) > 0 {
			closeChunk()
		}
	}
	return pieces, nil
}
