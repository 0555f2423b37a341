// Copyright Semchunk Authors
// SPDX-License-Identifier: Apache-2.0

// Package tokenizer measures text length in tokens and recovers the text of
// a trailing run of tokens for chunk overlap.
package tokenizer

import (
	"fmt"
	"strings"
)

// EncodingWords selects the whitespace word counter instead of a BPE encoding.
const EncodingWords = "words"

// Counter returns the number of tokens in a string. Implementations must be
// deterministic for a given configuration.
type Counter interface {
	Count(text string) (int, error)
}

// Codec is a Counter whose tokens round-trip through ids.
type Codec interface {
	Counter
	Encode(text string) ([]int, error)
	Decode(ids []int) (string, error)
}

// TokenizationError reports a token counter failure. Sentence is the 1-based
// sentence number, or 0 when the failing text was not a single sentence.
type TokenizationError struct {
	Sentence int
	Err      error
}

func (e *TokenizationError) Error() string {
	if e.Sentence > 0 {
		return fmt.Sprintf("count tokens for sentence %d: %v", e.Sentence, e.Err)
	}
	return fmt.Sprintf("count tokens: %v", e.Err)
}

func (e *TokenizationError) Unwrap() error { return e.Err }

// New returns the counter for an encoding name: EncodingWords, a tiktoken
// encoding such as "cl100k_base", or a model name such as "gpt-4".
func New(encoding string) (Counter, error) {
	if strings.EqualFold(strings.TrimSpace(encoding), EncodingWords) {
		return Words{}, nil
	}
	return NewTiktoken(encoding)
}

// Tail returns the text of the last n tokens of text, trimmed of surrounding
// whitespace. A Codec decodes the trailing token ids exactly. Any other
// Counter gets the trailing whitespace-delimited words whose token count is
// closest to n; ties prefer fewer words.
func Tail(c Counter, text string, n int) (string, error) {
	if n <= 0 || strings.TrimSpace(text) == "" {
		return "", nil
	}

	if codec, ok := c.(Codec); ok {
		ids, err := codec.Encode(text)
		if err != nil {
			return "", err
		}
		if len(ids) > n {
			ids = ids[len(ids)-n:]
		}
		tail, err := codec.Decode(ids)
		if err != nil {
			return "", err
		}
		// The cut may land inside a multi-byte rune; drop the partial bytes.
		return strings.TrimSpace(strings.ToValidUTF8(tail, "")), nil
	}

	words := strings.Fields(text)
	best, bestDiff := "", -1
	for k := 1; k <= len(words); k++ {
		candidate := strings.Join(words[len(words)-k:], " ")
		count, err := c.Count(candidate)
		if err != nil {
			return "", err
		}
		diff := count - n
		if diff < 0 {
			diff = -diff
		}
		if bestDiff < 0 || diff < bestDiff {
			best, bestDiff = candidate, diff
		}
		if count >= n {
			break
		}
	}
	return best, nil
}
