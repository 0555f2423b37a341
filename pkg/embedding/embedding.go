// Copyright Semchunk Authors
// SPDX-License-Identifier: Apache-2.0

// Package embedding defines the sentence embedding capability and its
// backend registry.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/leseb/semchunk/pkg/provider"
)

// ErrCardinality is returned when an embedder does not return exactly one
// vector per input sentence.
var ErrCardinality = errors.New("embedding count does not match sentence count")

// Providers is the registry of embedder backends.
//
//	import _ "github.com/leseb/semchunk/pkg/embedding/openai"
//	import _ "github.com/leseb/semchunk/pkg/embedding/tfidf"
var Providers = provider.NewRegistry[Embedder]("embedder")

// Embedder maps sentences to fixed-dimension vectors. The result holds one
// vector per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, sentences []string) ([][]float64, error)
}

// EmbeddingError reports an embedder failure or an unusable result for a
// document. Sentence is the 1-based number of the offending sentence, or 0
// when the failure is not tied to one vector.
type EmbeddingError struct {
	Document string
	Sentence int
	Err      error
}

func (e *EmbeddingError) Error() string {
	if e.Sentence > 0 {
		return fmt.Sprintf("embed %s: sentence %d: %v", e.Document, e.Sentence, e.Err)
	}
	return fmt.Sprintf("embed %s: %v", e.Document, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// Check verifies that vectors holds exactly want vectors of one shared,
// non-zero dimension with finite components.
func Check(document string, vectors [][]float64, want int) error {
	if len(vectors) != want {
		return &EmbeddingError{
			Document: document,
			Err:      fmt.Errorf("%w: got %d, want %d", ErrCardinality, len(vectors), want),
		}
	}
	if want == 0 {
		return nil
	}

	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) == 0 {
			return &EmbeddingError{Document: document, Sentence: i + 1, Err: errors.New("empty vector")}
		}
		if len(v) != dim {
			return &EmbeddingError{
				Document: document,
				Sentence: i + 1,
				Err:      fmt.Errorf("dimension %d, want %d", len(v), dim),
			}
		}
		for _, x := range v {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return &EmbeddingError{Document: document, Sentence: i + 1, Err: errors.New("non-finite component")}
			}
		}
	}
	return nil
}
