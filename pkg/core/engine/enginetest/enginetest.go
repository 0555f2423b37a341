// Copyright Semchunk Authors
// SPDX-License-Identifier: Apache-2.0

// Package enginetest provides deterministic embedders and document fixtures
// for exercising the chunking pipeline without external services.
package enginetest

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/leseb/semchunk/pkg/docstore"
	"github.com/leseb/semchunk/pkg/docstore/memory"
	"github.com/leseb/semchunk/pkg/embedding"
)

// EmbedFunc adapts a function to embedding.Embedder.
type EmbedFunc func(ctx context.Context, sentences []string) ([][]float64, error)

// Embed calls f.
func (f EmbedFunc) Embed(ctx context.Context, sentences []string) ([][]float64, error) {
	return f(ctx, sentences)
}

// Constant embeds every sentence as the same vector, so all sentences land
// in one cluster.
func Constant() embedding.Embedder {
	return EmbedFunc(func(_ context.Context, sentences []string) ([][]float64, error) {
		vectors := make([][]float64, len(sentences))
		for i := range vectors {
			vectors[i] = []float64{1, 1}
		}
		return vectors, nil
	})
}

// Topics embeds a sentence as a one-hot vector over the first topic it
// mentions (case-insensitive). Sentences mentioning no topic share an extra
// dimension. Sentences on different topics are orthogonal, at distance 1.
func Topics(topics ...string) embedding.Embedder {
	return EmbedFunc(func(_ context.Context, sentences []string) ([][]float64, error) {
		vectors := make([][]float64, len(sentences))
		for i, s := range sentences {
			v := make([]float64, len(topics)+1)
			v[len(topics)] = 1
			lower := strings.ToLower(s)
			for k, topic := range topics {
				if strings.Contains(lower, strings.ToLower(topic)) {
					v[k], v[len(topics)] = 1, 0
					break
				}
			}
			vectors[i] = v
		}
		return vectors, nil
	})
}

// Failing returns an embedder that always fails with err.
func Failing(err error) embedding.Embedder {
	return EmbedFunc(func(context.Context, []string) ([][]float64, error) {
		return nil, err
	})
}

// Recorder counts the calls made to the embedder it wraps.
type Recorder struct {
	embedding.Embedder
	calls atomic.Int64
}

// Record wraps e.
func Record(e embedding.Embedder) *Recorder {
	return &Recorder{Embedder: e}
}

// Embed forwards to the wrapped embedder.
func (r *Recorder) Embed(ctx context.Context, sentences []string) ([][]float64, error) {
	r.calls.Add(1)
	return r.Embedder.Embed(ctx, sentences)
}

// Calls returns the number of Embed calls so far.
func (r *Recorder) Calls() int {
	return int(r.calls.Load())
}

// Store returns an in-memory document store holding docs, keyed by id.
func Store(t testing.TB, docs map[string]string) *memory.Store {
	t.Helper()
	store := memory.New()
	for id, text := range docs {
		if err := store.Put(context.Background(), &docstore.Document{ID: id, Content: []byte(text)}); err != nil {
			t.Fatalf("put %s: %v", id, err)
		}
	}
	return store
}

// LongSentence returns a sentence of exactly n whitespace-separated words,
// starting with an upper-case letter and ending with a period.
func LongSentence(tag string, n int) string {
	words := make([]string, n)
	words[0] = "S" + tag
	for i := 1; i < n; i++ {
		words[i] = tag + "w"
	}
	words[n-1] += "."
	return strings.Join(words, " ")
}
