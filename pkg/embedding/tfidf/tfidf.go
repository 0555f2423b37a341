// Copyright Semchunk Authors
// SPDX-License-Identifier: Apache-2.0

// Package tfidf is an offline embedder that builds TF-IDF vectors over the
// sentences of a single call.
package tfidf

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/leseb/semchunk/pkg/embedding"
)

func init() {
	embedding.Providers.Register("tfidf", func(context.Context, map[string]string) (embedding.Embedder, error) {
		return New(), nil
	})
}

// compile-time check
var _ embedding.Embedder = (*Embedder)(nil)

var tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)

// Embedder fits a vocabulary and IDF weights on each batch it is given, so
// vectors from different calls are not comparable. It holds no state and is
// safe for concurrent use.
type Embedder struct {
	stopwords map[string]struct{}
}

// New creates a TF-IDF embedder with an English stopword list.
func New() *Embedder {
	return &Embedder{stopwords: defaultStopwords()}
}

// Embed returns one L2-normalized TF-IDF vector per sentence. Sentences with
// no vocabulary terms get the zero vector.
func (e *Embedder) Embed(ctx context.Context, sentences []string) ([][]float64, error) {
	if len(sentences) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	docs := make([][]string, len(sentences))
	df := make(map[string]int)
	for i, s := range sentences {
		docs[i] = e.tokenize(s)
		seen := make(map[string]struct{}, len(docs[i]))
		for _, tok := range docs[i] {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	// Stable vocabulary order keeps vectors deterministic.
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	vocabulary := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	n := float64(len(sentences))
	for i, term := range terms {
		vocabulary[term] = i
		// Smoothed IDF
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}

	dim := max(len(terms), 1)
	vectors := make([][]float64, len(sentences))
	for i, tokens := range docs {
		vectors[i] = vectorize(tokens, vocabulary, idf, dim)
	}
	return vectors, nil
}

func vectorize(tokens []string, vocabulary map[string]int, idf []float64, dim int) []float64 {
	vec := make([]float64, dim)
	if len(tokens) == 0 {
		return vec
	}
	tf := make(map[int]int)
	for _, tok := range tokens {
		tf[vocabulary[tok]]++
	}
	for idx, count := range tf {
		vec[idx] = float64(count) / float64(len(tokens)) * idf[idx]
	}

	// L2 normalize
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

func (e *Embedder) tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := e.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by",
		"with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "its", "this", "that", "these",
		"those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into",
		"about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own",
		"same", "too", "very", "can", "will", "just", "should", "now", "must", "shall", "may", "all", "any",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
