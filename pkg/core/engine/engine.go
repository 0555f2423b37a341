// Copyright Semchunk Authors
// SPDX-License-Identifier: Apache-2.0

// Package engine runs the chunking pipeline: extract, segment, embed,
// cluster, merge and tag.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/leseb/semchunk/pkg/cluster"
	"github.com/leseb/semchunk/pkg/core/schema"
	"github.com/leseb/semchunk/pkg/docstore"
	"github.com/leseb/semchunk/pkg/embedding"
	"github.com/leseb/semchunk/pkg/extractor"
	"github.com/leseb/semchunk/pkg/keywords"
	"github.com/leseb/semchunk/pkg/merge"
	"github.com/leseb/semchunk/pkg/observability/logging"
	"github.com/leseb/semchunk/pkg/segment"
	"github.com/leseb/semchunk/pkg/tokenizer"
)

// Options configures an Engine. Embedder and Counter are required; Store is
// only needed by ChunkDocument and ChunkDocuments.
type Options struct {
	Embedder      embedding.Embedder
	Counter       tokenizer.Counter
	Store         docstore.Store
	Threshold     float64
	MaxTokens     int
	OverlapTokens int
	Vocabulary    []string
	// KeywordWeight > 0 fills Record.Passage with the tags repeated that
	// many times ahead of the chunk.
	KeywordWeight int
	Logger        *logging.Logger
}

// DefaultOptions returns Options with the default chunking parameters and
// vocabulary. Capabilities still have to be set.
func DefaultOptions() Options {
	return Options{
		Threshold:     cluster.DefaultThreshold,
		MaxTokens:     merge.DefaultMaxTokens,
		OverlapTokens: merge.DefaultOverlapTokens,
		Vocabulary:    keywords.DefaultVocabulary,
	}
}

// Engine is the chunking pipeline. It keeps no per-run state, so one Engine
// may chunk several documents concurrently.
type Engine struct {
	embedder  embedding.Embedder
	store     docstore.Store
	threshold float64
	merger    *merge.Merger
	tagger    *keywords.Tagger
	weight    int
	logger    *logging.Logger
}

// New creates a new Engine instance.
func New(opts Options) (*Engine, error) {
	if opts.Embedder == nil {
		return nil, errors.New("embedder is required")
	}
	if opts.Counter == nil {
		return nil, errors.New("token counter is required")
	}
	if opts.MaxTokens <= 0 {
		return nil, fmt.Errorf("max tokens must be positive, got %d", opts.MaxTokens)
	}
	if opts.OverlapTokens < 0 {
		return nil, fmt.Errorf("overlap tokens must not be negative, got %d", opts.OverlapTokens)
	}
	if math.IsNaN(opts.Threshold) || opts.Threshold < 0 {
		return nil, fmt.Errorf("distance threshold must not be negative, got %v", opts.Threshold)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	return &Engine{
		embedder:  opts.Embedder,
		store:     opts.Store,
		threshold: opts.Threshold,
		merger: &merge.Merger{
			Counter:       opts.Counter,
			MaxTokens:     opts.MaxTokens,
			OverlapTokens: opts.OverlapTokens,
		},
		tagger: keywords.New(opts.Vocabulary),
		weight: opts.KeywordWeight,
		logger: logger,
	}, nil
}

// ChunkDocument reads a document from the store and chunks its text.
func (e *Engine) ChunkDocument(ctx context.Context, id string) ([]schema.Record, error) {
	if e.store == nil {
		return nil, errors.New("no document store configured")
	}
	text, err := extractor.New(e.store).Extract(ctx, id)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("extracted document", "document", id, "chars", len(text))
	return e.ChunkText(ctx, id, text)
}

// ChunkText chunks already extracted text. docID only labels errors and
// logs. An empty or sentence-less text yields no records and no error; the
// embedder is not called. Any stage failure aborts the run with no records.
func (e *Engine) ChunkText(ctx context.Context, docID, text string) ([]schema.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := e.logger.With("document", docID)

	sentences := segment.Split(text)
	log.Debug("segmented document", "sentences", len(sentences))
	if len(sentences) == 0 {
		return []schema.Record{}, nil
	}

	vectors, err := e.embedder.Embed(ctx, sentences)
	if err != nil {
		var embErr *embedding.EmbeddingError
		if errors.As(err, &embErr) {
			return nil, err
		}
		return nil, &embedding.EmbeddingError{Document: docID, Err: err}
	}
	if err := embedding.Check(docID, vectors, len(sentences)); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	labels, err := cluster.Labels(vectors, e.threshold)
	if err != nil {
		return nil, fmt.Errorf("cluster %s: %w", docID, err)
	}
	groups := cluster.Group(labels)
	log.Debug("clustered sentences", "clusters", len(groups))

	pieces, err := e.merger.Merge(sentences, groups)
	if err != nil {
		return nil, err
	}
	log.Debug("merged chunks", "chunks", len(pieces))

	records := make([]schema.Record, len(pieces))
	for i, p := range pieces {
		tags := e.tagger.Tag(p.Text)
		records[i] = schema.Record{
			ID:       i + 1,
			Chunk:    p.Text,
			Keywords: tags,
		}
		if e.weight > 0 {
			records[i].Passage = keywords.WeightedPassage(p.Text, tags, e.weight)
		}
	}
	return records, nil
}

// ChunkDocuments chunks independent documents with at most concurrency runs
// in flight (unbounded when concurrency <= 0). The first failure cancels the
// remaining runs and is returned; results are keyed by document id.
func (e *Engine) ChunkDocuments(ctx context.Context, ids []string, concurrency int) (map[string][]schema.Record, error) {
	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}

	var mu sync.Mutex
	results := make(map[string][]schema.Record, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		g.Go(func() error {
			records, err := e.ChunkDocument(gctx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			results[id] = records
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
