// Copyright Semchunk Authors
// SPDX-License-Identifier: Apache-2.0

// Package openai embeds sentences through an OpenAI-compatible embeddings
// endpoint.
package openai

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/leseb/semchunk/pkg/embedding"
)

// DefaultModel is the embedding model used when none is configured.
const DefaultModel = "text-embedding-3-small"

// DefaultBatchSize bounds the number of sentences sent in one request.
const DefaultBatchSize = 256

func init() {
	embedding.Providers.Register("openai", func(_ context.Context, params map[string]string) (embedding.Embedder, error) {
		opts := Options{
			BaseURL: params["endpoint"],
			APIKey:  params["api_key"],
			Model:   params["model"],
		}
		var err error
		if opts.Dimensions, err = intParam(params, "dimensions"); err != nil {
			return nil, err
		}
		if opts.BatchSize, err = intParam(params, "batch_size"); err != nil {
			return nil, err
		}
		if opts.MaxRetries, err = intParam(params, "max_retries"); err != nil {
			return nil, err
		}
		if v := params["timeout"]; v != "" {
			if opts.Timeout, err = time.ParseDuration(v); err != nil {
				return nil, fmt.Errorf("invalid timeout %q: %w", v, err)
			}
		}
		return New(opts), nil
	})
}

func intParam(params map[string]string, key string) (int, error) {
	v := params[key]
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

// compile-time check
var _ embedding.Embedder = (*Embedder)(nil)

// Options configures the OpenAI embedder.
type Options struct {
	BaseURL    string // e.g. "http://localhost:11434/v1"; SDK default when empty
	APIKey     string
	Model      string
	Dimensions int // 0 keeps the model's native size
	BatchSize  int
	MaxRetries int // 0 keeps the SDK default
	Timeout    time.Duration
}

// Embedder implements embedding.Embedder using the OpenAI SDK.
type Embedder struct {
	client     openai.Client
	model      string
	dimensions int
	batchSize  int
}

// New creates an embedder with its own base URL and API key.
func New(opts Options) *Embedder {
	reqOpts := []option.RequestOption{}

	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(opts.APIKey))
	} else {
		// Local servers accept any key, the SDK insists on one.
		reqOpts = append(reqOpts, option.WithAPIKey("dummy"))
	}
	if opts.MaxRetries > 0 {
		reqOpts = append(reqOpts, option.WithMaxRetries(opts.MaxRetries))
	}
	if opts.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(opts.Timeout))
	}

	model := opts.Model
	if model == "" {
		model = DefaultModel
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &Embedder{
		client:     openai.NewClient(reqOpts...),
		model:      model,
		dimensions: opts.Dimensions,
		batchSize:  batchSize,
	}
}

// Embed generates one vector per sentence, preserving input order.
func (e *Embedder) Embed(ctx context.Context, sentences []string) ([][]float64, error) {
	if len(sentences) == 0 {
		return nil, nil
	}

	results := make([][]float64, len(sentences))
	for start := 0; start < len(sentences); start += e.batchSize {
		end := min(start+e.batchSize, len(sentences))
		if err := e.embedBatch(ctx, sentences[start:end], results[start:end]); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (e *Embedder) embedBatch(ctx context.Context, batch []string, out [][]float64) error {
	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(e.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: batch,
		},
	}
	if e.dimensions > 0 {
		params.Dimensions = openai.Int(int64(e.dimensions))
	}

	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) != len(batch) {
		return fmt.Errorf("%w: got %d, want %d", embedding.ErrCardinality, len(resp.Data), len(batch))
	}

	// Servers may return items out of order; each carries its input index.
	for _, d := range resp.Data {
		idx := int(d.Index)
		if idx < 0 || idx >= len(batch) || out[idx] != nil {
			return fmt.Errorf("embedding response has invalid index %d", d.Index)
		}
		out[idx] = d.Embedding
	}
	return nil
}
