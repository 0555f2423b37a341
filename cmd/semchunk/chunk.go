// Copyright Semchunk Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leseb/semchunk/pkg/core/engine"
	"github.com/leseb/semchunk/pkg/core/schema"
	"github.com/leseb/semchunk/pkg/tokenizer"
)

// keywordRepeat is how often tags are repeated in weighted passages.
const keywordRepeat = 3

type chunkOptions struct {
	out         string
	concurrency int
	weighted    bool
	all         bool
}

func newChunkCommand(a *app) *cobra.Command {
	opts := &chunkOptions{}
	cmd := &cobra.Command{
		Use:   "chunk (<doc> [docs...] | --all)",
		Short: "Chunk documents and write the records as JSON",
		Long: `Chunk documents and write the records as JSON.

With one document the output is the record array. With several, --out names
a directory that receives one <name>.json per document; without --out a
single object keyed by document id is written to stdout.

--all chunks every document the configured store lists and always uses the
several-documents layout; files under --out mirror the document ids.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.all {
				if len(args) > 0 {
					return errors.New("--all does not take document arguments")
				}
				return nil
			}
			return cobra.MinimumNArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.runChunk(ctx, cmd.OutOrStdout(), args, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output file (one document) or directory (several)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 4, "Documents chunked in parallel")
	cmd.Flags().BoolVar(&opts.weighted, "weighted", false, "Add a keyword-weighted passage to each record")
	cmd.Flags().BoolVar(&opts.all, "all", false, "Chunk every document in the document store")
	return cmd
}

func (a *app) runChunk(ctx context.Context, stdout io.Writer, args []string, opts *chunkOptions) error {
	if opts.all && a.cfg.DocStore.Type == "filesystem" && a.cfg.DocStore.BaseDir == "" {
		return errors.New("--all needs doc_store.base_dir for the filesystem store")
	}
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer a.closeStore(store)

	embedder, err := a.newEmbedder(ctx)
	if err != nil {
		return err
	}
	counter, err := tokenizer.New(a.cfg.Tokenizer.Encoding)
	if err != nil {
		return err
	}

	ch := a.cfg.Chunking
	engOpts := engine.Options{
		Embedder:      embedder,
		Counter:       counter,
		Store:         store,
		Threshold:     ch.DistanceThreshold,
		MaxTokens:     ch.MaxTokens,
		OverlapTokens: ch.OverlapTokens,
		Vocabulary:    ch.Keywords,
		Logger:        a.logger,
	}
	if opts.weighted {
		engOpts.KeywordWeight = keywordRepeat
	}
	eng, err := engine.New(engOpts)
	if err != nil {
		return err
	}

	var ids []string
	if opts.all {
		if ids, err = store.List(ctx); err != nil {
			return fmt.Errorf("list documents: %w", err)
		}
		a.logger.Info("Listed documents", "count", len(ids))
	} else {
		ids = make([]string, len(args))
		for i, arg := range args {
			if ids[i], err = a.documentID(arg); err != nil {
				return err
			}
		}
	}

	start := time.Now()
	results, err := eng.ChunkDocuments(ctx, ids, opts.concurrency)
	if err != nil {
		return err
	}
	for _, id := range ids {
		a.logger.Info("Chunked document", "document", id, "chunks", len(results[id]))
	}
	a.logger.Info("Finished", "documents", len(results), "duration", time.Since(start))

	if len(ids) == 1 && !opts.all {
		return writeJSON(stdout, opts.out, results[ids[0]])
	}
	if opts.out == "" {
		return writeJSON(stdout, "", results)
	}
	if err := os.MkdirAll(opts.out, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", opts.out, err)
	}
	for _, id := range ids {
		target := filepath.Join(opts.out, outputName(id))
		if opts.all {
			target = filepath.Join(opts.out, filepath.FromSlash(strings.TrimSuffix(id, path.Ext(id))+".json"))
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create output dir %s: %w", filepath.Dir(target), err)
			}
		}
		if err := writeJSON(stdout, target, results[id]); err != nil {
			return err
		}
	}
	return nil
}

// outputName derives "<base>.json" from a document id.
func outputName(id string) string {
	base := path.Base(id)
	return strings.TrimSuffix(base, path.Ext(base)) + ".json"
}

// writeJSON writes v indented to target, or to stdout when target is empty.
func writeJSON(stdout io.Writer, target string, v any) error {
	if records, ok := v.([]schema.Record); ok && records == nil {
		v = []schema.Record{}
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}
	data = append(data, '\n')

	if target == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	return nil
}
