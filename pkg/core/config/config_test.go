// Copyright Semchunk Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/leseb/semchunk/pkg/keywords"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"LOG_LEVEL", "EMBEDDING_PROVIDER", "EMBEDDING_ENDPOINT", "EMBEDDING_API_KEY", "OPENAI_API_KEY",
		"EMBEDDING_MODEL", "TOKENIZER_ENCODING", "DOC_STORE_TYPE", "DOC_STORE_S3_BUCKET",
		"DOC_STORE_S3_REGION", "DOC_STORE_S3_ENDPOINT",
	} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	clearEnv(t)

	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Chunking.MaxTokens != 1000 {
		t.Errorf("MaxTokens = %d, want 1000", cfg.Chunking.MaxTokens)
	}
	if cfg.Chunking.OverlapTokens != 50 {
		t.Errorf("OverlapTokens = %d, want 50", cfg.Chunking.OverlapTokens)
	}
	if cfg.Chunking.DistanceThreshold != 1.5 {
		t.Errorf("DistanceThreshold = %v, want 1.5", cfg.Chunking.DistanceThreshold)
	}
	if !slices.Equal(cfg.Chunking.Keywords, keywords.DefaultVocabulary) {
		t.Errorf("Keywords = %v, want the default vocabulary", cfg.Chunking.Keywords)
	}
	if cfg.Embedding.Provider != "openai" {
		t.Errorf("Embedding.Provider = %q, want openai", cfg.Embedding.Provider)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("Embedding.Model = %q", cfg.Embedding.Model)
	}
	if cfg.Tokenizer.Encoding != "cl100k_base" {
		t.Errorf("Tokenizer.Encoding = %q, want cl100k_base", cfg.Tokenizer.Encoding)
	}
	if cfg.DocStore.Type != "filesystem" {
		t.Errorf("DocStore.Type = %q, want filesystem", cfg.DocStore.Type)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoad_KeepsDefaultsForMissingKeys(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
chunking:
  max_tokens: 512
  overlap_tokens: 0
  keywords: ["license", "Form 12"]
embedding:
  provider: tfidf
  timeout: 15s
tokenizer:
  encoding: words
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.Chunking.MaxTokens != 512 {
		t.Errorf("MaxTokens = %d, want 512", cfg.Chunking.MaxTokens)
	}
	if cfg.Chunking.OverlapTokens != 0 {
		t.Errorf("OverlapTokens = %d, an explicit zero must disable overlap", cfg.Chunking.OverlapTokens)
	}
	if cfg.Chunking.DistanceThreshold != 1.5 {
		t.Errorf("DistanceThreshold = %v, want default 1.5", cfg.Chunking.DistanceThreshold)
	}
	if want := []string{"license", "Form 12"}; !slices.Equal(cfg.Chunking.Keywords, want) {
		t.Errorf("Keywords = %v, want %v", cfg.Chunking.Keywords, want)
	}
	if cfg.Embedding.Provider != "tfidf" {
		t.Errorf("Embedding.Provider = %q, want tfidf", cfg.Embedding.Provider)
	}
	if cfg.Embedding.Timeout != 15*time.Second {
		t.Errorf("Embedding.Timeout = %v, want 15s", cfg.Embedding.Timeout)
	}
	if cfg.Tokenizer.Encoding != "words" {
		t.Errorf("Tokenizer.Encoding = %q, want words", cfg.Tokenizer.Encoding)
	}
	if cfg.DocStore.Type != "filesystem" {
		t.Errorf("DocStore.Type = %q, want filesystem", cfg.DocStore.Type)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("EMBEDDING_ENDPOINT", "http://localhost:11434/v1")
	t.Setenv("OPENAI_API_KEY", "sk-fallback")
	t.Setenv("EMBEDDING_MODEL", "nomic-embed-text")
	t.Setenv("DOC_STORE_TYPE", "s3")
	t.Setenv("DOC_STORE_S3_BUCKET", "rfps")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(writeConfig(t, "embedding:\n  endpoint: http://ignored\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	checks := []struct {
		name, got, want string
	}{
		{"Embedding.Endpoint", cfg.Embedding.Endpoint, "http://localhost:11434/v1"},
		{"Embedding.APIKey", cfg.Embedding.APIKey, "sk-fallback"},
		{"Embedding.Model", cfg.Embedding.Model, "nomic-embed-text"},
		{"DocStore.Type", cfg.DocStore.Type, "s3"},
		{"DocStore.S3Bucket", cfg.DocStore.S3Bucket, "rfps"},
		{"DocStore.S3Region", cfg.DocStore.S3Region, "us-east-1"},
		{"Logging.Level", cfg.Logging.Level, "debug"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.name, c.got, c.want)
		}
	}

	t.Setenv("EMBEDDING_API_KEY", "sk-primary")
	if got := Default().Embedding.APIKey; got != "sk-primary" {
		t.Errorf("EMBEDDING_API_KEY not preferred over OPENAI_API_KEY: got %q", got)
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("missing file error = %v", err)
	}

	_, err = Load(writeConfig(t, "chunking: [not, a, map]"))
	if err == nil || !strings.Contains(err.Error(), "failed to parse config") {
		t.Errorf("bad yaml error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "zero max", mutate: func(c *Config) { c.Chunking.MaxTokens = 0 }, want: "max_tokens must be positive"},
		{name: "negative overlap", mutate: func(c *Config) { c.Chunking.OverlapTokens = -1 }, want: "overlap_tokens must not be negative"},
		{name: "overlap not below max", mutate: func(c *Config) { c.Chunking.OverlapTokens = 1000 }, want: "must be less than max_tokens"},
		{name: "negative threshold", mutate: func(c *Config) { c.Chunking.DistanceThreshold = -0.1 }, want: "distance_threshold"},
		{name: "s3 without bucket", mutate: func(c *Config) { c.DocStore.Type = "s3" }, want: "s3_bucket is required"},
		{name: "bad log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, want: "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.want)
			}
		})
	}
}

func TestParams(t *testing.T) {
	emb := EmbeddingConfig{Endpoint: "http://e", Model: "m", Dimensions: 384, BatchSize: 32, Timeout: time.Minute}
	want := map[string]string{
		"endpoint":   "http://e",
		"api_key":    "",
		"model":      "m",
		"dimensions": "384",
		"batch_size": "32",
		"timeout":    "1m0s",
	}
	if got := emb.Params(); !maps.Equal(got, want) {
		t.Errorf("EmbeddingConfig.Params() = %v, want %v", got, want)
	}

	ds := DocStoreConfig{Type: "s3", S3Bucket: "b", S3Prefix: "rfps/"}
	params := ds.Params()
	if params["bucket"] != "b" {
		t.Errorf("bucket = %q, want b", params["bucket"])
	}
	if params["prefix"] != "rfps/" {
		t.Errorf("prefix = %q, want rfps/", params["prefix"])
	}
}
