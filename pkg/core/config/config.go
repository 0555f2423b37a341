// Copyright Semchunk Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/leseb/semchunk/pkg/cluster"
	"github.com/leseb/semchunk/pkg/keywords"
	"github.com/leseb/semchunk/pkg/merge"
	"github.com/leseb/semchunk/pkg/tokenizer"
)

// Config represents the main configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Tokenizer TokenizerConfig `yaml:"tokenizer"`
	DocStore  DocStoreConfig  `yaml:"doc_store"`
}

// LoggingConfig contains log output configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // "text" (default) or "json"
}

// ChunkingConfig contains the chunking parameters
type ChunkingConfig struct {
	MaxTokens         int      `yaml:"max_tokens"`
	OverlapTokens     int      `yaml:"overlap_tokens"` // 0 disables overlap
	DistanceThreshold float64  `yaml:"distance_threshold"`
	Keywords          []string `yaml:"keywords"`
}

// EmbeddingConfig contains embedding service configuration
type EmbeddingConfig struct {
	Provider   string        `yaml:"provider"`   // "openai" (default) or "tfidf"
	Endpoint   string        `yaml:"endpoint"`   // e.g. "https://api.openai.com/v1"
	APIKey     string        `yaml:"api_key"`
	Model      string        `yaml:"model"`      // e.g. "text-embedding-3-small"
	Dimensions int           `yaml:"dimensions"` // 0 keeps the model's native size
	BatchSize  int           `yaml:"batch_size"`
	MaxRetries int           `yaml:"max_retries"`
	Timeout    time.Duration `yaml:"timeout"`
}

// TokenizerConfig selects the token counter
type TokenizerConfig struct {
	Encoding string `yaml:"encoding"` // e.g. "cl100k_base", a model name, or "words"
}

// DocStoreConfig contains document store backend configuration
type DocStoreConfig struct {
	Type       string `yaml:"type"`        // "filesystem" (default), "memory" or "s3"
	BaseDir    string `yaml:"base_dir"`    // filesystem root
	S3Bucket   string `yaml:"s3_bucket"`   // S3 bucket name
	S3Region   string `yaml:"s3_region"`   // AWS region
	S3Prefix   string `yaml:"s3_prefix"`   // key prefix, e.g. "rfps/"
	S3Endpoint string `yaml:"s3_endpoint"` // custom endpoint for MinIO
}

// Load loads configuration from a YAML file. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnv(cfg)
	applyEmbeddingDefaults(&cfg.Embedding)
	applyTokenizerDefaults(&cfg.Tokenizer)
	applyDocStoreDefaults(&cfg.DocStore)

	return cfg, nil
}

// Default returns default configuration with environment overrides applied
func Default() *Config {
	cfg := defaults()
	applyEnv(cfg)
	applyEmbeddingDefaults(&cfg.Embedding)
	applyTokenizerDefaults(&cfg.Tokenizer)
	applyDocStoreDefaults(&cfg.DocStore)
	return cfg
}

func defaults() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Chunking: ChunkingConfig{
			MaxTokens:         merge.DefaultMaxTokens,
			OverlapTokens:     merge.DefaultOverlapTokens,
			DistanceThreshold: cluster.DefaultThreshold,
			Keywords:          append([]string(nil), keywords.DefaultVocabulary...),
		},
		Embedding: EmbeddingConfig{
			MaxRetries: 2,
			Timeout:    60 * time.Second,
		},
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Embedding env overrides
	if v := os.Getenv("EMBEDDING_PROVIDER"); v != "" {
		cfg.Embedding.Provider = v
	}
	if v := os.Getenv("EMBEDDING_ENDPOINT"); v != "" {
		cfg.Embedding.Endpoint = v
	}
	if v := os.Getenv("EMBEDDING_API_KEY"); v != "" {
		cfg.Embedding.APIKey = v
	} else if v := os.Getenv("OPENAI_API_KEY"); v != "" && cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = v
	}
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}

	if v := os.Getenv("TOKENIZER_ENCODING"); v != "" {
		cfg.Tokenizer.Encoding = v
	}

	// Doc store env overrides
	if v := os.Getenv("DOC_STORE_TYPE"); v != "" {
		cfg.DocStore.Type = v
	}
	if v := os.Getenv("DOC_STORE_S3_BUCKET"); v != "" {
		cfg.DocStore.S3Bucket = v
	}
	if v := os.Getenv("DOC_STORE_S3_REGION"); v != "" {
		cfg.DocStore.S3Region = v
	}
	if v := os.Getenv("DOC_STORE_S3_ENDPOINT"); v != "" {
		cfg.DocStore.S3Endpoint = v
	}
}

func applyEmbeddingDefaults(cfg *EmbeddingConfig) {
	if cfg.Provider == "" {
		cfg.Provider = "openai"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 256
	}
}

func applyTokenizerDefaults(cfg *TokenizerConfig) {
	if cfg.Encoding == "" {
		cfg.Encoding = tokenizer.DefaultEncoding
	}
}

func applyDocStoreDefaults(cfg *DocStoreConfig) {
	if cfg.Type == "" {
		cfg.Type = "filesystem"
	}
	if cfg.Type == "s3" && cfg.S3Region == "" {
		cfg.S3Region = "us-east-1"
	}
}

// Validate reports configuration values the pipeline cannot run with.
func (c *Config) Validate() error {
	var errs []error
	ch := c.Chunking
	if ch.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("chunking.max_tokens must be positive, got %d", ch.MaxTokens))
	}
	if ch.OverlapTokens < 0 {
		errs = append(errs, fmt.Errorf("chunking.overlap_tokens must not be negative, got %d", ch.OverlapTokens))
	} else if ch.MaxTokens > 0 && ch.OverlapTokens >= ch.MaxTokens {
		errs = append(errs, fmt.Errorf("chunking.overlap_tokens (%d) must be less than max_tokens (%d)", ch.OverlapTokens, ch.MaxTokens))
	}
	if math.IsNaN(ch.DistanceThreshold) || ch.DistanceThreshold < 0 {
		errs = append(errs, fmt.Errorf("chunking.distance_threshold must not be negative, got %v", ch.DistanceThreshold))
	}
	if c.Embedding.BatchSize < 0 {
		errs = append(errs, fmt.Errorf("embedding.batch_size must not be negative, got %d", c.Embedding.BatchSize))
	}
	if c.DocStore.Type == "s3" && c.DocStore.S3Bucket == "" {
		errs = append(errs, errors.New("doc_store.s3_bucket is required for the s3 doc store"))
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}

// Params flattens the embedding section into provider parameters.
func (e EmbeddingConfig) Params() map[string]string {
	params := map[string]string{
		"endpoint": e.Endpoint,
		"api_key":  e.APIKey,
		"model":    e.Model,
	}
	if e.Dimensions > 0 {
		params["dimensions"] = strconv.Itoa(e.Dimensions)
	}
	if e.BatchSize > 0 {
		params["batch_size"] = strconv.Itoa(e.BatchSize)
	}
	if e.MaxRetries > 0 {
		params["max_retries"] = strconv.Itoa(e.MaxRetries)
	}
	if e.Timeout > 0 {
		params["timeout"] = e.Timeout.String()
	}
	return params
}

// Params flattens the doc store section into provider parameters.
func (d DocStoreConfig) Params() map[string]string {
	return map[string]string{
		"base_dir": d.BaseDir,
		"bucket":   d.S3Bucket,
		"region":   d.S3Region,
		"prefix":   d.S3Prefix,
		"endpoint": d.S3Endpoint,
	}
}
