// Copyright Semchunk Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/leseb/semchunk/pkg/core/config"
	"github.com/leseb/semchunk/pkg/docstore"
	_ "github.com/leseb/semchunk/pkg/docstore/filesystem"
	_ "github.com/leseb/semchunk/pkg/docstore/memory"
	_ "github.com/leseb/semchunk/pkg/docstore/s3"
	"github.com/leseb/semchunk/pkg/embedding"
	_ "github.com/leseb/semchunk/pkg/embedding/openai"
	_ "github.com/leseb/semchunk/pkg/embedding/tfidf"
	"github.com/leseb/semchunk/pkg/observability/logging"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	envFile    string
	logLevel   string

	cfg    *config.Config
	logger *logging.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "semchunk",
		Short:         "Split documents into semantically coherent, token-bounded chunks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "config.yaml", "Path to configuration file")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Path to a .env file loaded before configuration")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override logging.level")

	root.AddCommand(
		newChunkCommand(a),
		newSentencesCommand(a),
		newVersionCommand(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load env file %s: %w", a.envFile, err)
		}
	}

	cfg, loadErr := config.Load(a.configPath)
	if loadErr != nil {
		cfg = config.Default()
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}

	a.logger = logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cmd.ErrOrStderr(),
	})
	if loadErr != nil {
		// A missing file is normal; everything else is worth a warning.
		if errors.Is(loadErr, fs.ErrNotExist) {
			a.logger.Debug("No config file, using defaults", "path", a.configPath)
		} else {
			a.logger.Warn("Failed to load config, using defaults", "error", loadErr)
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg
	return nil
}

// openStore builds the configured document store. A filesystem store without
// a base_dir is rooted at "/" so that documents are addressed by path.
func (a *app) openStore(ctx context.Context) (docstore.Store, error) {
	params := a.cfg.DocStore.Params()
	if a.cfg.DocStore.Type == "filesystem" && a.cfg.DocStore.BaseDir == "" {
		params["base_dir"] = string(filepath.Separator)
	}
	store, err := docstore.Providers.New(ctx, a.cfg.DocStore.Type, params)
	if err != nil {
		return nil, err
	}
	a.logger.Info("Initialized document store", "type", a.cfg.DocStore.Type)
	return store, nil
}

// closeStore releases the store, logging rather than returning a failure
// since the command's own result is already decided.
func (a *app) closeStore(store docstore.Store) {
	if err := store.Close(context.Background()); err != nil {
		a.logger.Warn("Failed to close document store", "error", err)
	}
}

// documentID maps a command-line argument to a store id. Paths given to a
// filesystem store without base_dir are made absolute.
func (a *app) documentID(arg string) (string, error) {
	if a.cfg.DocStore.Type != "filesystem" || a.cfg.DocStore.BaseDir != "" {
		return arg, nil
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", arg, err)
	}
	return filepath.ToSlash(abs), nil
}

func (a *app) newEmbedder(ctx context.Context) (embedding.Embedder, error) {
	emb, err := embedding.Providers.New(ctx, a.cfg.Embedding.Provider, a.cfg.Embedding.Params())
	if err != nil {
		return nil, err
	}
	a.logger.Info("Initialized embedder",
		"provider", a.cfg.Embedding.Provider,
		"endpoint", a.cfg.Embedding.Endpoint,
		"model", a.cfg.Embedding.Model)
	return emb, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "semchunk\nVersion: %s\nBuild Time: %s\n", Version, BuildTime)
		},
	}
}
