// Copyright Semchunk Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leseb/semchunk/pkg/core/schema"
	"github.com/leseb/semchunk/pkg/docstore"
	"github.com/leseb/semchunk/pkg/docstore/memory"
	"github.com/leseb/semchunk/pkg/observability/logging"
)

// setupWorkspace writes an offline config and documents into a temp dir.
func setupWorkspace(t *testing.T, docs map[string]string) (dir, configPath string) {
	t.Helper()
	for _, k := range []string{"EMBEDDING_PROVIDER", "TOKENIZER_ENCODING", "DOC_STORE_TYPE", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}

	dir = t.TempDir()
	docsDir := filepath.Join(dir, "docs")
	require.NoError(t, os.MkdirAll(docsDir, 0o755))
	for name, text := range docs {
		require.NoError(t, os.WriteFile(filepath.Join(docsDir, name), []byte(text), 0o600))
	}

	configPath = filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
logging:
  level: error
chunking:
  keywords: ["license", "Form 12", "deadline", "payment terms"]
embedding:
  provider: tfidf
tokenizer:
  encoding: words
doc_store:
  type: filesystem
  base_dir: `+docsDir+`
`), 0o600))
	return dir, configPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestChunkCommand_SingleDocument(t *testing.T) {
	_, cfg := setupWorkspace(t, map[string]string{
		"rfp.txt": "Vendor must hold a valid license. Vendor must submit Form 12 before the deadline. Payment terms are net 30.",
	})

	out, err := run(t, "chunk", "--config", cfg, "--env-file", "", "rfp.txt")
	require.NoError(t, err)

	var records []schema.Record
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].ID)
	assert.Equal(t, []string{"license", "Form 12", "deadline", "payment terms"}, records[0].Keywords)
}

func TestChunkCommand_EmptyDocumentWritesEmptyArray(t *testing.T) {
	_, cfg := setupWorkspace(t, map[string]string{"empty.txt": ""})

	out, err := run(t, "chunk", "--config", cfg, "--env-file", "", "empty.txt")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestChunkCommand_SeveralDocumentsToDirectory(t *testing.T) {
	dir, cfg := setupWorkspace(t, map[string]string{
		"a.txt": "Submit all forms. Forms are due Friday.",
		"b.md":  "Notice period is 30 days.",
	})
	outDir := filepath.Join(dir, "out")

	_, err := run(t, "chunk", "--config", cfg, "--env-file", "", "--weighted", "--out", outDir, "a.txt", "b.md")
	require.NoError(t, err)

	for _, name := range []string{"a.json", "b.json"} {
		data, err := os.ReadFile(filepath.Join(outDir, name))
		require.NoError(t, err)
		var records []schema.Record
		require.NoError(t, json.Unmarshal(data, &records))
		assert.NotEmpty(t, records, name)
	}
}

func TestChunkCommand_MissingDocument(t *testing.T) {
	_, cfg := setupWorkspace(t, nil)

	_, err := run(t, "chunk", "--config", cfg, "--env-file", "", "missing.txt")
	assert.ErrorContains(t, err, "document not found")
}

func TestSentencesCommand(t *testing.T) {
	_, cfg := setupWorkspace(t, map[string]string{
		"rfp.txt": "First sentence. Second one? Third!",
	})

	out, err := run(t, "sentences", "--config", cfg, "--env-file", "", "rfp.txt")
	require.NoError(t, err)
	assert.Equal(t, "1\tFirst sentence.\n2\tSecond one?\n3\tThird!\n", out)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version: dev")
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "eligible-1.json", outputName("rfp/eligible-1.pdf"))
	assert.Equal(t, "notes.json", outputName("notes"))
}

func TestChunkCommand_AllDocuments(t *testing.T) {
	dir, cfg := setupWorkspace(t, map[string]string{
		"a.txt": "Submit all forms. Forms are due Friday.",
		"b.txt": "Notice period is 30 days.",
	})
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "docs", "annex"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "annex", "c.txt"), []byte("Font size is 12."), 0o600))

	out, err := run(t, "chunk", "--config", cfg, "--env-file", "", "--all")
	require.NoError(t, err)

	var results map[string][]schema.Record
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	assert.Len(t, results, 3)
	assert.Contains(t, results, "annex/c.txt")
	assert.Equal(t, []string{"notice period"}, results["b.txt"][0].Keywords)

	outDir := filepath.Join(dir, "out")
	_, err = run(t, "chunk", "--config", cfg, "--env-file", "", "--all", "--out", outDir)
	require.NoError(t, err)
	for _, name := range []string{"a.json", "b.json", filepath.Join("annex", "c.json")} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, name)
	}
}

func TestChunkCommand_AllRejectsArguments(t *testing.T) {
	_, cfg := setupWorkspace(t, map[string]string{"a.txt": "One."})

	_, err := run(t, "chunk", "--config", cfg, "--env-file", "", "--all", "a.txt")
	assert.ErrorContains(t, err, "--all does not take document arguments")

	_, err = run(t, "chunk", "--config", cfg, "--env-file", "")
	assert.Error(t, err)
}

type closeFailingStore struct {
	docstore.Store
}

func (closeFailingStore) Close(context.Context) error { return errors.New("bucket gone") }

func TestCloseStore_LogsFailure(t *testing.T) {
	var buf bytes.Buffer
	a := &app{logger: logging.New(logging.Config{Level: "warn", Output: &buf})}

	a.closeStore(closeFailingStore{Store: memory.New()})
	assert.Contains(t, buf.String(), "Failed to close document store")
	assert.Contains(t, buf.String(), "bucket gone")

	buf.Reset()
	a.closeStore(memory.New())
	assert.Empty(t, buf.String())
}
