// Copyright Semchunk Authors
// SPDX-License-Identifier: Apache-2.0

package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/leseb/semchunk/pkg/docstore"
)

func init() {
	docstore.Providers.Register("filesystem", func(_ context.Context, params map[string]string) (docstore.Store, error) {
		return New(params["base_dir"])
	})
}

// compile-time check
var _ docstore.Store = (*Store)(nil)

const tmpSuffix = ".tmp"

// Store implements docstore.Store over a directory tree. A document id is
// the slash-separated path of the file relative to baseDir:
//
//	<baseDir>/rfp/eligible-1.pdf  ->  id "rfp/eligible-1.pdf"
type Store struct {
	baseDir string
}

// New creates a filesystem-backed Store, creating baseDir if it does not exist.
func New(baseDir string) (*Store, error) {
	if baseDir == "" {
		return nil, errors.New("filesystem doc store: base_dir is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create base dir %s: %w", baseDir, err)
	}
	return &Store{baseDir: baseDir}, nil
}

func (s *Store) pathFor(id string) (string, string, error) {
	key, err := docstore.CleanID(id)
	if err != nil {
		return "", "", fmt.Errorf("document %q: %w", id, err)
	}
	return key, filepath.Join(s.baseDir, filepath.FromSlash(key)), nil
}

// Put writes the document content atomically (temp file + rename).
func (s *Store) Put(_ context.Context, doc *docstore.Document) error {
	_, p, err := s.pathFor(doc.ID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create document dir: %w", err)
	}

	tmp := p + tmpSuffix
	if err := os.WriteFile(tmp, doc.Content, 0o644); err != nil {
		return fmt.Errorf("write content: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		return fmt.Errorf("rename content: %w", err)
	}
	return nil
}

// Get reads the document from disk.
func (s *Store) Get(_ context.Context, id string) (*docstore.Document, error) {
	key, p, err := s.pathFor(id)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("document %s: %w", key, docstore.ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("stat document: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("document %s is a directory: %w", key, docstore.ErrDocumentNotFound)
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}

	return &docstore.Document{
		ID:        key,
		Filename:  path.Base(key),
		MimeType:  mime.TypeByExtension(path.Ext(key)),
		Content:   data,
		CreatedAt: info.ModTime(),
	}, nil
}

// List walks baseDir and returns every regular file as a document id.
func (s *Store) List(_ context.Context) ([]string, error) {
	var ids []string
	err := filepath.WalkDir(s.baseDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(p, tmpSuffix) {
			return nil
		}
		rel, err := filepath.Rel(s.baseDir, p)
		if err != nil {
			return err
		}
		ids = append(ids, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk base dir: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// Close is a no-op for the filesystem store.
func (s *Store) Close(_ context.Context) error {
	return nil
}
