// Copyright Semchunk Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/leseb/semchunk/pkg/docstore"
)

func init() {
	docstore.Providers.Register("memory", func(_ context.Context, _ map[string]string) (docstore.Store, error) {
		return New(), nil
	})
}

// compile-time check
var _ docstore.Store = (*Store)(nil)

// Store is an in-memory document store.
type Store struct {
	mu   sync.RWMutex
	docs map[string]*docstore.Document
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		docs: make(map[string]*docstore.Document),
	}
}

// Put stores a copy of doc, replacing any document with the same id.
func (s *Store) Put(_ context.Context, doc *docstore.Document) error {
	id, err := docstore.CleanID(doc.ID)
	if err != nil {
		return fmt.Errorf("put %q: %w", doc.ID, err)
	}

	cp := *doc
	cp.ID = id
	cp.Content = append([]byte(nil), doc.Content...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[id] = &cp
	return nil
}

// Get returns a copy of the document.
func (s *Store) Get(_ context.Context, id string) (*docstore.Document, error) {
	key, err := docstore.CleanID(id)
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", id, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, exists := s.docs[key]
	if !exists {
		return nil, fmt.Errorf("document %s: %w", key, docstore.ErrDocumentNotFound)
	}

	cp := *doc
	cp.Content = append([]byte(nil), doc.Content...)
	return &cp, nil
}

// List returns all document ids in sorted order.
func (s *Store) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.docs))
	for id := range s.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close(_ context.Context) error {
	return nil
}
