// Copyright Semchunk Authors
// SPDX-License-Identifier: Apache-2.0

// Package docstoretest provides a shared conformance test suite for
// docstore.Store implementations. Each backend should call
// RunConformanceTests from its own _test.go file.
package docstoretest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leseb/semchunk/pkg/docstore"
)

// RunConformanceTests exercises a Store implementation against the shared
// contract. newStore is called once per sub-test to provide an isolated store.
func RunConformanceTests(t *testing.T, newStore func(t *testing.T) docstore.Store) {
	t.Helper()

	t.Run("PutAndGet", func(t *testing.T) {
		store := newStore(t)
		defer store.Close(context.Background())
		ctx := context.Background()

		doc := &docstore.Document{
			ID:        "rfp/eligible-1.txt",
			Filename:  "eligible-1.txt",
			MimeType:  "text/plain",
			Content:   []byte("Vendor must hold a valid license."),
			CreatedAt: time.Now().Truncate(time.Millisecond),
		}
		if err := store.Put(ctx, doc); err != nil {
			t.Fatalf("Put: %v", err)
		}

		got, err := store.Get(ctx, doc.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.ID != doc.ID {
			t.Errorf("ID = %q, want %q", got.ID, doc.ID)
		}
		if got.Name() != "eligible-1.txt" {
			t.Errorf("Name() = %q, want %q", got.Name(), "eligible-1.txt")
		}
		if string(got.Content) != string(doc.Content) {
			t.Errorf("content mismatch: got %q, want %q", got.Content, doc.Content)
		}
	})

	t.Run("PutReplaces", func(t *testing.T) {
		store := newStore(t)
		defer store.Close(context.Background())
		ctx := context.Background()

		for _, body := range []string{"first", "second"} {
			if err := store.Put(ctx, &docstore.Document{ID: "notes.txt", Content: []byte(body)}); err != nil {
				t.Fatalf("Put(%s): %v", body, err)
			}
		}

		got, err := store.Get(ctx, "notes.txt")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if string(got.Content) != "second" {
			t.Errorf("expected replaced content, got %q", got.Content)
		}
	})

	t.Run("GetReturnsCopy", func(t *testing.T) {
		store := newStore(t)
		defer store.Close(context.Background())
		ctx := context.Background()

		if err := store.Put(ctx, &docstore.Document{ID: "a.txt", Content: []byte("abc")}); err != nil {
			t.Fatalf("Put: %v", err)
		}
		first, err := store.Get(ctx, "a.txt")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		first.Content[0] = 'X'

		second, err := store.Get(ctx, "a.txt")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if string(second.Content) != "abc" {
			t.Errorf("mutating a returned document leaked into the store: %q", second.Content)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		store := newStore(t)
		defer store.Close(context.Background())

		_, err := store.Get(context.Background(), "missing.pdf")
		if !errors.Is(err, docstore.ErrDocumentNotFound) {
			t.Errorf("expected ErrDocumentNotFound, got: %v", err)
		}
	})

	t.Run("InvalidID", func(t *testing.T) {
		store := newStore(t)
		defer store.Close(context.Background())
		ctx := context.Background()

		for _, id := range []string{"", "  ", "../escape.txt", "a/../../b.txt"} {
			if err := store.Put(ctx, &docstore.Document{ID: id, Content: []byte("x")}); !errors.Is(err, docstore.ErrInvalidID) {
				t.Errorf("Put(%q): expected ErrInvalidID, got %v", id, err)
			}
			if _, err := store.Get(ctx, id); !errors.Is(err, docstore.ErrInvalidID) {
				t.Errorf("Get(%q): expected ErrInvalidID, got %v", id, err)
			}
		}
	})

	t.Run("ListSorted", func(t *testing.T) {
		store := newStore(t)
		defer store.Close(context.Background())
		ctx := context.Background()

		for _, id := range []string{"b.txt", "a/z.pdf", "a/c.html"} {
			if err := store.Put(ctx, &docstore.Document{ID: id, Content: []byte(id)}); err != nil {
				t.Fatalf("Put(%s): %v", id, err)
			}
		}

		ids, err := store.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		want := []string{"a/c.html", "a/z.pdf", "b.txt"}
		if len(ids) != len(want) {
			t.Fatalf("List = %v, want %v", ids, want)
		}
		for i := range want {
			if ids[i] != want[i] {
				t.Errorf("List[%d] = %q, want %q", i, ids[i], want[i])
			}
		}
	})
}
