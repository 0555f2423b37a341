// Copyright Semchunk Authors
// SPDX-License-Identifier: Apache-2.0

// Package docstore resolves document handles to raw document bytes.
package docstore

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"github.com/leseb/semchunk/pkg/provider"
)

// ErrDocumentNotFound is returned when a document does not exist.
var ErrDocumentNotFound = errors.New("document not found")

// ErrInvalidID is returned for ids that are empty or escape the store root.
var ErrInvalidID = errors.New("invalid document id")

// Providers is the registry of document store backends.
// Import backend packages with blank imports to register them:
//
//	import _ "github.com/leseb/semchunk/pkg/docstore/memory"
//	import _ "github.com/leseb/semchunk/pkg/docstore/filesystem"
//	import _ "github.com/leseb/semchunk/pkg/docstore/s3"
var Providers = provider.NewRegistry[Store]("doc_store")

// Document is a source document and its raw bytes.
type Document struct {
	ID        string // slash-separated handle, e.g. "rfp/eligible-1.pdf"
	Filename  string // base name used to pick an extractor
	MimeType  string
	Content   []byte
	CreatedAt time.Time
}

// Store reads and writes source documents. Get always returns content.
type Store interface {
	Put(ctx context.Context, doc *Document) error
	Get(ctx context.Context, id string) (*Document, error)
	List(ctx context.Context) ([]string, error)
	Close(ctx context.Context) error
}

// CleanID normalizes a document id to a relative slash path and rejects ids
// that are empty or point outside the store.
func CleanID(id string) (string, error) {
	id = strings.ReplaceAll(strings.TrimSpace(id), "\\", "/")
	cleaned := path.Clean("/" + id)[1:]
	if cleaned == "" || cleaned == "." {
		return "", ErrInvalidID
	}
	for _, part := range strings.Split(id, "/") {
		if part == ".." {
			return "", ErrInvalidID
		}
	}
	return cleaned, nil
}

// Name returns the document's filename, falling back to the base of its id.
func (d *Document) Name() string {
	if d.Filename != "" {
		return d.Filename
	}
	return path.Base(d.ID)
}
