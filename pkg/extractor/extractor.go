// Copyright Semchunk Authors
// SPDX-License-Identifier: Apache-2.0

// Package extractor turns source documents into plain text.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/leseb/semchunk/pkg/docstore"
)

// ErrUnsupportedEncoding is wrapped when text content is not valid UTF-8 and
// carries no byte order mark naming another Unicode encoding.
var ErrUnsupportedEncoding = errors.New("unsupported text encoding")

// ExtractionError reports a document that could not be read or parsed.
type ExtractionError struct {
	Document string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Document, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ExtractText extracts plain text from file content based on the file extension.
// Unknown extensions are treated as plain text. Failures are *ExtractionError.
func ExtractText(content []byte, filename string) (string, error) {
	text, err := extract(content, filename)
	if err != nil {
		return "", &ExtractionError{Document: filename, Err: err}
	}
	return text, nil
}

func extract(content []byte, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".pdf" {
		return extractPDF(content)
	}

	text, err := decodeText(content)
	if err != nil {
		return "", err
	}
	switch ext {
	case ".html", ".htm":
		return extractHTML(text)
	case ".csv":
		return extractCSV(text)
	case ".json":
		return extractJSON(text)
	case ".jsonl":
		return extractJSONL(text)
	default:
		return text, nil
	}
}

// Extractor resolves document ids through a docstore.Store and extracts
// their text.
type Extractor struct {
	store docstore.Store
}

// New creates an Extractor reading from store.
func New(store docstore.Store) *Extractor {
	return &Extractor{store: store}
}

// Extract returns the full text of the document with the given id.
func (x *Extractor) Extract(ctx context.Context, id string) (string, error) {
	doc, err := x.store.Get(ctx, id)
	if err != nil {
		return "", &ExtractionError{Document: id, Err: err}
	}
	text, err := extract(doc.Content, doc.Name())
	if err != nil {
		return "", &ExtractionError{Document: id, Err: err}
	}
	return text, nil
}
