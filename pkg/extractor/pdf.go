// Copyright Semchunk Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF extracts text page by page. Pages that fail to render are
// skipped unless every page fails.
func extractPDF(content []byte) (text string, err error) {
	// the pdf reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("parse PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}

	var sb strings.Builder
	numPages := reader.NumPage()
	var failed int
	var firstErr error
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = fmt.Errorf("page %d: %w", i, err)
			}
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(pageText)
	}

	if numPages > 0 && failed == numPages {
		return "", errors.Join(errors.New("no readable pages"), firstErr)
	}
	return sb.String(), nil
}
