// Copyright Semchunk Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// sniffDelimiter picks the most frequent of comma, semicolon and tab on the
// first line. Spreadsheet exports in many locales use semicolons.
func sniffDelimiter(content string) rune {
	first, _, _ := strings.Cut(content, "\n")
	best, bestCount := ',', strings.Count(first, ",")
	for _, d := range []rune{';', '\t'} {
		if n := strings.Count(first, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// extractCSV renders each non-blank row as its trimmed cells joined by tabs,
// one row per line. Unparseable content is returned as is.
func extractCSV(content string) (string, error) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.Comma = sniffDelimiter(content)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows []string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return content, nil
		}
		cells := make([]string, 0, len(record))
		blank := true
		for _, cell := range record {
			cell = strings.TrimSpace(cell)
			blank = blank && cell == ""
			cells = append(cells, cell)
		}
		if !blank {
			rows = append(rows, strings.Join(cells, "\t"))
		}
	}
	return strings.Join(rows, "\n"), nil
}
