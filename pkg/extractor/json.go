// Copyright Semchunk Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"bytes"
	"encoding/json"
	"strings"
)

// extractJSON pretty-prints a JSON document; invalid JSON is returned as-is.
func extractJSON(content string) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(content), "", "  "); err != nil {
		return content, nil
	}
	return buf.String(), nil
}

// extractJSONL pretty-prints each line of a JSONL file.
func extractJSONL(content string) (string, error) {
	var sb strings.Builder
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(line), "", "  "); err != nil {
			sb.WriteString(line)
			continue
		}
		sb.WriteString(buf.String())
	}
	return sb.String(), nil
}
