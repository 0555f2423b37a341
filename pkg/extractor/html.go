// Copyright Semchunk Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"strings"

	"golang.org/x/net/html"
)

// extractHTML returns the visible text content. Script and style elements are
// skipped; block-level elements end with a newline so headings and paragraphs
// stay separate sentences.
func extractHTML(content string) (string, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		// Fall back to raw text if HTML is malformed
		return content, nil
	}

	var sb strings.Builder
	extractTextFromNode(doc, &sb)
	return strings.TrimSpace(sb.String()), nil
}

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true, "section": true, "article": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

func extractTextFromNode(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript":
			return
		}
	}

	if n.Type == html.TextNode {
		text := strings.TrimSpace(n.Data)
		if text != "" {
			if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
				sb.WriteString(" ")
			}
			sb.WriteString(text)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractTextFromNode(c, sb)
	}

	if n.Type == html.ElementNode && blockElements[n.Data] && sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
		sb.WriteString("\n")
	}
}
