// Copyright Semchunk Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decodeText honors a UTF-8 or UTF-16 byte order mark and otherwise expects
// UTF-8. The BOM itself is dropped.
func decodeText(content []byte) (string, error) {
	decoded, _, err := transform.Bytes(unicode.BOMOverride(encoding.Nop.NewDecoder()), content)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(decoded) {
		return "", ErrUnsupportedEncoding
	}
	return string(decoded), nil
}
