// Copyright Semchunk Authors
// SPDX-License-Identifier: Apache-2.0

package tokenizer

import "strings"

// Words counts whitespace-delimited words. It needs no model files, which
// makes it the offline choice and the reference counter in tests.
type Words struct{}

// Count returns the number of words in text.
func (Words) Count(text string) (int, error) {
	return len(strings.Fields(text)), nil
}
