// Copyright Semchunk Authors
// SPDX-License-Identifier: Apache-2.0

package tokenizer

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the BPE encoding used when none is configured.
const DefaultEncoding = "cl100k_base"

// compile-time check
var _ Codec = (*Tiktoken)(nil)

// Tiktoken is a Codec backed by tiktoken-go. The encoding's BPE ranks are
// fetched on first use and cached under TIKTOKEN_CACHE_DIR when set.
type Tiktoken struct {
	encoding string
	tke      *tiktoken.Tiktoken
}

// NewTiktoken loads an encoding by name, or the encoding of a known model.
func NewTiktoken(modelOrEncoding string) (*Tiktoken, error) {
	name := strings.TrimSpace(modelOrEncoding)
	if name == "" {
		name = DefaultEncoding
	}

	tke, err := tiktoken.GetEncoding(name)
	if err != nil {
		var modelErr error
		tke, modelErr = tiktoken.EncodingForModel(name)
		if modelErr != nil {
			return nil, fmt.Errorf("load tiktoken encoding %q: %w", name, err)
		}
	}
	return &Tiktoken{encoding: name, tke: tke}, nil
}

// Encoding returns the configured encoding or model name.
func (t *Tiktoken) Encoding() string { return t.encoding }

// Count returns the number of BPE tokens in text.
func (t *Tiktoken) Count(text string) (int, error) {
	return len(t.tke.Encode(text, nil, nil)), nil
}

// Encode returns the BPE token ids of text.
func (t *Tiktoken) Encode(text string) ([]int, error) {
	return t.tke.Encode(text, nil, nil), nil
}

// Decode returns the text for the given token ids.
func (t *Tiktoken) Decode(ids []int) (string, error) {
	return t.tke.Decode(ids), nil
}
