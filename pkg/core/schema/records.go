// Copyright Semchunk Authors
// SPDX-License-Identifier: Apache-2.0

package schema

// Record is one chunk of a document as emitted by the pipeline
type Record struct {
	ID       int      `json:"id"`                // 1-based, dense, in emission order
	Chunk    string   `json:"chunk"`             // overlap prefix plus the chunk's own sentences
	Keywords []string `json:"keywords"`          // vocabulary tags in declaration order, never null
	Passage  string   `json:"passage,omitempty"` // keyword-weighted text, only when requested
}
