// Copyright Semchunk Authors
// SPDX-License-Identifier: Apache-2.0

package embedding

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		vectors  [][]float64
		want     int
		sentence int
		wantErr  bool
	}{
		{name: "ok", vectors: [][]float64{{1, 0}, {0, 1}}, want: 2},
		{name: "none", vectors: nil, want: 0},
		{name: "too few", vectors: [][]float64{{1, 0}}, want: 2, wantErr: true},
		{name: "too many", vectors: [][]float64{{1}, {1}, {1}}, want: 2, wantErr: true},
		{name: "dimension mismatch", vectors: [][]float64{{1, 0}, {0, 1, 0}}, want: 2, sentence: 2, wantErr: true},
		{name: "empty vector", vectors: [][]float64{{}, {}}, want: 2, sentence: 1, wantErr: true},
		{name: "nan", vectors: [][]float64{{1, 0}, {math.NaN(), 1}}, want: 2, sentence: 2, wantErr: true},
		{name: "inf", vectors: [][]float64{{math.Inf(-1), 0}}, want: 1, sentence: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check("doc.txt", tt.vectors, tt.want)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			var embErr *EmbeddingError
			require.ErrorAs(t, err, &embErr)
			assert.Equal(t, "doc.txt", embErr.Document)
			assert.Equal(t, tt.sentence, embErr.Sentence)
		})
	}
}

func TestCheck_CardinalitySentinel(t *testing.T) {
	err := Check("a.pdf", [][]float64{{1}}, 3)
	assert.ErrorIs(t, err, ErrCardinality)
	assert.Equal(t, "embed a.pdf: embedding count does not match sentence count: got 1, want 3", err.Error())
}

func TestEmbeddingError_Message(t *testing.T) {
	boom := errors.New("503 service unavailable")
	err := error(&EmbeddingError{Document: "rfp.pdf", Err: boom})
	assert.Equal(t, "embed rfp.pdf: 503 service unavailable", err.Error())
	assert.ErrorIs(t, err, boom)

	err = &EmbeddingError{Document: "rfp.pdf", Sentence: 4, Err: boom}
	assert.Equal(t, "embed rfp.pdf: sentence 4: 503 service unavailable", err.Error())
}
