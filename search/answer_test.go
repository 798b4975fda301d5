package search

import (
	"context"
	"strings"
	"testing"

	"github.com/poiesic/cyclonekb/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAnswerer_Options(t *testing.T) {
	kb := newTestKB(t, nil)

	tests := []struct {
		name    string
		opts    []AnswerOption
		wantErr bool
	}{
		{"defaults", nil, false},
		{"custom", []AnswerOption{WithTopK(5), WithMinSimilarity(0.5), WithAnswerChunks(3)}, false},
		{"zero top-k", []AnswerOption{WithTopK(0)}, true},
		{"threshold above one", []AnswerOption{WithMinSimilarity(1.5)}, true},
		{"zero answer chunks", []AnswerOption{WithAnswerChunks(0)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAnswerer(kb.searcher, tt.opts...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, a)
		})
	}

	_, err := NewAnswerer(nil)
	assert.ErrorIs(t, err, ErrSearcherRequired)
}

func TestAnswer_NoDocuments(t *testing.T) {
	kb := newTestKB(t, nil)
	a, err := NewAnswerer(kb.searcher)
	require.NoError(t, err)

	answer, err := a.Answer(context.Background(), "What is the normal inlet temperature?")
	require.NoError(t, err)
	assert.Equal(t, NoDocumentsAnswer, answer.Text)
	assert.Equal(t, float32(0), answer.Confidence)
	assert.Empty(t, answer.Sources)
}

func TestAnswer_BelowThresholdIsExactFallback(t *testing.T) {
	kb := newTestKB(t, sampleDocs)
	a, err := NewAnswerer(kb.searcher)
	require.NoError(t, err)

	// The mock embedder maps unrelated texts to nearly orthogonal vectors.
	answer, err := a.Answer(context.Background(), "What is the capital of France?")
	require.NoError(t, err)

	require.Len(t, answer.Results, 3)
	assert.Less(t, answer.Confidence, DefaultMinSimilarity)
	assert.Equal(t, NotFoundAnswer, answer.Text)
	assert.Equal(t, answer.Results[0].Score, answer.Confidence)

	require.Len(t, answer.Sources, 3)
	for i, r := range answer.Results {
		assert.Equal(t, r.Chunk.DocName, answer.Sources[i])
	}
}

func TestAnswer_QuotesTopChunks(t *testing.T) {
	kb := newTestKB(t, sampleDocs)
	a, err := NewAnswerer(kb.searcher)
	require.NoError(t, err)

	question := "High pressure drop usually indicates partial blockage or excessive gas flow rates."
	answer, err := a.Answer(context.Background(), question)
	require.NoError(t, err)

	require.Len(t, answer.Results, 3)
	assert.InDelta(t, 1.0, answer.Confidence, 1e-4)
	assert.True(t, strings.HasPrefix(answer.Text, AnswerPrefix))

	want := AnswerPrefix + answer.Results[0].Chunk.Contents + "\n\n" + answer.Results[1].Chunk.Contents
	assert.Equal(t, want, answer.Text)
	assert.Equal(t, question, answer.Results[0].Chunk.Contents)

	// Sources cover all retrieved chunks, each document once, in rank order.
	assert.Equal(t, "Troubleshooting Guide", answer.Sources[0])
	assert.Equal(t, uniqueSources(answer.Results), answer.Sources)
	assert.LessOrEqual(t, len(answer.Sources), 3)
}

func TestAnswer_HighThreshold(t *testing.T) {
	kb := newTestKB(t, sampleDocs)
	question := sampleDocs[2].Text

	strict, err := NewAnswerer(kb.searcher, WithMinSimilarity(0.999))
	require.NoError(t, err)
	answer, err := strict.Answer(context.Background(), question)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(answer.Text, AnswerPrefix))

	answer, err = strict.Answer(context.Background(), "Check the inlet for erosion")
	require.NoError(t, err)
	assert.Equal(t, NotFoundAnswer, answer.Text)
}

func TestAnswer_SingleChunkKnowledgeBase(t *testing.T) {
	kb := newTestKB(t, sampleDocs[2:])
	a, err := NewAnswerer(kb.searcher)
	require.NoError(t, err)

	answer, err := a.Answer(context.Background(), sampleDocs[2].Text)
	require.NoError(t, err)
	assert.Equal(t, AnswerPrefix+sampleDocs[2].Text, answer.Text)
	assert.Equal(t, []string{"Safety Procedures"}, answer.Sources)
}

func TestUniqueSources(t *testing.T) {
	results := []*core.SearchResult{
		{Rank: 1, Score: 0.9, Chunk: &core.Chunk{DocName: "A"}},
		{Rank: 2, Score: 0.8, Chunk: &core.Chunk{DocName: "B"}},
		{Rank: 3, Score: 0.7, Chunk: &core.Chunk{DocName: "A"}},
	}
	assert.Equal(t, []string{"A", "B"}, uniqueSources(results))
}
