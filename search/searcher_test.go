package search

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/poiesic/cyclonekb/ai"
	"github.com/poiesic/cyclonekb/ai/mock"
	"github.com/poiesic/cyclonekb/core"
	"github.com/poiesic/cyclonekb/ingestion"
	"github.com/poiesic/cyclonekb/storage"
	"github.com/poiesic/cyclonekb/storage/badger"
	"github.com/poiesic/cyclonekb/storage/chromem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleDocs = []core.Document{
	{
		Name: "Cyclone Maintenance Manual",
		Text: "Regular inspection of cyclone separators is critical for maintaining efficiency.\n\n" +
			"Check the inlet for erosion and wear patterns. Inspect the cone section for material buildup.",
	},
	{
		Name: "Troubleshooting Guide",
		Text: "High pressure drop usually indicates partial blockage or excessive gas flow rates.\n\n" +
			"Low collection efficiency may be caused by air leakage at the dust outlet or worn vortex finder.",
	},
	{
		Name: "Safety Procedures",
		Text: "Always follow lockout and tagout procedures before entering the cyclone for any inspection.",
	},
}

type testKB struct {
	repo     *badger.ChunkRepository
	index    *chromem.Index
	provider ai.Provider
	searcher *Searcher
}

func newTestKB(t *testing.T, docs []core.Document) *testKB {
	t.Helper()

	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close(); backend.Close() })

	provider := mock.NewMockProvider()
	index, err := chromem.NewIndex(provider.Dimension())
	require.NoError(t, err)

	if len(docs) > 0 {
		ix, err := ingestion.NewIndexer(repo, index, provider)
		require.NoError(t, err)
		defer ix.Release()
		_, err = ix.AddDocuments(context.Background(), docs)
		require.NoError(t, err)
	}

	searcher, err := NewSearcher(repo, index, provider)
	require.NoError(t, err)
	return &testKB{repo: repo, index: index, provider: provider, searcher: searcher}
}

func TestNewSearcher(t *testing.T) {
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer func() { repo.Close(); backend.Close() }()

	provider := mock.NewMockProvider()
	index, err := chromem.NewIndex(provider.Dimension())
	require.NoError(t, err)

	tests := []struct {
		name     string
		repo     storage.ChunkRepository
		index    storage.VectorIndex
		provider ai.Provider
		opts     []Option
		wantErr  error
	}{
		{"valid configuration", repo, index, provider, nil, nil},
		{"with custom logger", repo, index, provider, []Option{WithLogger(slog.Default())}, nil},
		{"with nil logger falls back to default", repo, index, provider, []Option{WithLogger(nil)}, nil},
		{"nil repository", nil, index, provider, nil, ErrRepositoryRequired},
		{"nil index", repo, nil, provider, nil, ErrIndexRequired},
		{"nil provider", repo, index, nil, nil, ErrProviderRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSearcher(tt.repo, tt.index, tt.provider, tt.opts...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, s)
		})
	}
}

func TestSearch_EmptyKnowledgeBase(t *testing.T) {
	kb := newTestKB(t, nil)

	results, err := kb.searcher.Search(context.Background(), "how do I inspect the cone?", 3)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 0, kb.provider.(*mock.MockProvider).GetMockEmbedder().CallCount())
}

func TestSearch_OwnTextRanksFirst(t *testing.T) {
	kb := newTestKB(t, sampleDocs)
	ctx := context.Background()

	err := kb.repo.ForEachChunk(ctx, func(c *core.Chunk) error {
		results, err := kb.searcher.Search(ctx, c.Contents, 3)
		require.NoError(t, err)
		require.NotEmpty(t, results)
		assert.Equal(t, c.Id, results[0].Chunk.Id, "chunk %d should retrieve itself", c.Id)
		assert.InDelta(t, 1.0, results[0].Score, 1e-4)
		return nil
	})
	require.NoError(t, err)
}

func TestSearch_RankedNonIncreasing(t *testing.T) {
	kb := newTestKB(t, sampleDocs)

	queries := []string{
		"What should I check during inspection?",
		"Why is the pressure drop high?",
		"safety before entering",
	}
	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			results, err := kb.searcher.Search(context.Background(), q, 3)
			require.NoError(t, err)
			require.Len(t, results, 3)
			for i, r := range results {
				assert.Equal(t, i+1, r.Rank)
				if i > 0 {
					assert.GreaterOrEqual(t, results[i-1].Score, r.Score)
				}
			}
		})
	}
}

func TestSearch_KCappedAtChunkCount(t *testing.T) {
	kb := newTestKB(t, sampleDocs[2:])

	results, err := kb.searcher.Search(context.Background(), "lockout", 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearch_InvalidInput(t *testing.T) {
	kb := newTestKB(t, sampleDocs)
	ctx := context.Background()

	_, err := kb.searcher.Search(ctx, "   ", 3)
	assert.ErrorIs(t, err, ErrEmptyQuery)

	_, err = kb.searcher.Search(ctx, "inspection", 0)
	assert.ErrorIs(t, err, ErrInvalidLimit)
}

func TestSearch_EmbedderError(t *testing.T) {
	kb := newTestKB(t, sampleDocs)
	embedder := kb.provider.(*mock.MockProvider).GetMockEmbedder()
	boom := errors.New("embedding service down")
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, boom
	}

	_, err := kb.searcher.Search(context.Background(), "inspection", 3)
	assert.ErrorIs(t, err, boom)
}

type recordingMonitor struct {
	stages []string
}

func (m *recordingMonitor) Start(string)                      { m.stages = append(m.stages, "start") }
func (m *recordingMonitor) AfterEmbedding([]float32)          { m.stages = append(m.stages, "embed") }
func (m *recordingMonitor) AfterIndexSearch([]storage.Hit)    { m.stages = append(m.stages, "index") }
func (m *recordingMonitor) AfterChunkRetrieval([]*core.Chunk) { m.stages = append(m.stages, "chunks") }
func (m *recordingMonitor) Finish([]*core.SearchResult)       { m.stages = append(m.stages, "finish") }

func TestSearchWithMonitor(t *testing.T) {
	kb := newTestKB(t, sampleDocs)
	monitor := &recordingMonitor{}

	_, err := kb.searcher.SearchWithMonitor(context.Background(), "inspection", 2, monitor)
	require.NoError(t, err)
	assert.Equal(t, []string{"start", "embed", "index", "chunks", "finish"}, monitor.stages)

	logMonitor := &LogMonitor{Logger: slog.Default()}
	_, err = kb.searcher.SearchWithMonitor(context.Background(), "inspection", 2, logMonitor)
	require.NoError(t, err)
}
