package badger

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/poiesic/cyclonekb/core"
	"github.com/poiesic/cyclonekb/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChunk(doc, text string, ordinal int) *core.Chunk {
	return &core.Chunk{
		DocId:    core.IDFromContent(doc),
		DocName:  doc,
		Ordinal:  ordinal,
		Contents: text,
		Vector:   []float32{0.6, 0.8},
	}
}

func TestAddChunks_SequentialIDs(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()

	added, err := repo.AddChunks(ctx,
		newChunk("manual", "first", 0),
		newChunk("manual", "second", 1),
	)
	require.NoError(t, err)
	require.Len(t, added, 2)
	assert.Equal(t, core.ID(1), added[0].Id)
	assert.Equal(t, core.ID(2), added[1].Id)
	assert.False(t, added[0].InsertedAt.IsZero())

	more, err := repo.AddChunks(ctx, newChunk("guide", "third", 0))
	require.NoError(t, err)
	assert.Equal(t, core.ID(3), more[0].Id)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestAddChunks_Empty(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	defer func() { repo.Close(); backend.Close() }()

	added, err := repo.AddChunks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, added)
}

func TestGetChunk(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()
	_, err = repo.AddChunks(ctx, newChunk("manual", "Inlet temperature should stay between 800 and 900C.", 0))
	require.NoError(t, err)

	chunk, err := repo.GetChunk(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "manual", chunk.DocName)
	assert.Equal(t, core.IDFromContent("manual"), chunk.DocId)
	assert.Equal(t, []float32{0.6, 0.8}, chunk.Vector)

	_, err = repo.GetChunk(ctx, 99)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestGetChunks_SkipsMissing(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()
	_, err = repo.AddChunks(ctx, newChunk("a", "one", 0), newChunk("a", "two", 1), newChunk("a", "three", 2))
	require.NoError(t, err)

	chunks, err := repo.GetChunks(ctx, 3, 42, 1)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "three", chunks[0].Contents)
	assert.Equal(t, "one", chunks[1].Contents)
}

func TestForEachChunk_IDOrder(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()
	// Enough chunks that decimal and binary key ordering would disagree.
	for i := 0; i < 300; i++ {
		_, err := repo.AddChunks(ctx, newChunk("doc", fmt.Sprintf("chunk %d", i), i))
		require.NoError(t, err)
	}

	var ids []core.ID
	err = repo.ForEachChunk(ctx, func(c *core.Chunk) error {
		ids = append(ids, c.Id)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, ids, 300)
	for i, id := range ids {
		assert.Equal(t, core.ID(i+1), id)
	}

	stop := errors.New("stop")
	seen := 0
	err = repo.ForEachChunk(ctx, func(c *core.Chunk) error {
		seen++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, seen)
}

func TestChunksAfter(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := repo.AddChunks(ctx, newChunk("doc", fmt.Sprintf("chunk %d", i), i))
		require.NoError(t, err)
	}

	tests := []struct {
		name  string
		after core.ID
		limit int
		want  []core.ID
	}{
		{"from start", 0, 2, []core.ID{1, 2}},
		{"middle", 2, 2, []core.ID{3, 4}},
		{"tail", 4, 10, []core.ID{5}},
		{"past end", 5, 10, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := repo.ChunksAfter(ctx, tt.after, tt.limit)
			require.NoError(t, err)
			var ids []core.ID
			for _, c := range chunks {
				ids = append(ids, c.Id)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	_, err = repo.ChunksAfter(ctx, 0, 0)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestDocumentNames_FirstInsertOrder(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()
	_, err = repo.AddChunks(ctx,
		newChunk("Troubleshooting Guide", "a", 0),
		newChunk("Troubleshooting Guide", "b", 1),
		newChunk("Cyclone Maintenance Manual", "c", 0),
	)
	require.NoError(t, err)
	_, err = repo.AddChunks(ctx, newChunk("Safety Procedures", "d", 0), newChunk("Troubleshooting Guide", "e", 2))
	require.NoError(t, err)

	names, err := repo.DocumentNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Troubleshooting Guide", "Cyclone Maintenance Manual", "Safety Procedures"}, names)
}

func TestChunkRepository_Reopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "kb")
	ctx := context.Background()

	backend, err := OpenBackend(dir, false)
	require.NoError(t, err)
	repo, err := NewChunkRepository(backend)
	require.NoError(t, err)
	_, err = repo.AddChunks(ctx, newChunk("doc", "one", 0), newChunk("doc", "two", 1))
	require.NoError(t, err)
	require.NoError(t, repo.Close())
	require.NoError(t, backend.Close())

	backend, err = OpenBackend(dir, false)
	require.NoError(t, err)
	defer backend.Close()
	repo, err = NewChunkRepository(backend)
	require.NoError(t, err)
	defer repo.Close()

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	added, err := repo.AddChunks(ctx, newChunk("doc", "three", 2))
	require.NoError(t, err)
	assert.Equal(t, core.ID(3), added[0].Id)
}

func TestAddChunks_ClosedBackend(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	_, err = repo.AddChunks(context.Background(), newChunk("doc", "text", 0))
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestManifest(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()

	m, err := repo.LoadManifest(ctx)
	require.NoError(t, err)
	assert.Nil(t, m)

	require.NoError(t, repo.SaveManifest(ctx, &core.Manifest{Model: "mock", Dimension: 384}))

	m, err = repo.LoadManifest(ctx)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "mock", m.Model)
	assert.Equal(t, 384, m.Dimension)
	assert.False(t, m.UpdatedAt.IsZero())
}
