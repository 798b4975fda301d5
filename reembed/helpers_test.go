package reembed

import (
	"context"
	"fmt"
	"testing"

	"github.com/poiesic/cyclonekb/ai/mock"
	"github.com/poiesic/cyclonekb/core"
	"github.com/poiesic/cyclonekb/storage/badger"
	"github.com/poiesic/cyclonekb/storage/chromem"
	"github.com/stretchr/testify/require"
)

// newRepo returns an in-memory repository closed at test end.
func newRepo(t *testing.T) *badger.ChunkRepository {
	t.Helper()
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo
}

func newIndex(t *testing.T) *chromem.Index {
	t.Helper()
	index, err := chromem.NewIndex(mock.DefaultDimension)
	require.NoError(t, err)
	return index
}

// seedSource stores n chunks spread over three documents. The vectors are
// from an older eight-dimensional model.
func seedSource(t *testing.T, repo *badger.ChunkRepository, n int) []*core.Chunk {
	t.Helper()
	chunks := make([]*core.Chunk, n)
	for i := range chunks {
		name := fmt.Sprintf("Manual %d", i%3)
		chunks[i] = &core.Chunk{
			DocId:    core.IDFromContent(name),
			DocName:  name,
			Ordinal:  i / 3,
			Contents: fmt.Sprintf("Paragraph %d describes cyclone maintenance step %d in detail.", i, i),
			Vector:   []float32{1, 0, 0, 0, 0, 0, 0, 0},
		}
	}
	added, err := repo.AddChunks(context.Background(), chunks...)
	require.NoError(t, err)
	return added
}
