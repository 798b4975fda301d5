package storage

import (
	"context"

	"github.com/poiesic/cyclonekb/core"
)

// ChunkRepository is the durable, append-only store of chunk records.
// Implementations must be thread-safe and support concurrent access.
type ChunkRepository interface {
	// AddChunks appends chunks in the given order.
	// Assigns each chunk the next sequential ID and sets InsertedAt.
	// Returns the chunks with IDs and timestamps populated.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// GetChunk retrieves a single chunk by ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error)

	// GetChunks retrieves multiple chunks in the order of ids.
	// Returns only the chunks that exist (no error for missing chunks).
	GetChunks(ctx context.Context, ids ...core.ID) ([]*core.Chunk, error)

	// ForEachChunk calls fn for every chunk in ascending ID order.
	// Iteration stops at the first error returned by fn.
	ForEachChunk(ctx context.Context, fn func(*core.Chunk) error) error

	// ChunksAfter returns up to limit chunks with ID greater than after,
	// in ascending ID order.
	ChunksAfter(ctx context.Context, after core.ID, limit int) ([]*core.Chunk, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// DocumentNames returns the distinct document names in first-insert order.
	DocumentNames(ctx context.Context) ([]string, error)

	// Close releases repository resources. The backend is closed separately.
	Close() error
}

// Hit is one nearest-neighbor match from a VectorIndex.
type Hit struct {
	ID    core.ID
	Score float32
}

// VectorIndex is an append-only, exact inner-product index over chunk vectors.
type VectorIndex interface {
	// Add appends the vectors of chunks. Each chunk must carry its ID and a
	// vector of the index dimension.
	Add(ctx context.Context, chunks ...*core.Chunk) error

	// Search returns up to limit hits ordered by descending score.
	// An empty index returns no hits and no error.
	Search(ctx context.Context, vector []float32, limit int) ([]Hit, error)

	// Count returns the number of indexed vectors.
	Count() int

	// Dimension returns the vector length the index accepts.
	Dimension() int
}

// ManifestRepository persists the knowledge base manifest.
type ManifestRepository interface {
	// SaveManifest stores the manifest, replacing any previous one.
	// Sets UpdatedAt.
	SaveManifest(ctx context.Context, manifest *core.Manifest) error

	// LoadManifest returns the stored manifest, or nil, nil if none exists.
	LoadManifest(ctx context.Context) (*core.Manifest, error)
}
