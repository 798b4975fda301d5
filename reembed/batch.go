package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/cyclonekb/ai"
	"github.com/poiesic/cyclonekb/core"
	"github.com/poiesic/cyclonekb/ingestion"
	"github.com/poiesic/cyclonekb/storage"
)

// BatchProcessor embeds batches of source chunks and appends the copies to
// a destination repository and index.
type BatchProcessor struct {
	repo           storage.ChunkRepository
	index          storage.VectorIndex
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of attempts for each embedding call
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(repo storage.ChunkRepository, index storage.VectorIndex, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		repo:           repo,
		index:          index,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process embeds the contents of src and stores normalized copies.
// The source chunks are not modified. Because the destination started empty
// and batches arrive in ID order, every copy keeps its source ID.
func (bp *BatchProcessor) Process(ctx context.Context, src []*core.Chunk) ([]*core.Chunk, error) {
	if len(src) == 0 {
		return nil, nil
	}

	texts := make([]string, len(src))
	for i, c := range src {
		texts[i] = c.Contents
	}

	vectors, err := ingestion.EmbedBatch(ctx, bp.embedder, texts, bp.index.Dimension(), bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return nil, err
	}

	copies := make([]*core.Chunk, len(src))
	for i, c := range src {
		copies[i] = &core.Chunk{
			DocId:    c.DocId,
			DocName:  c.DocName,
			Ordinal:  c.Ordinal,
			Contents: c.Contents,
			Vector:   vectors[i],
		}
	}

	added, err := bp.repo.AddChunks(ctx, copies...)
	if err != nil {
		return nil, fmt.Errorf("failed to store chunks: %w", err)
	}
	for i, c := range added {
		if c.Id != src[i].Id {
			return nil, fmt.Errorf("%w: source %d, copy %d", ErrIDMismatch, src[i].Id, c.Id)
		}
	}

	if err := bp.index.Add(ctx, added...); err != nil {
		return nil, fmt.Errorf("%w: %w", ingestion.ErrIndexOutOfSync, err)
	}

	return added, nil
}
