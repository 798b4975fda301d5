package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/cyclonekb/ai"
)

// EmbedBatch embeds texts in one call to the embedder, retrying with
// backoff, and returns unit-normalized vectors in input order.
// Every vector must have length dim.
func EmbedBatch(ctx context.Context, embedder ai.Embedder, texts []string, dim, maxAttempts int, baseDelay time.Duration) ([][]float32, error) {
	var vectors [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var embedErr error
		vectors, embedErr = embedder.EmbedTexts(ctx, texts)
		return embedErr
	}, maxAttempts, baseDelay)
	if err != nil {
		return nil, fmt.Errorf("embedding %d texts: %w", len(texts), err)
	}

	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d, received %d", ErrEmbeddingMismatch, len(texts), len(vectors))
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has %d values, expected %d", ai.ErrDimensionMismatch, i, len(v), dim)
		}
	}

	return ai.NormalizeVectors(vectors), nil
}
