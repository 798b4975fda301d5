package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/cyclonekb/ai"
	"github.com/poiesic/cyclonekb/core"
	"github.com/poiesic/cyclonekb/storage"
)

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 3

// Searcher retrieves the chunks nearest to a query.
type Searcher struct {
	repository storage.ChunkRepository
	index      storage.VectorIndex
	embedder   ai.Embedder
	dimension  int
	logger     *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	repository storage.ChunkRepository,
	index storage.VectorIndex,
	provider ai.Provider,
	opts ...Option,
) (*Searcher, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if index == nil {
		return nil, ErrIndexRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}

	s := &Searcher{
		repository: repository,
		index:      index,
		embedder:   provider.Embedder(),
		dimension:  provider.Dimension(),
		logger:     slog.Default().With("component", "searcher"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Count returns the number of searchable chunks.
func (s *Searcher) Count(ctx context.Context) (int, error) {
	return s.repository.Count(ctx)
}

// Search returns up to k chunks nearest to query, ranked from 1 with
// non-increasing scores. An empty knowledge base yields no results.
func (s *Searcher) Search(ctx context.Context, query string, k int) ([]*core.SearchResult, error) {
	return s.SearchWithMonitor(ctx, query, k, nil)
}

// SearchWithMonitor is Search with callbacks at each stage.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, k int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLimit, k)
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	monitor.Start(query)

	if s.index.Count() == 0 {
		s.logger.Debug("knowledge base is empty")
		monitor.Finish(nil)
		return []*core.SearchResult{}, nil
	}

	// Queries go through the same normalization as stored chunks.
	vector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("%w: query has %d values, expected %d", ai.ErrDimensionMismatch, len(vector), s.dimension)
	}
	vector = ai.NormalizeVector(vector)
	monitor.AfterEmbedding(vector)

	hits, err := s.index.Search(ctx, vector, k)
	if err != nil {
		s.logger.Error("error querying vector index", "err", err)
		return nil, err
	}
	monitor.AfterIndexSearch(hits)

	ids := make([]core.ID, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	chunks, err := s.repository.GetChunks(ctx, ids...)
	if err != nil {
		s.logger.Error("error retrieving chunks", "count", len(ids), "err", err)
		return nil, err
	}
	if len(chunks) != len(hits) {
		return nil, fmt.Errorf("%w: %d hits, %d chunks", ErrMissingChunk, len(hits), len(chunks))
	}
	monitor.AfterChunkRetrieval(chunks)

	// Index hits arrive sorted by descending score; GetChunks keeps their order.
	results := make([]*core.SearchResult, len(hits))
	for i, h := range hits {
		results[i] = &core.SearchResult{
			Rank:  i + 1,
			Score: h.Score,
			Chunk: chunks[i],
		}
	}
	monitor.Finish(results)

	return results, nil
}
