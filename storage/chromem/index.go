package chromem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/philippgille/chromem-go"
	"github.com/poiesic/cyclonekb/core"
	"github.com/poiesic/cyclonekb/storage"
)

const (
	// DefaultCollection is the collection holding chunk vectors.
	DefaultCollection = "chunks"

	metaDocName = "doc"
	metaOrdinal = "ordinal"
)

// ErrQueryEmbeddingOnly is returned when the collection is asked to embed
// text itself. Vectors always come from the configured ai.Embedder.
var ErrQueryEmbeddingOnly = errors.New("index accepts precomputed embeddings only")

// Index implements storage.VectorIndex on an in-memory chromem-go collection.
// chromem scores by dot product over normalized vectors, which equals the
// inner product for the unit vectors stored here.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
	dimension  int
	logger     *slog.Logger

	mu  sync.RWMutex
	ids map[core.ID]struct{}
}

var _ storage.VectorIndex = (*Index)(nil)

// Option configures an Index.
type Option func(*Index) error

// WithLogger sets a custom logger for the index.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Index) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		i.logger = logger
		return nil
	}
}

// NewIndex creates an empty index accepting vectors of the given dimension.
func NewIndex(dimension int, opts ...Option) (*Index, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive, got %d", storage.ErrInvalidQuery, dimension)
	}

	db := chromem.NewDB()
	noEmbed := func(ctx context.Context, text string) ([]float32, error) {
		return nil, ErrQueryEmbeddingOnly
	}
	collection, err := db.GetOrCreateCollection(DefaultCollection, nil, noEmbed)
	if err != nil {
		return nil, fmt.Errorf("creating collection %s: %w", DefaultCollection, err)
	}

	idx := &Index{
		db:         db,
		collection: collection,
		dimension:  dimension,
		logger:     slog.Default().With("component", "vector-index"),
		ids:        make(map[core.ID]struct{}),
	}
	for _, opt := range opts {
		if err := opt(idx); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

// Add appends the vectors of chunks. The whole batch is rejected if any
// chunk lacks an ID, has a vector of the wrong length, or is already indexed.
func (i *Index) Add(ctx context.Context, chunks ...*core.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	docs := make([]chromem.Document, len(chunks))
	batch := make(map[core.ID]struct{}, len(chunks))
	for n, chunk := range chunks {
		if chunk.Id == 0 {
			return fmt.Errorf("%w: chunk has no id", storage.ErrInvalidQuery)
		}
		if len(chunk.Vector) != i.dimension {
			return fmt.Errorf("%w: chunk %d has %d values, index expects %d",
				storage.ErrDimensionMismatch, chunk.Id, len(chunk.Vector), i.dimension)
		}
		if _, dup := i.ids[chunk.Id]; dup {
			return fmt.Errorf("%w: chunk %d", storage.ErrDuplicateID, chunk.Id)
		}
		if _, dup := batch[chunk.Id]; dup {
			return fmt.Errorf("%w: chunk %d", storage.ErrDuplicateID, chunk.Id)
		}
		batch[chunk.Id] = struct{}{}

		docs[n] = chromem.Document{
			ID:      formatID(chunk.Id),
			Content: chunk.Contents,
			Metadata: map[string]string{
				metaDocName: chunk.DocName,
				metaOrdinal: strconv.Itoa(chunk.Ordinal),
			},
			Embedding: chunk.Vector,
		}
	}

	// Embeddings are precomputed, so one goroutine is enough.
	if err := i.collection.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("adding vectors: %w", err)
	}
	for id := range batch {
		i.ids[id] = struct{}{}
	}

	i.logger.Debug("indexed vectors", "count", len(chunks), "total", i.collection.Count())
	return nil
}

// Search returns up to limit hits ordered by descending score.
func (i *Index) Search(ctx context.Context, vector []float32, limit int) ([]storage.Hit, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", storage.ErrInvalidQuery, limit)
	}
	if len(vector) != i.dimension {
		return nil, fmt.Errorf("%w: query has %d values, index expects %d",
			storage.ErrDimensionMismatch, len(vector), i.dimension)
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	// chromem requires nResults <= document count
	count := i.collection.Count()
	if count == 0 {
		return []storage.Hit{}, nil
	}
	if limit > count {
		limit = count
	}

	results, err := i.collection.QueryEmbedding(ctx, vector, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying collection %s: %w", DefaultCollection, err)
	}

	hits := make([]storage.Hit, 0, len(results))
	for _, r := range results {
		id, err := parseID(r.ID)
		if err != nil {
			return nil, err
		}
		hits = append(hits, storage.Hit{ID: id, Score: r.Similarity})
	}
	return hits, nil
}

// Count returns the number of indexed vectors.
func (i *Index) Count() int {
	return i.collection.Count()
}

// Dimension returns the vector length the index accepts.
func (i *Index) Dimension() int {
	return i.dimension
}

func formatID(id core.ID) string {
	return strconv.FormatUint(uint64(id), 10)
}

func parseID(s string) (core.ID, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad document id %q", storage.ErrSerializationFailed, s)
	}
	return core.ID(id), nil
}
