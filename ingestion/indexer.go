package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/cyclonekb/ai"
	"github.com/poiesic/cyclonekb/core"
	"github.com/poiesic/cyclonekb/storage"
)

const (
	// DefaultMaxRetries is the number of embedding attempts per document.
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the delay before the first embedding retry.
	DefaultRetryDelay = 500 * time.Millisecond
)

// Indexer chunks documents, embeds the chunks and appends them to the chunk
// repository and the vector index. Commits are serialized so chunk i of the
// repository is always vector i of the index.
type Indexer struct {
	repository     storage.ChunkRepository
	index          storage.VectorIndex
	embedder       ai.Embedder
	dimension      int
	pool           *ants.Pool
	minChunkLength int
	maxRetries     int
	retryDelay     time.Duration
	logger         *slog.Logger

	commitMu sync.Mutex
}

// Option configures an Indexer.
type Option func(*Indexer) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(ix *Indexer) error {
		if size < 1 {
			size = 1
		}
		if ix.pool != nil {
			ix.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		ix.pool = pool
		return nil
	}
}

// WithMinChunkLength sets the length a paragraph must exceed to be indexed.
func WithMinChunkLength(n int) Option {
	return func(ix *Indexer) error {
		if n < 0 {
			return fmt.Errorf("min chunk length must be >= 0, got %d", n)
		}
		ix.minChunkLength = n
		return nil
	}
}

// WithRetry sets the embedding attempt count and the initial backoff delay.
func WithRetry(maxAttempts int, delay time.Duration) Option {
	return func(ix *Indexer) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		ix.maxRetries = maxAttempts
		ix.retryDelay = delay
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Indexer) error {
		if logger == nil {
			logger = slog.Default()
		}
		ix.logger = logger
		return nil
	}
}

// NewIndexer creates an indexer writing to repository and index.
func NewIndexer(repository storage.ChunkRepository, index storage.VectorIndex, provider ai.Provider, opts ...Option) (*Indexer, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if index == nil {
		return nil, ErrIndexRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}
	if provider.Dimension() != index.Dimension() {
		return nil, fmt.Errorf("%w: provider produces %d values, index expects %d",
			ai.ErrDimensionMismatch, provider.Dimension(), index.Dimension())
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	ix := &Indexer{
		repository:     repository,
		index:          index,
		embedder:       provider.Embedder(),
		dimension:      provider.Dimension(),
		pool:           pool,
		minChunkLength: DefaultMinChunkLength,
		maxRetries:     DefaultMaxRetries,
		retryDelay:     DefaultRetryDelay,
		logger:         slog.Default().With("component", "indexer"),
	}

	for _, opt := range opts {
		if optErr := opt(ix); optErr != nil {
			ix.Release()
			return nil, optErr
		}
	}

	return ix, nil
}

// prepared holds the embedded chunks of one document awaiting commit.
type prepared struct {
	name   string
	chunks []*core.Chunk
	err    error
}

// prepare splits and embeds a document without touching storage.
func (ix *Indexer) prepare(ctx context.Context, doc core.Document) prepared {
	p := prepared{name: doc.Name}
	if doc.Name == "" {
		p.err = core.ErrEmptyDocName
		return p
	}

	texts := SplitChunks(doc.Text, ix.minChunkLength)
	if len(texts) == 0 {
		return p
	}

	vectors, err := EmbedBatch(ctx, ix.embedder, texts, ix.dimension, ix.maxRetries, ix.retryDelay)
	if err != nil {
		p.err = fmt.Errorf("document %q: %w", doc.Name, err)
		return p
	}

	docID := core.IDFromContent(doc.Name)
	p.chunks = make([]*core.Chunk, len(texts))
	for i, text := range texts {
		p.chunks[i] = &core.Chunk{
			DocId:    docID,
			DocName:  doc.Name,
			Ordinal:  i,
			Contents: text,
			Vector:   vectors[i],
		}
	}
	return p
}

// commit appends prepared chunks to the repository, then the index.
func (ix *Indexer) commit(ctx context.Context, p prepared) ([]*core.Chunk, error) {
	if len(p.chunks) == 0 {
		ix.logger.Warn("document produced no chunks, skipping", "document", p.name)
		return nil, nil
	}

	ix.commitMu.Lock()
	defer ix.commitMu.Unlock()

	if err := ix.checkSync(ctx); err != nil {
		return nil, err
	}

	// Stored chunks cannot be removed, so everything the index would reject
	// is checked before the repository write.
	for _, chunk := range p.chunks {
		if err := core.ValidateChunk(chunk); err != nil {
			return nil, fmt.Errorf("document %q: %w", p.name, err)
		}
		if len(chunk.Vector) != ix.index.Dimension() {
			return nil, fmt.Errorf("document %q: %w: %d values, index expects %d",
				p.name, ai.ErrDimensionMismatch, len(chunk.Vector), ix.index.Dimension())
		}
	}

	added, err := ix.repository.AddChunks(ctx, p.chunks...)
	if err != nil {
		return nil, fmt.Errorf("storing chunks of %q: %w", p.name, err)
	}
	if err := ix.index.Add(ctx, added...); err != nil {
		return nil, fmt.Errorf("%w: indexing chunks of %q: %w", ErrIndexOutOfSync, p.name, err)
	}
	if err := ix.checkSync(ctx); err != nil {
		return nil, err
	}

	ix.logger.Info("indexed document", "document", p.name, "chunks", len(added), "total", ix.index.Count())
	return added, nil
}

// checkSync verifies the index and repository hold the same number of entries.
func (ix *Indexer) checkSync(ctx context.Context) error {
	stored, err := ix.repository.Count(ctx)
	if err != nil {
		return err
	}
	if indexed := ix.index.Count(); indexed != stored {
		return fmt.Errorf("%w: %d vectors, %d chunks", ErrIndexOutOfSync, indexed, stored)
	}
	return nil
}

// AddDocument chunks, embeds and indexes one document.
// A document with no chunk longer than the minimum length is skipped and
// returns no chunks and no error.
func (ix *Indexer) AddDocument(ctx context.Context, name, text string) ([]*core.Chunk, error) {
	p := ix.prepare(ctx, core.Document{Name: name, Text: text})
	if p.err != nil {
		return nil, p.err
	}
	return ix.commit(ctx, p)
}

// AddDocuments embeds documents concurrently on the worker pool and commits
// them in input order. On the first failure, documents before it stay
// committed and the chunks committed so far are returned with the error.
func (ix *Indexer) AddDocuments(ctx context.Context, docs []core.Document) ([]*core.Chunk, error) {
	results := make([]prepared, len(docs))
	var wg sync.WaitGroup

	for i, doc := range docs {
		wg.Add(1)
		err := ix.pool.Submit(func() {
			defer wg.Done()
			results[i] = ix.prepare(ctx, doc)
		})
		if err != nil {
			wg.Done()
			results[i] = prepared{name: doc.Name, err: err}
		}
	}
	wg.Wait()

	var all []*core.Chunk
	for _, p := range results {
		if p.err != nil {
			return all, p.err
		}
		added, err := ix.commit(ctx, p)
		if err != nil {
			return all, err
		}
		all = append(all, added...)
	}
	return all, nil
}

// Release releases the worker pool.
// The indexer should not be used after calling Release.
func (ix *Indexer) Release() {
	if ix.pool != nil {
		ix.pool.Release()
	}
}
