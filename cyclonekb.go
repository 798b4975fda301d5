// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cyclonekb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/cyclonekb/ai"
	"github.com/poiesic/cyclonekb/ai/fastembed"
	"github.com/poiesic/cyclonekb/ai/openai"
	"github.com/poiesic/cyclonekb/config"
	"github.com/poiesic/cyclonekb/core"
	"github.com/poiesic/cyclonekb/ingestion"
	"github.com/poiesic/cyclonekb/search"
	"github.com/poiesic/cyclonekb/storage"
	"github.com/poiesic/cyclonekb/storage/badger"
	"github.com/poiesic/cyclonekb/storage/chromem"
)

// loadBatchSize is how many stored vectors are added to the index at once on open.
const loadBatchSize = 256

// KnowledgeBase ties the chunk store, the vector index and the embedding
// provider together.
type KnowledgeBase struct {
	backend  *badger.Backend
	repo     *badger.ChunkRepository
	index    *chromem.Index
	provider ai.Provider
	manifest *core.Manifest
	indexer  *ingestion.Indexer
	searcher *search.Searcher
	answerer *search.Answerer
	logger   *slog.Logger
}

// Option configures Open.
type Option func(*options) error

type options struct {
	path        string
	aiConfig    *ai.Config
	provider    ai.Provider
	indexerOpts []ingestion.Option
	answerOpts  []search.AnswerOption
	logger      *slog.Logger
}

// WithPath stores chunks in the badger directory at path.
// Without it the store lives in memory.
func WithPath(path string) Option {
	return func(o *options) error {
		o.path = path
		return nil
	}
}

// WithProvider uses an already opened embedding provider.
// The knowledge base takes ownership and closes it on Close.
func WithProvider(provider ai.Provider) Option {
	return func(o *options) error {
		if provider == nil {
			return errors.New("provider cannot be nil")
		}
		o.provider = provider
		return nil
	}
}

// WithEmbeddingConfig selects the embedding provider to open.
// Ignored when WithProvider is given.
func WithEmbeddingConfig(cfg *ai.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.New("embedding config cannot be nil")
		}
		o.aiConfig = cfg
		return nil
	}
}

// WithConfig applies the store path, embedding, index and search sections
// of an application config.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.New("config cannot be nil")
		}
		o.path = cfg.DB.Path
		o.aiConfig = cfg.AI()
		o.indexerOpts = append(o.indexerOpts, cfg.IndexerOptions()...)
		o.answerOpts = append(o.answerOpts, cfg.AnswerOptions()...)
		return nil
	}
}

// WithIndexerOptions passes options to the document indexer.
func WithIndexerOptions(opts ...ingestion.Option) Option {
	return func(o *options) error {
		o.indexerOpts = append(o.indexerOpts, opts...)
		return nil
	}
}

// WithAnswerOptions passes options to the answerer.
func WithAnswerOptions(opts ...search.AnswerOption) Option {
	return func(o *options) error {
		o.answerOpts = append(o.answerOpts, opts...)
		return nil
	}
}

// WithLogger sets a custom logger for the knowledge base and its components.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		o.logger = logger
		return nil
	}
}

// NewProvider opens the embedding provider selected by cfg.Kind.
func NewProvider(cfg *ai.Config) (ai.Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Kind {
	case ai.KindFastEmbed:
		return fastembed.NewProvider(cfg)
	case ai.KindOpenAI:
		return openai.NewProvider(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
	}
}

// Open opens or creates a knowledge base.
func Open(opts ...Option) (*KnowledgeBase, error) {
	o := &options{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default().With("component", "cyclonekb"),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			if o.provider != nil {
				o.provider.Close()
			}
			return nil, err
		}
	}

	kb := &KnowledgeBase{logger: o.logger, provider: o.provider}
	if err := kb.open(o); err != nil {
		kb.Close()
		return nil, err
	}
	return kb, nil
}

func (kb *KnowledgeBase) open(o *options) error {
	var err error
	if kb.provider == nil {
		kb.provider, err = NewProvider(o.aiConfig)
		if err != nil {
			return err
		}
	}

	kb.backend, err = badger.OpenBackend(o.path, o.path == "")
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	kb.repo, err = badger.NewChunkRepository(kb.backend)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := kb.checkManifest(ctx); err != nil {
		return err
	}

	kb.index, err = chromem.NewIndex(kb.provider.Dimension(), chromem.WithLogger(kb.logger))
	if err != nil {
		return err
	}
	if err := kb.loadIndex(ctx); err != nil {
		return err
	}

	kb.indexer, err = ingestion.NewIndexer(kb.repo, kb.index, kb.provider,
		append([]ingestion.Option{ingestion.WithLogger(kb.logger)}, o.indexerOpts...)...)
	if err != nil {
		return err
	}

	kb.searcher, err = search.NewSearcher(kb.repo, kb.index, kb.provider, search.WithLogger(kb.logger))
	if err != nil {
		return err
	}
	kb.answerer, err = search.NewAnswerer(kb.searcher,
		append([]search.AnswerOption{search.WithAnswerLogger(kb.logger)}, o.answerOpts...)...)
	if err != nil {
		return err
	}

	kb.logger.Info("knowledge base opened",
		"path", o.path, "model", kb.manifest.Model, "chunks", kb.index.Count())
	return nil
}

// checkManifest records the provider's model in a new store and rejects a
// provider that differs from the one an existing store was built with.
func (kb *KnowledgeBase) checkManifest(ctx context.Context) error {
	m, err := kb.repo.LoadManifest(ctx)
	if err != nil {
		return err
	}
	if m != nil {
		if m.Model != kb.provider.Model() || m.Dimension != kb.provider.Dimension() {
			return fmt.Errorf("%w: store built with %s (%d), provider is %s (%d)",
				ErrModelMismatch, m.Model, m.Dimension, kb.provider.Model(), kb.provider.Dimension())
		}
		kb.manifest = m
		return nil
	}

	m = &core.Manifest{Model: kb.provider.Model(), Dimension: kb.provider.Dimension()}
	if err := kb.repo.SaveManifest(ctx, m); err != nil {
		return err
	}
	kb.manifest = m
	return nil
}

// loadIndex adds every stored vector to the empty index in ID order.
func (kb *KnowledgeBase) loadIndex(ctx context.Context) error {
	batch := make([]*core.Chunk, 0, loadBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := kb.index.Add(ctx, batch...)
		batch = batch[:0]
		return err
	}

	err := kb.repo.ForEachChunk(ctx, func(c *core.Chunk) error {
		batch = append(batch, c)
		if len(batch) == loadBatchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("loading index: %w", err)
	}
	if err := flush(); err != nil {
		return fmt.Errorf("loading index: %w", err)
	}
	return nil
}

// AddDocument chunks, embeds and stores one document.
func (kb *KnowledgeBase) AddDocument(ctx context.Context, name, text string) ([]*core.Chunk, error) {
	return kb.indexer.AddDocument(ctx, name, text)
}

// AddDocuments chunks, embeds and stores documents in order.
func (kb *KnowledgeBase) AddDocuments(ctx context.Context, docs []core.Document) ([]*core.Chunk, error) {
	return kb.indexer.AddDocuments(ctx, docs)
}

// Search returns the k chunks closest to query.
func (kb *KnowledgeBase) Search(ctx context.Context, query string, k int) ([]*core.SearchResult, error) {
	return kb.searcher.Search(ctx, query, k)
}

// Answer answers a question from the stored documents.
func (kb *KnowledgeBase) Answer(ctx context.Context, question string) (*core.Answer, error) {
	return kb.answerer.Answer(ctx, question)
}

// ChunkCount returns the number of stored chunks.
func (kb *KnowledgeBase) ChunkCount(ctx context.Context) (int, error) {
	return kb.repo.Count(ctx)
}

// DocumentNames returns the names of the stored documents in insert order.
func (kb *KnowledgeBase) DocumentNames(ctx context.Context) ([]string, error) {
	return kb.repo.DocumentNames(ctx)
}

// Manifest describes the model the store was built with.
func (kb *KnowledgeBase) Manifest() core.Manifest {
	return *kb.manifest
}

// ChunkRepository returns the chunk store.
func (kb *KnowledgeBase) ChunkRepository() storage.ChunkRepository {
	return kb.repo
}

// Index returns the vector index.
func (kb *KnowledgeBase) Index() storage.VectorIndex {
	return kb.index
}

// Provider returns the embedding provider.
func (kb *KnowledgeBase) Provider() ai.Provider {
	return kb.provider
}

// Close releases the indexer, the provider and the store.
func (kb *KnowledgeBase) Close() error {
	if kb.indexer != nil {
		kb.indexer.Release()
	}

	if kb.provider != nil {
		if err := kb.provider.Close(); err != nil {
			kb.logger.Error("error closing embedding provider", "err", err)
		}
	}

	if kb.repo != nil {
		if err := kb.repo.Close(); err != nil {
			kb.logger.Error("error closing chunk repository", "err", err)
			return err
		}
	}

	if kb.backend != nil {
		if err := kb.backend.Close(); err != nil {
			kb.logger.Error("error closing backend storage", "err", err)
			return err
		}
	}
	return nil
}
