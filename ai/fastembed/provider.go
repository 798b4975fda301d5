//go:build cgo

package fastembed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	fastembed "github.com/anush008/fastembed-go"
	"github.com/poiesic/cyclonekb/ai"
)

// modelMapping maps friendly model names to fastembed model constants.
var modelMapping = map[string]fastembed.EmbeddingModel{
	"sentence-transformers/all-MiniLM-L6-v2": fastembed.AllMiniLML6V2,
	"fast-all-MiniLM-L6-v2":                  fastembed.AllMiniLML6V2,
	"BAAI/bge-small-en-v1.5":                 fastembed.BGESmallENV15,
	"fast-bge-small-en-v1.5":                 fastembed.BGESmallENV15,
	"BAAI/bge-small-en":                      fastembed.BGESmallEN,
	"fast-bge-small-en":                      fastembed.BGESmallEN,
	"BAAI/bge-base-en-v1.5":                  fastembed.BGEBaseENV15,
	"fast-bge-base-en-v1.5":                  fastembed.BGEBaseENV15,
	"BAAI/bge-base-en":                       fastembed.BGEBaseEN,
	"fast-bge-base-en":                       fastembed.BGEBaseEN,
}

// Provider embeds text with a local ONNX model.
type Provider struct {
	model     *fastembed.FlagEmbedding
	modelName string
	dimension int
	batchSize int
	mu        sync.RWMutex
	logger    *slog.Logger
}

var _ ai.Provider = (*Provider)(nil)
var _ ai.Embedder = (*Provider)(nil)

// NewProvider loads the configured model, downloading it into CacheDir on
// first use. Returns ai.ErrUnavailable wrapped with the loader error when the
// ONNX runtime cannot be initialized.
func NewProvider(config *ai.Config) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	model, ok := modelMapping[config.Model]
	if !ok {
		return nil, fmt.Errorf("fastembed: unsupported model %q", config.Model)
	}
	dimension, _ := ModelDimension(config.Model)
	if dimension != config.Dimension {
		return nil, fmt.Errorf("%w: model %s produces %d values, config expects %d",
			ai.ErrDimensionMismatch, config.Model, dimension, config.Dimension)
	}

	showProgress := false
	flagEmbed, err := fastembed.NewFlagEmbedding(&fastembed.InitOptions{
		Model:                model,
		CacheDir:             config.CacheDir,
		MaxLength:            config.MaxLength,
		ShowDownloadProgress: &showProgress,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ai.ErrUnavailable, err)
	}

	p := &Provider{
		model:     flagEmbed,
		modelName: config.Model,
		dimension: dimension,
		batchSize: config.BatchSize,
		logger:    slog.Default().With("component", "fastembed-provider"),
	}
	p.logger.Debug("loaded embedding model", "model", config.Model, "dimension", dimension)
	return p, nil
}

// Embedder returns the provider itself.
func (p *Provider) Embedder() ai.Embedder {
	return p
}

// Model returns the loaded model name.
func (p *Provider) Model() string {
	return p.modelName
}

// Dimension returns the model's vector length.
func (p *Provider) Dimension() int {
	return p.dimension
}

// EmbedText embeds a single text.
// No query prefix is added so a query equal to a stored chunk maps to the
// same vector.
func (p *Provider) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := p.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts embeds a batch of texts in input order.
func (p *Provider) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ai.ErrEmptyInput
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.model == nil {
		return nil, ai.ErrUnavailable
	}

	p.logger.Debug("generating embeddings for texts", "count", len(texts))
	vectors, err := p.model.Embed(texts, p.batchSize)
	if err != nil {
		p.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedding result mismatch. expected %d, received %d", len(texts), len(vectors))
	}
	return vectors, nil
}

// Close releases the ONNX session.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.model == nil {
		return nil
	}
	err := p.model.Destroy()
	p.model = nil
	return err
}
