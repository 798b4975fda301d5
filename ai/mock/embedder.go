package mock

import (
	"context"
	"hash/fnv"
	"strings"
	"sync/atomic"

	"github.com/poiesic/cyclonekb/ai"
)

// DefaultDimension matches the production model so fixtures look realistic.
const DefaultDimension = ai.DefaultDimension

// MockEmbedder is a test double for ai.Embedder.
// It allows custom behavior injection via function fields.
type MockEmbedder struct {
	// EmbedTextFunc is called by EmbedText if set.
	// If nil, uses default deterministic behavior.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedTextsFunc is called by EmbedTexts if set.
	// If nil, each text is embedded with EmbedText's behavior.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	dimension int
	keywords  bool
	callCount atomic.Int64
}

// NewMockEmbedder creates a mock embedder with default deterministic behavior.
// Every distinct text maps to an unrelated pseudo-random unit vector, so
// only identical texts are similar.
// Note: Returns concrete type to allow test assertions.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{dimension: DefaultDimension}
}

// NewKeywordEmbedder creates a mock embedder that hashes words into buckets.
// Texts sharing vocabulary get a positive inner product, which makes ranking
// tests meaningful without a real model.
func NewKeywordEmbedder() *MockEmbedder {
	return &MockEmbedder{dimension: DefaultDimension, keywords: true}
}

// WithDimension changes the length of generated vectors.
func (m *MockEmbedder) WithDimension(dim int) *MockEmbedder {
	m.dimension = dim
	return m
}

// EmbedText generates a deterministic unit vector for the text.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.callCount.Add(1)

	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}
	return m.vectorFor(text), nil
}

// EmbedTexts generates deterministic embeddings for multiple texts.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.callCount.Add(1)

	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}

	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		if m.EmbedTextFunc != nil {
			v, err := m.EmbedTextFunc(ctx, text)
			if err != nil {
				return nil, err
			}
			embeddings[i] = v
			continue
		}
		embeddings[i] = m.vectorFor(text)
	}
	return embeddings, nil
}

// CallCount returns the number of times any method was called.
func (m *MockEmbedder) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and any injected behavior.
func (m *MockEmbedder) Reset() {
	m.callCount.Store(0)
	m.EmbedTextFunc = nil
	m.EmbedTextsFunc = nil
}

func (m *MockEmbedder) vectorFor(text string) []float32 {
	if m.keywords {
		return generateKeywordVector(text, m.dimension)
	}
	return generateDeterministicVector(text, m.dimension)
}

// generateDeterministicVector creates a deterministic embedding vector from text.
// It uses FNV hash to ensure the same text always produces the same vector.
// Components are centered on zero so unrelated texts are close to orthogonal.
func generateDeterministicVector(text string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vector := make([]float32, dim)
	for i := 0; i < dim; i++ {
		seed = seed*1664525 + 1013904223 // LCG constants
		vector[i] = float32((seed>>8)%1000)/1000.0 - 0.5
	}

	return ai.NormalizeVector(vector)
}

// generateKeywordVector counts lowercased words into hashed buckets.
func generateKeywordVector(text string, dim int) []float32 {
	vector := make([]float32, dim)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:'\"-()[]{}")
		if word == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(word))
		vector[h.Sum32()%uint32(dim)] += 1
	}
	return ai.NormalizeVector(vector)
}
