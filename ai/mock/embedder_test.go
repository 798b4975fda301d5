package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/cyclonekb/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbedder_Deterministic(t *testing.T) {
	ctx := context.Background()
	m := NewMockEmbedder()

	v1, err := m.EmbedText(ctx, "inlet gas temperature")
	require.NoError(t, err)
	v2, err := m.EmbedText(ctx, "inlet gas temperature")
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
	assert.Len(t, v1, DefaultDimension)
	assert.InDelta(t, 1.0, ai.DotProduct(v1, v1), 1e-4)
	assert.Equal(t, 2, m.CallCount())
}

func TestMockEmbedder_UnrelatedTextsNearlyOrthogonal(t *testing.T) {
	ctx := context.Background()
	m := NewMockEmbedder()

	a, err := m.EmbedText(ctx, "What safety equipment do I need?")
	require.NoError(t, err)
	b, err := m.EmbedText(ctx, "Spare parts inventory check")
	require.NoError(t, err)

	assert.Less(t, ai.DotProduct(a, b), float32(0.3))
}

func TestKeywordEmbedder_SharedWordsAreSimilar(t *testing.T) {
	ctx := context.Background()
	m := NewKeywordEmbedder()

	vs, err := m.EmbedTexts(ctx, []string{
		"draft pressure monitoring",
		"Draft pressure warning level",
		"hard hat and safety glasses",
	})
	require.NoError(t, err)
	require.Len(t, vs, 3)

	assert.Greater(t, ai.DotProduct(vs[0], vs[1]), ai.DotProduct(vs[0], vs[2]))
}

func TestMockEmbedder_InjectedBehavior(t *testing.T) {
	ctx := context.Background()
	m := NewMockEmbedder()
	boom := errors.New("boom")
	m.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, boom
	}

	_, err := m.EmbedTexts(ctx, []string{"a"})
	assert.ErrorIs(t, err, boom)

	m.Reset()
	assert.Equal(t, 0, m.CallCount())
	_, err = m.EmbedTexts(ctx, []string{"a"})
	assert.NoError(t, err)
}

func TestMockProvider(t *testing.T) {
	p := NewMockProvider()
	assert.Equal(t, DefaultDimension, p.Dimension())
	assert.NotNil(t, p.Embedder())
	require.NoError(t, p.Close())
	assert.True(t, p.(*MockProvider).Closed())
}
