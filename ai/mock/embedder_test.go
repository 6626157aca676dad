package mock

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/poiesic/doublesearch/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbedder_Deterministic(t *testing.T) {
	embedder := NewMockEmbedder()

	first, err := embedder.EmbedText(context.Background(), "homeowner with a savings account")
	require.NoError(t, err)
	second, err := embedder.EmbedText(context.Background(), "homeowner with a savings account")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, ai.DefaultEmbeddingDim)
	assert.Equal(t, 2, embedder.CallCount())
}

func TestMockEmbedder_UnitVector(t *testing.T) {
	embedder := NewMockEmbedder()

	vec, err := embedder.EmbedText(context.Background(), "expensive property")
	require.NoError(t, err)

	var sumSquares float64
	for _, v := range vec {
		sumSquares += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sumSquares), 1e-3)
}

func TestMockEmbedder_BatchMatchesSingle(t *testing.T) {
	embedder := NewMockEmbedder()

	descriptions := []string{"owns two properties", "has a private pension"}
	batch, err := embedder.EmbedTexts(context.Background(), descriptions)
	require.NoError(t, err)
	require.Len(t, batch, 2)

	for i, description := range descriptions {
		single, err := embedder.EmbedText(context.Background(), description)
		require.NoError(t, err)
		assert.Equal(t, single, batch[i])
	}
}

func TestMockEmbedder_Override(t *testing.T) {
	embedder := NewMockEmbedder()
	wantErr := errors.New("embedding service down")
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, wantErr
	}

	_, err := embedder.EmbedText(context.Background(), "anything")
	require.ErrorIs(t, err, wantErr)

	embedder.Reset()
	assert.Equal(t, 0, embedder.CallCount())
	vec, err := embedder.EmbedText(context.Background(), "anything")
	require.NoError(t, err)
	assert.Len(t, vec, ai.DefaultEmbeddingDim)
}
