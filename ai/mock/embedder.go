package mock

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/poiesic/doublesearch/ai"
)

// MockEmbedder is a test double for ai.Embedder. Behavior can be overridden
// per test through the function fields; by default it derives a stable
// pseudo-embedding from the input, so the same double description always
// lands on the same point.
type MockEmbedder struct {
	// EmbedTextFunc overrides EmbedText when set.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedTextsFunc overrides EmbedTexts when set.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	callCount int
}

// NewMockEmbedder creates a mock embedder with the default deterministic
// behavior. Returns the concrete type so tests can reach CallCount and the
// override fields.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

// EmbedText embeds a query or a double description deterministically.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.callCount++

	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}

	return pseudoEmbedding(text), nil
}

// EmbedTexts embeds a batch of double descriptions, one vector per input.
// Each vector equals what EmbedText would produce for that input, so seeding
// and querying through the same mock agree on where a double sits.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.callCount++

	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}

	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = pseudoEmbedding(text)
	}
	return embeddings, nil
}

// CallCount returns the number of times any method was called.
func (m *MockEmbedder) CallCount() int {
	return m.callCount
}

// Reset clears the call count and any overrides.
func (m *MockEmbedder) Reset() {
	m.callCount = 0
	m.EmbedTextFunc = nil
	m.EmbedTextsFunc = nil
}

// pseudoEmbedding expands an FNV hash of the text into a unit vector of the
// configured dimensionality via an LCG, so equal texts embed equally without
// any model in the loop.
func pseudoEmbedding(text string) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vector := make([]float32, ai.DefaultEmbeddingDim)
	for i := range vector {
		seed = seed*1664525 + 1013904223
		vector[i] = float32(seed%1000) / 1000.0
	}

	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares > 0 {
		norm := float32(1.0 / math.Sqrt(sumSquares))
		for i := range vector {
			vector[i] *= norm
		}
	}

	return vector
}
