package ai

import (
	"context"

	"github.com/poiesic/doublesearch/core"
)

// DefaultEmbeddingDim is the dimensionality the system is configured for.
// The vector collection is created with the same size, so an embedding model
// with a different output width needs both sides reconfigured together.
const DefaultEmbeddingDim = 384

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a
	// batch, in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// QueryTranslator translates a free-text query into a validated filter.
// Implementations must be thread-safe for concurrent use.
//
// A translator never guesses: when the model output remains unusable after
// its bounded retry and repair sequence, it returns *core.TranslationError
// rather than an arbitrary default filter. An empty filter is a valid
// translation of a query with no structural constraints.
type QueryTranslator interface {
	Translate(ctx context.Context, queryText string) (*core.Filter, error)
}

// AIProvider aggregates AI services for convenient initialization and
// lifecycle management. A provider creates and manages Embedder and
// QueryTranslator instances, ensuring they share configuration.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Translator returns the query translation service.
	// The returned QueryTranslator is safe for concurrent use.
	Translator() QueryTranslator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
