// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.QueryTranslator,
// and ai.AIProvider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	embeddings, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	mockTranslator := mock.NewMockTranslator()
//	mockTranslator.TranslateFunc = func(ctx context.Context, queryText string) (*core.Filter, error) {
//	    return core.NewFilter(), nil
//	}
//
//	// Check call counts
//	count := mockTranslator.CallCount()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockTranslator: Returns an empty match-everything filter
//   - MockProvider: Aggregates mock embedder and translator
package mock
