package mock

import (
	"context"

	"github.com/poiesic/doublesearch/core"
)

// MockTranslator is a test double for ai.QueryTranslator.
// It allows custom behavior injection via function fields.
type MockTranslator struct {
	// TranslateFunc is called by Translate if set.
	// If nil, returns an empty match-everything filter.
	TranslateFunc func(ctx context.Context, queryText string) (*core.Filter, error)

	callCount int
}

// NewMockTranslator creates a mock translator with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockTranslator().
func NewMockTranslator() *MockTranslator {
	return &MockTranslator{}
}

// Translate returns an empty filter unless TranslateFunc is set.
func (m *MockTranslator) Translate(ctx context.Context, queryText string) (*core.Filter, error) {
	m.callCount++

	if m.TranslateFunc != nil {
		return m.TranslateFunc(ctx, queryText)
	}

	return core.NewFilter(), nil
}

// CallCount returns the number of times Translate was called.
func (m *MockTranslator) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockTranslator) Reset() {
	m.callCount = 0
	m.TranslateFunc = nil
}
