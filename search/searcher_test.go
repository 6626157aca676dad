package search

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/poiesic/doublesearch/ai/mock"
	"github.com/poiesic/doublesearch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStructured struct {
	result core.StructuredResult
	err    error
	calls  int
	filter *core.Filter
}

func (f *fakeStructured) Execute(ctx context.Context, filter *core.Filter) (core.StructuredResult, error) {
	f.calls++
	f.filter = filter
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeSemantic struct {
	result core.SemanticResult
	err    error
	calls  int
	text   string
	topK   int
}

func (f *fakeSemantic) Execute(ctx context.Context, text string, topK int) (core.SemanticResult, error) {
	f.calls++
	f.text = text
	f.topK = topK
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeCache struct {
	entries map[string]*core.Filter
	hits    int
	puts    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]*core.Filter{}}
}

func (f *fakeCache) Get(ctx context.Context, queryText string) (*core.Filter, bool) {
	filter, ok := f.entries[queryText]
	if ok {
		f.hits++
	}
	return filter, ok
}

func (f *fakeCache) Put(ctx context.Context, queryText string, filter *core.Filter) error {
	f.puts++
	f.entries[queryText] = filter
	return nil
}

func propertyFilter(t *testing.T) *core.Filter {
	t.Helper()
	filter, err := core.ValidateFilter(map[string]any{
		"products": map[string]any{
			"Property": map[string]any{"min": 200000},
		},
	})
	require.NoError(t, err)
	return filter
}

func newTestSearcher(t *testing.T, structured *fakeStructured, semantic *fakeSemantic, opts ...Option) *Searcher {
	t.Helper()
	translator := mock.NewMockTranslator()
	searcher, err := NewSearcher(structured, semantic, translator, opts...)
	require.NoError(t, err)
	return searcher
}

func TestNewSearcher(t *testing.T) {
	structured := &fakeStructured{}
	semantic := &fakeSemantic{}
	translator := mock.NewMockTranslator()

	t.Run("valid configuration", func(t *testing.T) {
		searcher, err := NewSearcher(structured, semantic, translator)
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with custom logger", func(t *testing.T) {
		searcher, err := NewSearcher(structured, semantic, translator, WithLogger(slog.Default()))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		searcher, err := NewSearcher(structured, semantic, translator, WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("nil structured executor", func(t *testing.T) {
		_, err := NewSearcher(nil, semantic, translator)
		assert.Equal(t, ErrStructuredExecutorRequired, err)
	})

	t.Run("nil semantic executor", func(t *testing.T) {
		_, err := NewSearcher(structured, nil, translator)
		assert.Equal(t, ErrSemanticExecutorRequired, err)
	})

	t.Run("nil translator", func(t *testing.T) {
		_, err := NewSearcher(structured, semantic, nil)
		assert.Equal(t, ErrTranslatorRequired, err)
	})
}

func TestSearch_TextInput(t *testing.T) {
	structured := &fakeStructured{result: core.StructuredResult{
		{EntityID: "a"}, {EntityID: "b"},
	}}
	semantic := &fakeSemantic{result: core.SemanticResult{
		{EntityID: "b", Score: 0.9}, {EntityID: "c", Score: 0.3},
	}}
	searcher := newTestSearcher(t, structured, semantic)

	response, err := searcher.Search(context.Background(), Input{Text: "wealthy property owners"}, Options{})
	require.NoError(t, err)

	assert.False(t, response.Partial)
	assert.Empty(t, response.Failures)
	assert.Len(t, response.Results, 3)
	assert.Equal(t, core.EntityID("b"), response.Results[0].EntityID)
	assert.Equal(t, core.ProvenanceBoth, response.Results[0].Provenance)

	assert.Equal(t, 1, structured.calls)
	assert.Equal(t, 1, semantic.calls)
	assert.Equal(t, "wealthy property owners", semantic.text)
	assert.Equal(t, 5, semantic.topK)
}

func TestSearch_FilterInput(t *testing.T) {
	structured := &fakeStructured{result: core.StructuredResult{{EntityID: "a"}}}
	semantic := &fakeSemantic{}
	translator := mock.NewMockTranslator()
	searcher, err := NewSearcher(structured, semantic, translator)
	require.NoError(t, err)

	input := Input{Filter: map[string]any{
		"products": map[string]any{
			"Property": map[string]any{"min": 200000},
		},
	}}
	response, err := searcher.Search(context.Background(), input, Options{})
	require.NoError(t, err)

	assert.Len(t, response.Results, 1)
	// Caller-built filters bypass translation entirely.
	assert.Zero(t, translator.CallCount())
	require.NotNil(t, structured.filter)
	assert.Contains(t, structured.filter.Products, core.ProductProperty)
	// The semantic side searches by the filter's rendered summary.
	assert.Contains(t, semantic.text, "Property")
}

func TestSearch_InvalidInput(t *testing.T) {
	structured := &fakeStructured{}
	semantic := &fakeSemantic{}
	searcher := newTestSearcher(t, structured, semantic)

	cases := []struct {
		name  string
		input Input
	}{
		{"neither set", Input{}},
		{"whitespace-only text", Input{Text: "   \t"}},
		{"both set", Input{Text: "query", Filter: map[string]any{"products": map[string]any{}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := searcher.Search(context.Background(), tc.input, Options{})
			assert.ErrorIs(t, err, core.ErrInvalidArgument)
		})
	}

	// No backend was ever queried.
	assert.Zero(t, structured.calls)
	assert.Zero(t, semantic.calls)
}

func TestSearch_InvalidFilterRejectedBeforeBackends(t *testing.T) {
	structured := &fakeStructured{}
	semantic := &fakeSemantic{}
	searcher := newTestSearcher(t, structured, semantic)

	input := Input{Filter: map[string]any{
		"products": map[string]any{
			"Mansion": map[string]any{"exists": true},
		},
	}}
	_, err := searcher.Search(context.Background(), input, Options{})

	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "products.Mansion", verr.Path)
	assert.Zero(t, structured.calls)
	assert.Zero(t, semantic.calls)
}

func TestSearch_TranslationFailureAbortsSearch(t *testing.T) {
	structured := &fakeStructured{}
	semantic := &fakeSemantic{}
	translator := mock.NewMockTranslator()
	translator.TranslateFunc = func(ctx context.Context, queryText string) (*core.Filter, error) {
		return nil, &core.TranslationError{Kind: core.TranslationUnparseable, Detail: "garbage"}
	}
	searcher, err := NewSearcher(structured, semantic, translator)
	require.NoError(t, err)

	_, err = searcher.Search(context.Background(), Input{Text: "gibberish"}, Options{})

	var terr *core.TranslationError
	require.ErrorAs(t, err, &terr)
	assert.Zero(t, structured.calls)
	assert.Zero(t, semantic.calls)
}

func TestSearch_SemanticFailureDegradesToPartial(t *testing.T) {
	structured := &fakeStructured{result: core.StructuredResult{
		{EntityID: "a"}, {EntityID: "c"},
	}}
	semantic := &fakeSemantic{err: &core.ExecutionError{Source: core.SourceVector, Err: context.DeadlineExceeded}}
	searcher := newTestSearcher(t, structured, semantic)

	response, err := searcher.Search(context.Background(), Input{Text: "savings"}, Options{})
	require.NoError(t, err)

	assert.True(t, response.Partial)
	require.Len(t, response.Failures, 1)
	assert.Equal(t, core.SourceVector, response.Failures[0].Source)

	require.Len(t, response.Results, 2)
	for _, result := range response.Results {
		assert.Equal(t, core.ProvenanceStructured, result.Provenance)
	}
}

func TestSearch_StructuredFailureDegradesToPartial(t *testing.T) {
	structured := &fakeStructured{err: &core.ExecutionError{Source: core.SourceGraph, Err: errors.New("connection refused")}}
	semantic := &fakeSemantic{result: core.SemanticResult{{EntityID: "b", Score: 0.7}}}
	searcher := newTestSearcher(t, structured, semantic)

	response, err := searcher.Search(context.Background(), Input{Text: "savings"}, Options{})
	require.NoError(t, err)

	assert.True(t, response.Partial)
	require.Len(t, response.Failures, 1)
	assert.Equal(t, core.SourceGraph, response.Failures[0].Source)
	require.Len(t, response.Results, 1)
	assert.Equal(t, core.ProvenanceSemantic, response.Results[0].Provenance)
}

func TestSearch_BothBackendsFailing(t *testing.T) {
	graphErr := &core.ExecutionError{Source: core.SourceGraph, Err: errors.New("graph down")}
	vectorErr := &core.ExecutionError{Source: core.SourceVector, Err: errors.New("vector down")}
	structured := &fakeStructured{err: graphErr}
	semantic := &fakeSemantic{err: vectorErr}
	searcher := newTestSearcher(t, structured, semantic)

	_, err := searcher.Search(context.Background(), Input{Text: "savings"}, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, graphErr)
	assert.ErrorIs(t, err, vectorErr)
}

func TestSearch_InvalidOptions(t *testing.T) {
	structured := &fakeStructured{}
	semantic := &fakeSemantic{}
	searcher := newTestSearcher(t, structured, semantic)

	for _, opts := range []Options{
		{TopK: -1},
		{StructuredWeight: -0.1, SemanticWeight: 0.5},
		{Timeout: -1},
	} {
		_, err := searcher.Search(context.Background(), Input{Text: "query"}, opts)
		assert.ErrorIs(t, err, core.ErrInvalidArgument)
	}
	assert.Zero(t, structured.calls)
	assert.Zero(t, semantic.calls)
}

func TestSearch_OptionsPropagate(t *testing.T) {
	structured := &fakeStructured{}
	semantic := &fakeSemantic{}
	searcher := newTestSearcher(t, structured, semantic)

	_, err := searcher.Search(context.Background(), Input{Text: "query"}, Options{TopK: 12})
	require.NoError(t, err)
	assert.Equal(t, 12, semantic.topK)
}

func TestSearch_CacheSkipsTranslator(t *testing.T) {
	structured := &fakeStructured{result: core.StructuredResult{{EntityID: "a"}}}
	semantic := &fakeSemantic{}
	translator := mock.NewMockTranslator()
	translator.TranslateFunc = func(ctx context.Context, queryText string) (*core.Filter, error) {
		return propertyFilter(t), nil
	}
	cache := newFakeCache()
	searcher, err := NewSearcher(structured, semantic, translator, WithTranslationCache(cache))
	require.NoError(t, err)

	// First call translates and populates the cache.
	_, err = searcher.Search(context.Background(), Input{Text: "expensive property"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, translator.CallCount())
	assert.Equal(t, 1, cache.puts)

	// Second call is served from the cache.
	_, err = searcher.Search(context.Background(), Input{Text: "expensive property"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, translator.CallCount())
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, 2, structured.calls)
}

func TestSearch_MonitorSeesEveryStage(t *testing.T) {
	structured := &fakeStructured{result: core.StructuredResult{{EntityID: "a"}}}
	semantic := &fakeSemantic{result: core.SemanticResult{{EntityID: "b", Score: 0.5}}}
	searcher := newTestSearcher(t, structured, semantic)

	monitor := &recordingMonitor{}
	response, err := searcher.SearchWithMonitor(context.Background(), Input{Text: "query"}, Options{}, monitor)
	require.NoError(t, err)

	assert.True(t, monitor.started)
	assert.NotNil(t, monitor.filter)
	assert.Equal(t, []core.EntityID{"a"}, monitor.structuredIDs)
	assert.Equal(t, []core.EntityID{"b"}, monitor.semanticIDs)
	assert.Len(t, monitor.finished, len(response.Results))
}

type recordingMonitor struct {
	started       bool
	cacheHits     []string
	filter        *core.Filter
	structuredIDs []core.EntityID
	semanticIDs   []core.EntityID
	failures      []core.Source
	finished      []core.HybridResult
}

func (r *recordingMonitor) Start(_ Input)              { r.started = true }
func (r *recordingMonitor) CacheHit(q string)          { r.cacheHits = append(r.cacheHits, q) }
func (r *recordingMonitor) AfterTranslation(f *core.Filter) { r.filter = f }
func (r *recordingMonitor) AfterStructuredSearch(ids []core.EntityID) {
	r.structuredIDs = ids
}
func (r *recordingMonitor) AfterSemanticSearch(ids []core.EntityID) {
	r.semanticIDs = ids
}
func (r *recordingMonitor) SourceFailed(s core.Source, _ error) {
	r.failures = append(r.failures, s)
}
func (r *recordingMonitor) Finish(results []core.HybridResult) {
	r.finished = results
}
