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


package search

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/poiesic/doublesearch/ai"
	"github.com/poiesic/doublesearch/core"
)

// StructuredExecutor runs an exact filter query against the graph store.
type StructuredExecutor interface {
	Execute(ctx context.Context, filter *core.Filter) (core.StructuredResult, error)
}

// SemanticExecutor runs a top-k similarity query against the vector store.
type SemanticExecutor interface {
	Execute(ctx context.Context, text string, topK int) (core.SemanticResult, error)
}

// TranslationCache stores validated filters keyed by query text. Implemented
// by cache.TranslationCache; a nil cache disables caching.
type TranslationCache interface {
	Get(ctx context.Context, queryText string) (*core.Filter, bool)
	Put(ctx context.Context, queryText string, filter *core.Filter) error
}

// Input is one search request. Exactly one of Text or Filter must be set:
// free text is translated into a filter, a caller-built candidate filter is
// validated as-is. Whitespace-only text counts as unset.
type Input struct {
	Text   string
	Filter map[string]any
}

// Options tune one search call. The zero value of any field means its
// default.
type Options struct {
	// TopK bounds the semantic side of the search. Default 5.
	TopK int

	// StructuredWeight scores membership in the exact filter result.
	// Default 0.5.
	StructuredWeight float64

	// SemanticWeight scales the similarity score. Default 0.5.
	SemanticWeight float64

	// Timeout bounds each backend call separately. Default 15s.
	Timeout time.Duration
}

// DefaultOptions returns the default search options.
func DefaultOptions() Options {
	return Options{
		TopK:             5,
		StructuredWeight: 0.5,
		SemanticWeight:   0.5,
		Timeout:          15 * time.Second,
	}
}

// normalize fills zero fields with defaults and rejects unusable values.
func (o Options) normalize() (Options, error) {
	defaults := DefaultOptions()
	if o.TopK == 0 {
		o.TopK = defaults.TopK
	}
	if o.StructuredWeight == 0 && o.SemanticWeight == 0 {
		o.StructuredWeight = defaults.StructuredWeight
		o.SemanticWeight = defaults.SemanticWeight
	}
	if o.Timeout == 0 {
		o.Timeout = defaults.Timeout
	}

	if o.TopK < 0 {
		return o, core.InvalidArgumentf("TopK must be positive, got %d", o.TopK)
	}
	if o.StructuredWeight < 0 || o.SemanticWeight < 0 {
		return o, core.InvalidArgumentf("weights must not be negative")
	}
	if o.Timeout < 0 {
		return o, core.InvalidArgumentf("timeout must be positive")
	}
	return o, nil
}

// SourceFailure records one backend that failed during a partial search.
type SourceFailure struct {
	Source core.Source
	Err    error
}

// Response is the outcome of one search call.
type Response struct {
	// Results is the merged, ranked result list.
	Results []core.HybridResult

	// Partial is true when one backend failed and Results covers only the
	// surviving one.
	Partial bool

	// Failures lists the backends that failed, empty on a full result.
	Failures []SourceFailure
}

// Searcher provides hybrid structured and semantic search over doubles.
type Searcher struct {
	structured StructuredExecutor
	semantic   SemanticExecutor
	translator ai.QueryTranslator
	cache      TranslationCache
	logger     *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithTranslationCache enables caching of query translations.
func WithTranslationCache(cache TranslationCache) Option {
	return func(s *Searcher) error {
		s.cache = cache
		return nil
	}
}

// NewSearcher creates a new hybrid searcher.
func NewSearcher(
	structured StructuredExecutor,
	semantic SemanticExecutor,
	translator ai.QueryTranslator,
	opts ...Option,
) (*Searcher, error) {
	if structured == nil {
		return nil, ErrStructuredExecutorRequired
	}
	if semantic == nil {
		return nil, ErrSemanticExecutorRequired
	}
	if translator == nil {
		return nil, ErrTranslatorRequired
	}

	s := &Searcher{
		structured: structured,
		semantic:   semantic,
		translator: translator,
		logger:     slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search runs a hybrid search for the input.
func (s *Searcher) Search(ctx context.Context, input Input, opts Options) (*Response, error) {
	return s.SearchWithMonitor(ctx, input, opts, nil)
}

// SearchWithMonitor runs a hybrid search with monitoring. The monitor
// receives callbacks at each stage of the search process.
//
// Input validation and translation failures abort the search before any
// backend is queried. Once both backends have been dispatched, a single
// backend failure degrades the response to partial instead of failing it;
// only both backends failing produces an error.
func (s *Searcher) SearchWithMonitor(ctx context.Context, input Input, opts Options, monitor SearchMonitor) (*Response, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(input.Text)
	hasText := text != ""
	hasFilter := input.Filter != nil
	if hasText == hasFilter {
		return nil, core.InvalidArgumentf("exactly one of Text or Filter must be set")
	}

	monitor.Start(input)

	// 1. Obtain a validated filter for the structured side.
	var filter *core.Filter
	if hasFilter {
		filter, err = core.ValidateFilter(input.Filter)
		if err != nil {
			return nil, err
		}
	} else {
		filter, err = s.translateText(ctx, text, monitor)
		if err != nil {
			return nil, err
		}
	}
	monitor.AfterTranslation(filter)

	// 2. Pick the text for the semantic side. Filter-only input searches by
	// a rendered summary of the filter.
	queryText := text
	if queryText == "" {
		queryText = filter.Describe()
	}

	// 3. Query both backends concurrently, each under its own timeout. A
	// failing backend never cancels its sibling.
	var (
		wg            sync.WaitGroup
		structuredRes core.StructuredResult
		semanticRes   core.SemanticResult
		structuredErr error
		semanticErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		qctx, cancel := context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
		structuredRes, structuredErr = s.structured.Execute(qctx, filter)
	}()
	go func() {
		defer wg.Done()
		qctx, cancel := context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
		semanticRes, semanticErr = s.semantic.Execute(qctx, queryText, opts.TopK)
	}()
	wg.Wait()

	if structuredErr != nil && semanticErr != nil {
		s.logger.Error("both search backends failed",
			"structuredErr", structuredErr, "semanticErr", semanticErr)
		return nil, errors.Join(structuredErr, semanticErr)
	}

	response := &Response{}
	if structuredErr != nil {
		s.logger.Warn("structured search failed, degrading to semantic-only", "err", structuredErr)
		monitor.SourceFailed(core.SourceGraph, structuredErr)
		response.Partial = true
		response.Failures = append(response.Failures, SourceFailure{Source: core.SourceGraph, Err: structuredErr})
		structuredRes = nil
	} else {
		monitor.AfterStructuredSearch(structuredIDs(structuredRes))
	}
	if semanticErr != nil {
		s.logger.Warn("semantic search failed, degrading to structured-only", "err", semanticErr)
		monitor.SourceFailed(core.SourceVector, semanticErr)
		response.Partial = true
		response.Failures = append(response.Failures, SourceFailure{Source: core.SourceVector, Err: semanticErr})
		semanticRes = nil
	} else {
		monitor.AfterSemanticSearch(semanticIDs(semanticRes))
	}

	// 4. Merge into one ranked list.
	response.Results = Merge(structuredRes, semanticRes, opts.StructuredWeight, opts.SemanticWeight)
	monitor.Finish(response.Results)

	return response, nil
}

// translateText resolves query text into a filter, consulting the cache
// first. Cache write failures are logged and ignored; caching is an
// optimization, not a requirement.
func (s *Searcher) translateText(ctx context.Context, text string, monitor SearchMonitor) (*core.Filter, error) {
	if s.cache != nil {
		if filter, ok := s.cache.Get(ctx, text); ok {
			s.logger.Debug("translation cache hit", "query", text)
			monitor.CacheHit(text)
			return filter, nil
		}
	}

	filter, err := s.translator.Translate(ctx, text)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, text, filter); err != nil {
			s.logger.Warn("failed to cache translation", "query", text, "err", err)
		}
	}
	return filter, nil
}

func structuredIDs(matches core.StructuredResult) []core.EntityID {
	ids := make([]core.EntityID, 0, len(matches))
	for _, match := range matches {
		ids = append(ids, match.EntityID)
	}
	return ids
}

func semanticIDs(matches core.SemanticResult) []core.EntityID {
	ids := make([]core.EntityID, 0, len(matches))
	for _, match := range matches {
		ids = append(ids, match.EntityID)
	}
	return ids
}
