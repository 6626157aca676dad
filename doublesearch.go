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


// Package doublesearch wires the search backends, the AI provider and the
// optional translation cache into one hybrid search service over doubles.
package doublesearch

import (
	"context"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/poiesic/doublesearch/ai"
	"github.com/poiesic/doublesearch/ai/openai"
	"github.com/poiesic/doublesearch/cache"
	"github.com/poiesic/doublesearch/graph"
	"github.com/poiesic/doublesearch/ingest"
	"github.com/poiesic/doublesearch/search"
	"github.com/poiesic/doublesearch/vector"
)

// Service owns the connections to both search backends and exposes hybrid
// search and ingestion over them.
type Service struct {
	driver       neo4j.DriverWithContext
	vectorClient *vector.Client
	provider     ai.AIProvider
	cache        *cache.TranslationCache
	searcher     *search.Searcher
	logger       *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	aiConfig     *ai.Config
	graphConfig  *graph.Config
	vectorConfig *vector.Config
	cachePath    string
	cacheMemory  bool
	provider     ai.AIProvider
}

// WithAIConfig sets the AI provider configuration.
func WithAIConfig(config *ai.Config) ServiceOption {
	return func(o *serviceOptions) {
		o.aiConfig = config
	}
}

// WithGraphConfig sets the Neo4j connection configuration.
func WithGraphConfig(config *graph.Config) ServiceOption {
	return func(o *serviceOptions) {
		o.graphConfig = config
	}
}

// WithVectorConfig sets the Qdrant connection configuration.
func WithVectorConfig(config *vector.Config) ServiceOption {
	return func(o *serviceOptions) {
		o.vectorConfig = config
	}
}

// WithTranslationCachePath enables the persistent translation cache at the
// given directory.
func WithTranslationCachePath(path string) ServiceOption {
	return func(o *serviceOptions) {
		o.cachePath = path
	}
}

// WithMemoryTranslationCache enables an ephemeral in-memory translation
// cache. Mostly useful in tests.
func WithMemoryTranslationCache() ServiceOption {
	return func(o *serviceOptions) {
		o.cacheMemory = true
	}
}

// WithProvider overrides the AI provider. When set, the AI configuration is
// ignored. Mostly useful for injecting mocks in tests.
func WithProvider(provider ai.AIProvider) ServiceOption {
	return func(o *serviceOptions) {
		o.provider = provider
	}
}

// New connects to both backends and builds the hybrid searcher.
// The caller owns the service and must Close it when done.
func New(ctx context.Context, opts ...ServiceOption) (*Service, error) {
	options := &serviceOptions{
		aiConfig:     ai.DefaultConfig(),
		graphConfig:  graph.DefaultConfig(),
		vectorConfig: vector.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	provider := options.provider
	if provider == nil {
		var err error
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			return nil, err
		}
	}

	driver, err := graph.NewDriver(ctx, options.graphConfig)
	if err != nil {
		provider.Close()
		return nil, err
	}

	vectorClient, err := vector.NewClient(options.vectorConfig)
	if err != nil {
		driver.Close(ctx)
		provider.Close()
		return nil, err
	}

	service := &Service{
		driver:       driver,
		vectorClient: vectorClient,
		provider:     provider,
		logger:       slog.Default(),
	}

	var searchOpts []search.Option
	if options.cachePath != "" || options.cacheMemory {
		translationCache, err := cache.Open(options.cachePath, options.cacheMemory)
		if err != nil {
			service.Close(ctx)
			return nil, err
		}
		service.cache = translationCache
		searchOpts = append(searchOpts, search.WithTranslationCache(translationCache))
	}

	structured, err := graph.NewExecutor(driver)
	if err != nil {
		service.Close(ctx)
		return nil, err
	}
	semantic, err := vector.NewExecutor(provider.Embedder(), vectorClient.Points(), vectorClient.CollectionName())
	if err != nil {
		service.Close(ctx)
		return nil, err
	}
	searcher, err := search.NewSearcher(structured, semantic, provider.Translator(), searchOpts...)
	if err != nil {
		service.Close(ctx)
		return nil, err
	}
	service.searcher = searcher

	return service, nil
}

// Search runs a hybrid search.
func (s *Service) Search(ctx context.Context, input search.Input, opts search.Options) (*search.Response, error) {
	return s.searcher.Search(ctx, input, opts)
}

// Searcher returns the underlying hybrid searcher for callers that need
// monitoring hooks.
func (s *Service) Searcher() *search.Searcher {
	return s.searcher
}

// Setup prepares both backends: the uniqueness constraint on double ids and
// the vector collection. Safe to call on every startup.
func (s *Service) Setup(ctx context.Context) error {
	writer, err := graph.NewWriter(s.driver)
	if err != nil {
		return err
	}
	if err := writer.EnsureSchema(ctx); err != nil {
		return err
	}
	return s.vectorClient.EnsureCollection(ctx)
}

// NewIngestionPipeline creates a pipeline that writes doubles to both
// backends.
func (s *Service) NewIngestionPipeline(opts ...ingest.Option) (*ingest.Pipeline, error) {
	graphWriter, err := graph.NewWriter(s.driver)
	if err != nil {
		return nil, err
	}
	vectorWriter, err := vector.NewWriter(s.provider.Embedder(), s.vectorClient)
	if err != nil {
		return nil, err
	}
	return ingest.NewPipeline(graphWriter, vectorWriter, opts...)
}

// Close releases all connections in reverse order of construction.
func (s *Service) Close(ctx context.Context) error {
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			s.logger.Error("error closing translation cache", "err", err)
		}
	}

	if err := s.vectorClient.Close(); err != nil {
		s.logger.Error("error closing vector client", "err", err)
	}

	if err := s.driver.Close(ctx); err != nil {
		s.logger.Error("error closing graph driver", "err", err)
		return err
	}

	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
		return err
	}
	return nil
}
