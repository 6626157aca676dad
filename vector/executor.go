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


package vector

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/doublesearch/ai"
	"github.com/poiesic/doublesearch/core"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
)

// PointSearcher is the slice of qdrant.PointsClient the executor needs.
// Declared here so tests can substitute a fake without a live server.
type PointSearcher interface {
	Search(ctx context.Context, in *qdrant.SearchPoints, opts ...grpc.CallOption) (*qdrant.SearchResponse, error)
}

// Executor runs top-k similarity searches over double embeddings.
type Executor struct {
	embedder   ai.Embedder
	points     PointSearcher
	collection string
	logger     *slog.Logger
}

// NewExecutor creates a semantic query executor. The embedder turns query
// text into vectors; the searcher is usually Client.Points().
func NewExecutor(embedder ai.Embedder, points PointSearcher, collection string) (*Executor, error) {
	if embedder == nil {
		return nil, core.InvalidArgumentf("vector executor requires an embedder")
	}
	if points == nil {
		return nil, core.InvalidArgumentf("vector executor requires a points client")
	}
	if collection == "" {
		return nil, core.InvalidArgumentf("vector executor requires a collection name")
	}
	return &Executor{
		embedder:   embedder,
		points:     points,
		collection: collection,
		logger:     slog.Default().With("component", "vector-executor"),
	}, nil
}

// Execute embeds the query text and returns the topK nearest doubles ordered
// by descending similarity. Scores are clamped into [0, 1].
//
// Both embedding and search failures come back as *core.ExecutionError
// tagged with core.SourceVector.
func (e *Executor) Execute(ctx context.Context, text string, topK int) (core.SemanticResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, core.InvalidArgumentf("semantic query text must not be empty")
	}
	if topK <= 0 {
		return nil, core.InvalidArgumentf("topK must be positive, got %d", topK)
	}

	embedding, err := e.embedder.EmbedText(ctx, text)
	if err != nil {
		e.logger.Error("failed to embed query text", "err", err)
		return nil, &core.ExecutionError{Source: core.SourceVector, Err: err}
	}

	searchResponse, err := e.points.Search(ctx, &qdrant.SearchPoints{
		CollectionName: e.collection,
		Vector:         embedding,
		Limit:          uint64(topK),
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		e.logger.Error("similarity search failed", "err", err)
		return nil, &core.ExecutionError{Source: core.SourceVector, Err: err}
	}

	points := searchResponse.GetResult()
	matches := make(core.SemanticResult, 0, len(points))
	for _, point := range points {
		idValue, ok := point.GetPayload()["id"]
		if !ok || idValue.GetStringValue() == "" {
			e.logger.Warn("skipping point without id payload")
			continue
		}
		matches = append(matches, core.SemanticMatch{
			EntityID: core.EntityID(idValue.GetStringValue()),
			Score:    clampScore(float64(point.GetScore())),
		})
	}

	e.logger.Debug("semantic query complete", "matches", len(matches), "topK", topK)
	return matches, nil
}

// clampScore forces a similarity score into [0, 1]. Cosine scores from the
// server can drift marginally outside the range.
func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
