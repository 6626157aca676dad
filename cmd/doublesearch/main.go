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


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/doublesearch"
	"github.com/poiesic/doublesearch/ai"
	"github.com/poiesic/doublesearch/graph"
	"github.com/poiesic/doublesearch/ingest"
	"github.com/poiesic/doublesearch/search"
	"github.com/poiesic/doublesearch/vector"
	"github.com/urfave/cli/v2"
)

func main() {
	// Optional .env file for local development; real deployments set the
	// environment directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "doublesearch",
		Usage: "Hybrid structured and semantic search over doubles",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "neo4j-uri",
				Usage:   "Neo4j bolt endpoint",
				Value:   "bolt://localhost:7687",
				EnvVars: []string{"NEO4J_URI"},
			},
			&cli.StringFlag{
				Name:    "neo4j-user",
				Usage:   "Neo4j username",
				Value:   "neo4j",
				EnvVars: []string{"NEO4J_USER"},
			},
			&cli.StringFlag{
				Name:    "neo4j-password",
				Usage:   "Neo4j password",
				EnvVars: []string{"NEO4J_PASSWORD"},
			},
			&cli.StringFlag{
				Name:    "qdrant-addr",
				Usage:   "Qdrant gRPC endpoint",
				Value:   "localhost:6334",
				EnvVars: []string{"QDRANT_ADDR"},
			},
			&cli.StringFlag{
				Name:  "collection",
				Usage: "Qdrant collection holding double embeddings",
				Value: "doubles",
			},
			&cli.StringFlag{
				Name:    "ai-host",
				Usage:   "OpenAI-compatible service host URL for embeddings and translation",
				Value:   "http://localhost:11434/v1",
				EnvVars: []string{"AI_HOST"},
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name",
				Value: "all-minilm",
			},
			&cli.StringFlag{
				Name:  "translator-model",
				Usage: "Query translation model name",
				Value: "llama3-8b-8192",
			},
			&cli.StringFlag{
				Name:    "api-token",
				Usage:   "API token for the AI services",
				EnvVars: []string{"AI_API_TOKEN", "GROQ_API_KEY"},
			},
			&cli.StringFlag{
				Name:  "cache",
				Usage: "Path to the translation cache directory (disabled when empty)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Run a hybrid search from free text or a JSON filter",
				ArgsUsage: "[query text]",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "filter",
						Usage: "JSON filter instead of free text, e.g. '{\"products\":{\"Property\":{\"min\":200000}}}'",
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of semantic matches to retrieve",
						Value: 5,
					},
					&cli.Float64Flag{
						Name:  "structured-weight",
						Usage: "Weight of an exact filter match in the merged score",
						Value: 0.5,
					},
					&cli.Float64Flag{
						Name:  "semantic-weight",
						Usage: "Weight of the similarity score in the merged score",
						Value: 0.5,
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Per-backend timeout",
						Value: 15 * time.Second,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print results as JSON",
					},
				},
			},
			{
				Name:   "seed",
				Usage:  "Load a doubles CSV export into both backends",
				Action: seedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "csv",
						Usage:    "Path to the semicolon-separated doubles export",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Worker pool size for concurrent ingestion",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newService(ctx context.Context, c *cli.Context) (*doublesearch.Service, error) {
	opts := []doublesearch.ServiceOption{
		doublesearch.WithAIConfig(ai.NewConfig(
			ai.WithHost(c.String("ai-host")),
			ai.WithEmbeddingModel(c.String("embedding-model")),
			ai.WithTranslatorModel(c.String("translator-model")),
			ai.WithAPIToken(c.String("api-token")),
		)),
		doublesearch.WithGraphConfig(graph.NewConfig(
			graph.WithURI(c.String("neo4j-uri")),
			graph.WithCredentials(c.String("neo4j-user"), c.String("neo4j-password")),
		)),
		doublesearch.WithVectorConfig(vector.NewConfig(
			vector.WithAddr(c.String("qdrant-addr")),
			vector.WithCollection(c.String("collection")),
		)),
	}
	if cachePath := c.String("cache"); cachePath != "" {
		opts = append(opts, doublesearch.WithTranslationCachePath(cachePath))
	}
	return doublesearch.New(ctx, opts...)
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	queryText := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	filterJSON := c.String("filter")
	if (queryText == "") == (filterJSON == "") {
		return fmt.Errorf("provide either query text or --filter, not both")
	}

	input := search.Input{Text: queryText}
	if filterJSON != "" {
		var candidate map[string]any
		if err := json.Unmarshal([]byte(filterJSON), &candidate); err != nil {
			return fmt.Errorf("invalid filter JSON: %w", err)
		}
		input = search.Input{Filter: candidate}
	}

	service, err := newService(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer service.Close(ctx)

	response, err := service.Search(ctx, input, search.Options{
		TopK:             c.Int("top-k"),
		StructuredWeight: c.Float64("structured-weight"),
		SemanticWeight:   c.Float64("semantic-weight"),
		Timeout:          c.Duration("timeout"),
	})
	if err != nil {
		return err
	}

	if c.Bool("json") {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(response)
	}

	if response.Partial {
		for _, failure := range response.Failures {
			fmt.Fprintf(os.Stderr, "warning: %s backend failed: %v\n", failure.Source, failure.Err)
		}
	}
	if len(response.Results) == 0 {
		fmt.Println("no results")
		return nil
	}
	for i, result := range response.Results {
		fmt.Printf("%2d. %-12s score=%.3f provenance=%s", i+1, result.EntityID, result.Score, result.Provenance)
		if result.Similarity > 0 {
			fmt.Printf(" similarity=%.3f", result.Similarity)
		}
		fmt.Println()
	}
	return nil
}

func seedCommand(c *cli.Context) error {
	ctx := context.Background()

	doubles, err := ingest.LoadCSV(c.String("csv"))
	if err != nil {
		return fmt.Errorf("failed to load export: %w", err)
	}
	if len(doubles) == 0 {
		return fmt.Errorf("export contains no doubles")
	}

	service, err := newService(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer service.Close(ctx)

	if err := service.Setup(ctx); err != nil {
		return fmt.Errorf("failed to prepare backends: %w", err)
	}

	var pipelineOpts []ingest.Option
	if size := c.Int("pool-size"); size > 0 {
		pipelineOpts = append(pipelineOpts, ingest.WithPoolSize(size))
	}
	pipeline, err := service.NewIngestionPipeline(pipelineOpts...)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	summary := pipeline.Ingest(ctx, doubles)
	fmt.Printf("ingested %d doubles (%d failed)\n", summary.Ingested, summary.Failed)
	if summary.Failed > 0 {
		return fmt.Errorf("%d doubles failed to ingest", summary.Failed)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
