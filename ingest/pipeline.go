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


package ingest

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/doublesearch/core"
)

// GraphWriter stores a double and its products in the graph store.
// Implemented by graph.Writer.
type GraphWriter interface {
	WriteDouble(ctx context.Context, double core.Double) error
}

// VectorWriter stores a double's description embedding in the vector store.
// Implemented by vector.Writer.
type VectorWriter interface {
	Upsert(ctx context.Context, double core.Double) error
}

// Summary reports the outcome of one ingestion batch.
type Summary struct {
	Ingested int
	Failed   int
}

// Pipeline writes doubles to both search backends using a worker pool.
type Pipeline struct {
	graph  GraphWriter
	vector VectorWriter
	pool   *ants.Pool
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(graph GraphWriter, vector VectorWriter, opts ...Option) (*Pipeline, error) {
	if graph == nil {
		return nil, ErrGraphWriterRequired
	}
	if vector == nil {
		return nil, ErrVectorWriterRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		graph:  graph,
		vector: vector,
		pool:   pool,
		logger: slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Ingest writes the doubles to both backends and blocks until the batch is
// done. Per-double failures are logged and counted; the rest of the batch
// keeps going.
func (p *Pipeline) Ingest(ctx context.Context, doubles []core.Double) Summary {
	var (
		wg     sync.WaitGroup
		failed atomic.Int64
	)

	for _, double := range doubles {
		double := double
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			if err := p.ingestOne(ctx, double); err != nil {
				p.logger.Error("failed to ingest double", "id", double.ID, "err", err)
				failed.Add(1)
			}
		})
		if err != nil {
			wg.Done()
			p.logger.Error("failed to submit double to worker pool", "id", double.ID, "err", err)
			failed.Add(1)
		}
	}
	wg.Wait()

	summary := Summary{
		Ingested: len(doubles) - int(failed.Load()),
		Failed:   int(failed.Load()),
	}
	p.logger.Info("ingestion batch complete", "ingested", summary.Ingested, "failed", summary.Failed)
	return summary
}

// ingestOne writes one double to both backends. The graph write goes first;
// a double that only exists in the vector store would surface semantic hits
// that the structured side can never confirm.
func (p *Pipeline) ingestOne(ctx context.Context, double core.Double) error {
	if err := p.graph.WriteDouble(ctx, double); err != nil {
		return err
	}
	return p.vector.Upsert(ctx, double)
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
