package graph

import (
	"context"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/poiesic/doublesearch/core"
)

// Executor runs compiled filter queries against a Neo4j server and maps the
// returned nodes into structured matches.
type Executor struct {
	driver neo4j.DriverWithContext
	logger *slog.Logger
}

// NewExecutor creates a structured query executor on top of an open driver.
// The executor does not own the driver; closing it is the caller's job.
func NewExecutor(driver neo4j.DriverWithContext) (*Executor, error) {
	if driver == nil {
		return nil, core.InvalidArgumentf("graph executor requires a driver")
	}
	return &Executor{
		driver: driver,
		logger: slog.Default().With("component", "graph-executor"),
	}, nil
}

// Execute compiles the filter and runs it in a read transaction.
//
// The result is an exact, unranked set: every returned entity satisfied the
// whole filter conjunction. Backend failures come back as
// *core.ExecutionError tagged with core.SourceGraph so the caller can tell
// which side of a hybrid search degraded.
func (e *Executor) Execute(ctx context.Context, filter *core.Filter) (core.StructuredResult, error) {
	query, params, err := CompileFilter(filter)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("executing structured query", "query", query, "params", params)

	session := e.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return records.Collect(ctx)
	})
	if err != nil {
		e.logger.Error("structured query failed", "err", err)
		return nil, &core.ExecutionError{Source: core.SourceGraph, Err: err}
	}

	records := result.([]*neo4j.Record)
	matches := make(core.StructuredResult, 0, len(records))
	for _, record := range records {
		value, ok := record.Get("d")
		if !ok {
			continue
		}
		node, ok := value.(neo4j.Node)
		if !ok {
			continue
		}
		id, _ := node.Props["id"].(string)
		if id == "" {
			e.logger.Warn("skipping double node without id", "elementId", node.ElementId)
			continue
		}
		matches = append(matches, core.StructuredMatch{
			EntityID:   core.EntityID(id),
			Attributes: node.Props,
		})
	}

	e.logger.Debug("structured query complete", "matches", len(matches))
	return matches, nil
}
