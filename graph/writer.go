package graph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/poiesic/doublesearch/core"
)

// Writer stores doubles and their owned products in the graph during
// ingestion. Writes are idempotent: re-ingesting the same double updates it
// in place instead of duplicating nodes.
type Writer struct {
	driver neo4j.DriverWithContext
	logger *slog.Logger
}

// NewWriter creates a graph writer on top of an open driver.
func NewWriter(driver neo4j.DriverWithContext) (*Writer, error) {
	if driver == nil {
		return nil, core.InvalidArgumentf("graph writer requires a driver")
	}
	return &Writer{
		driver: driver,
		logger: slog.Default().With("component", "graph-writer"),
	}, nil
}

// EnsureSchema creates the uniqueness constraint on Double ids. Safe to call
// on every startup.
func (w *Writer) EnsureSchema(ctx context.Context) error {
	session := w.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx,
			"CREATE CONSTRAINT double_id IF NOT EXISTS FOR (d:Double) REQUIRE d.id IS UNIQUE",
			nil)
		return nil, err
	})
	if err != nil {
		return &core.ExecutionError{Source: core.SourceGraph, Err: err}
	}
	return nil
}

// WriteDouble upserts one double and its products in a single write
// transaction. Each product variant is merged per double, so a double holds
// at most one node per variant.
func (w *Writer) WriteDouble(ctx context.Context, double core.Double) error {
	if double.ID == "" {
		return core.InvalidArgumentf("double has no id")
	}

	props := map[string]any{"id": string(double.ID)}
	if double.Description != "" {
		props["description"] = double.Description
	}
	for k, v := range double.Attributes {
		props[k] = v
	}

	session := w.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx,
			"MERGE (d:Double {id: $id}) SET d += $props",
			map[string]any{"id": string(double.ID), "props": props})
		if err != nil {
			return nil, err
		}

		for _, product := range double.Products {
			if !product.Type.Valid() {
				return nil, core.InvalidArgumentf("double %s has unknown product type %q", double.ID, product.Type)
			}
			query := fmt.Sprintf(
				"MATCH (d:Double {id: $id}) MERGE (d)-[:OWNS]->(p:%s) SET p += $props",
				product.Type)
			_, err := tx.Run(ctx, query, map[string]any{
				"id":    string(double.ID),
				"props": product.Attributes,
			})
			if err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		w.logger.Error("failed to write double", "id", double.ID, "err", err)
		return &core.ExecutionError{Source: core.SourceGraph, Err: err}
	}

	w.logger.Debug("wrote double", "id", double.ID, "products", len(double.Products))
	return nil
}
