package vector

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/poiesic/doublesearch/ai"
	"github.com/poiesic/doublesearch/core"
	"github.com/qdrant/go-client/qdrant"
)

// Writer embeds double descriptions and stores them as points during
// ingestion.
type Writer struct {
	embedder ai.Embedder
	client   *Client
	logger   *slog.Logger
}

// NewWriter creates a vector writer on top of an open client.
func NewWriter(embedder ai.Embedder, client *Client) (*Writer, error) {
	if embedder == nil {
		return nil, core.InvalidArgumentf("vector writer requires an embedder")
	}
	if client == nil {
		return nil, core.InvalidArgumentf("vector writer requires a client")
	}
	return &Writer{
		embedder: embedder,
		client:   client,
		logger:   slog.Default().With("component", "vector-writer"),
	}, nil
}

// Upsert embeds the double's description and writes it as a point. The point
// id is derived from the entity id, so re-ingesting the same double replaces
// its vector instead of duplicating it. Doubles without a description are
// skipped; they can still match structurally.
func (w *Writer) Upsert(ctx context.Context, double core.Double) error {
	if double.ID == "" {
		return core.InvalidArgumentf("double has no id")
	}
	if double.Description == "" {
		w.logger.Warn("skipping double without description", "id", double.ID)
		return nil
	}

	embedding, err := w.embedder.EmbedText(ctx, double.Description)
	if err != nil {
		return &core.ExecutionError{Source: core.SourceVector, Err: err}
	}

	pointID := uuid.NewSHA1(uuid.NameSpaceOID, []byte(double.ID)).String()
	wait := true
	_, err = w.client.Points().Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: w.client.CollectionName(),
		Wait:           &wait,
		Points: []*qdrant.PointStruct{
			{
				Id:      &qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: pointID}},
				Vectors: &qdrant.Vectors{VectorsOptions: &qdrant.Vectors_Vector{Vector: &qdrant.Vector{Data: embedding}}},
				Payload: map[string]*qdrant.Value{
					"id":          {Kind: &qdrant.Value_StringValue{StringValue: string(double.ID)}},
					"description": {Kind: &qdrant.Value_StringValue{StringValue: double.Description}},
				},
			},
		},
	})
	if err != nil {
		w.logger.Error("failed to upsert point", "id", double.ID, "err", err)
		return &core.ExecutionError{Source: core.SourceVector, Err: err}
	}

	w.logger.Debug("upserted point", "id", double.ID)
	return nil
}
