package vector

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/doublesearch/ai"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Config holds connection settings for the Qdrant vector store.
type Config struct {
	// Addr is the gRPC endpoint of the Qdrant server.
	// Example: "localhost:6334"
	Addr string

	// Collection is the name of the collection holding double embeddings.
	Collection string

	// VectorSize is the embedding dimensionality of the collection.
	VectorSize uint64
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithAddr sets the gRPC endpoint.
func WithAddr(addr string) ConfigOption {
	return func(c *Config) {
		c.Addr = addr
	}
}

// WithCollection sets the collection name.
func WithCollection(name string) ConfigOption {
	return func(c *Config) {
		c.Collection = name
	}
}

// WithVectorSize sets the embedding dimensionality.
func WithVectorSize(size uint64) ConfigOption {
	return func(c *Config) {
		c.VectorSize = size
	}
}

// DefaultConfig returns a Config pointing at a local Qdrant server with the
// dimensionality of the default all-minilm embedding model.
func DefaultConfig() *Config {
	return &Config{
		Addr:       "localhost:6334",
		Collection: "doubles",
		VectorSize: ai.DefaultEmbeddingDim,
	}
}

// NewConfig creates a Config with the default values and applies the provided
// options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Validate checks that the configuration is complete.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("vector config: Addr is required")
	}
	if c.Collection == "" {
		return errors.New("vector config: Collection is required")
	}
	if c.VectorSize == 0 {
		return errors.New("vector config: VectorSize is required")
	}
	return nil
}

// Client bundles the Qdrant gRPC clients with the collection they operate on.
type Client struct {
	conn        *grpc.ClientConn
	points      qdrant.PointsClient
	collections qdrant.CollectionsClient
	collection  string
	vectorSize  uint64
	logger      *slog.Logger
}

// NewClient connects to the configured Qdrant server. The caller owns the
// client and must Close it when done.
func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	conn, err := grpc.Dial(config.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}

	return &Client{
		conn:        conn,
		points:      qdrant.NewPointsClient(conn),
		collections: qdrant.NewCollectionsClient(conn),
		collection:  config.Collection,
		vectorSize:  config.VectorSize,
		logger:      slog.Default().With("component", "vector-client"),
	}, nil
}

// Points returns the low-level points client.
func (c *Client) Points() qdrant.PointsClient {
	return c.points
}

// CollectionName returns the collection this client operates on.
func (c *Client) CollectionName() string {
	return c.collection
}

// EnsureCollection creates the cosine similarity collection when it does not
// exist yet. Safe to call on every startup.
func (c *Client) EnsureCollection(ctx context.Context) error {
	listResponse, err := c.collections.List(ctx, &qdrant.ListCollectionsRequest{})
	if err != nil {
		return err
	}
	for _, description := range listResponse.GetCollections() {
		if description.GetName() == c.collection {
			return nil
		}
	}

	c.logger.Info("creating collection", "collection", c.collection, "vectorSize", c.vectorSize)
	_, err = c.collections.Create(ctx, &qdrant.CreateCollection{
		CollectionName: c.collection,
		VectorsConfig: &qdrant.VectorsConfig{Config: &qdrant.VectorsConfig_Params{
			Params: &qdrant.VectorParams{Size: c.vectorSize, Distance: qdrant.Distance_Cosine},
		}},
	})
	return err
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
