package graph

import (
	"context"
	"errors"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Config holds connection settings for the Neo4j graph store.
type Config struct {
	// URI is the bolt endpoint of the Neo4j server.
	// Example: "bolt://localhost:7687"
	URI string

	// Username authenticates against the server.
	Username string

	// Password authenticates against the server.
	Password string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithURI sets the bolt endpoint.
func WithURI(uri string) ConfigOption {
	return func(c *Config) {
		c.URI = uri
	}
}

// WithCredentials sets the basic-auth credentials.
func WithCredentials(username, password string) ConfigOption {
	return func(c *Config) {
		c.Username = username
		c.Password = password
	}
}

// DefaultConfig returns a Config pointing at a local Neo4j server.
func DefaultConfig() *Config {
	return &Config{
		URI:      "bolt://localhost:7687",
		Username: "neo4j",
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
	if c.URI == "" {
		return errors.New("graph config: URI is required")
	}
	if c.Username == "" {
		return errors.New("graph config: Username is required")
	}
	return nil
}

// NewDriver opens a Neo4j driver for the configured server and verifies the
// connection. The caller owns the driver and must close it with
// driver.Close(ctx) when done.
func NewDriver(ctx context.Context, config *Config) (neo4j.DriverWithContext, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	driver, err := neo4j.NewDriverWithContext(config.URI, neo4j.BasicAuth(config.Username, config.Password, ""))
	if err != nil {
		return nil, err
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, err
	}

	return driver, nil
}
