package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/ppiankov/medqa/internal/model"
)

// Neo4jClient runs read queries against a Neo4j database
type Neo4jClient struct {
	driver   neo4j.DriverWithContext
	database string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewNeo4jClient connects to the graph and verifies connectivity
func NewNeo4jClient(ctx context.Context, cfg model.GraphConfig, logger *zap.Logger) (*Neo4jClient, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("%w: create driver: %w", ErrUnavailable, err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("%w: connect %s: %w", ErrUnavailable, cfg.URI, err)
	}

	logger.Info("connected to knowledge graph", zap.String("uri", cfg.URI))

	return &Neo4jClient{
		driver:   driver,
		database: cfg.Database,
		timeout:  cfg.Timeout,
		logger:   logger,
	}, nil
}

// Run executes cypher on a reader and returns each record as a map
func (c *Neo4jClient) Run(ctx context.Context, cypher string, params map[string]any) ([]Record, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	opts := []neo4j.ExecuteQueryConfigurationOption{neo4j.ExecuteQueryWithReadersRouting()}
	if c.database != "" {
		opts = append(opts, neo4j.ExecuteQueryWithDatabase(c.database))
	}

	result, err := neo4j.ExecuteQuery(ctx, c.driver, cypher, params, neo4j.EagerResultTransformer, opts...)
	if err != nil {
		c.logger.Warn("graph query failed", zap.Error(err), zap.String("cypher", cypher))
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	rows := make([]Record, 0, len(result.Records))
	for _, rec := range result.Records {
		rows = append(rows, Record(rec.AsMap()))
	}
	return rows, nil
}

// Close releases the driver
func (c *Neo4jClient) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}
