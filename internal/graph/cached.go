package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ppiankov/medqa/internal/cache"
	"github.com/ppiankov/medqa/internal/metrics"
)

// Cached serves repeated queries from a cache and collapses identical
// in-flight queries into one round trip. Errors are never cached.
type Cached struct {
	next    Client
	cache   cache.Cache
	ttl     time.Duration
	group   singleflight.Group
	metrics *metrics.Collector
	logger  *zap.Logger
}

// NewCached wraps next
func NewCached(next Client, c cache.Cache, ttl time.Duration, m *metrics.Collector, logger *zap.Logger) *Cached {
	return &Cached{next: next, cache: c, ttl: ttl, metrics: m, logger: logger}
}

func (c *Cached) Run(ctx context.Context, cypher string, params map[string]any) ([]Record, error) {
	encoded, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("encode params: %w", err)
	}
	key := cache.Key(cypher, string(encoded))

	if data, ok := c.cache.Get(ctx, key); ok {
		var rows []Record
		if err := json.Unmarshal(data, &rows); err == nil {
			c.metrics.RecordCache(true)
			return rows, nil
		}
		c.logger.Warn("discarding undecodable cache entry", zap.String("key", key))
	}
	c.metrics.RecordCache(false)

	v, err, _ := c.group.Do(key, func() (any, error) {
		rows, err := c.next.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(rows); err == nil {
			if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
				c.logger.Debug("cache write failed", zap.Error(err))
			}
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Record), nil
}
