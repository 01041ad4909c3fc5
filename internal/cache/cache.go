package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/medqa/internal/model"
)

// ErrMiss is returned by backends that distinguish a miss from a failure
var ErrMiss = errors.New("cache miss")

const keyPrefix = "medqa:v1:"

// Cache defines the interface for caching graph query results
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Key derives a cache key from its parts (e.g. a Cypher statement and its encoded params)
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

// New builds the cache backend selected by cfg. It returns nil when caching is disabled.
func New(cfg model.CacheConfig, logger *zap.Logger) (Cache, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	switch cfg.Backend {
	case "memory":
		return NewMemoryCache(cfg.TTL, 10*time.Minute), nil
	case "disk":
		return NewDiskCache(cfg.Dir, cfg.TTL), nil
	case "redis":
		c, err := NewRedisCache(cfg.Redis, cfg.TTL, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "layered":
		back, err := NewRedisCache(cfg.Redis, cfg.TTL, logger)
		if err != nil {
			return nil, err
		}
		return NewLayeredCache(NewMemoryCache(cfg.TTL, 10*time.Minute), back), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
