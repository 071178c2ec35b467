package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "merkit:completion:"

// CachedClient wraps a Client with a Redis-backed completion cache keyed by
// prompt hash. Repeated batch runs over the same context packs then skip
// the provider entirely. Cache failures never fail a completion: on any
// Redis error the inner client is called as if there were no cache.
type CachedClient struct {
	inner Client
	rdb   *redis.Client
	ttl   time.Duration
	log   *zap.Logger
}

// NewCachedClient creates a caching wrapper around inner. A zero ttl means
// cached completions never expire.
func NewCachedClient(inner Client, rdb *redis.Client, ttl time.Duration, log *zap.Logger) *CachedClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedClient{inner: inner, rdb: rdb, ttl: ttl, log: log}
}

// Complete returns the cached completion for the prompt if present,
// otherwise calls the inner client and stores its result.
func (c *CachedClient) Complete(ctx context.Context, prompt string) (string, error) {
	key := cacheKey(prompt)

	cached, err := c.rdb.Get(ctx, key).Result()
	if err == nil && cached != "" {
		c.log.Debug("completion cache hit", zap.String("key", key))
		return cached, nil
	}
	if err != nil && err != redis.Nil {
		c.log.Warn("completion cache read failed", zap.Error(err))
	}

	out, err := c.inner.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}

	if out != "" {
		if err := c.rdb.Set(ctx, key, out, c.ttl).Err(); err != nil {
			c.log.Warn("completion cache write failed", zap.Error(err))
		}
	}

	return out, nil
}

func cacheKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}
