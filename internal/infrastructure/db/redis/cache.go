package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/storefront/commerce/internal/api/metrics"
	"github.com/storefront/commerce/internal/core/domain"
)

// ProductCache stores JSON-encoded products under caller-supplied keys.
type ProductCache struct {
	client redis.Cmdable
}

func NewProductCache(client redis.Cmdable) *ProductCache {
	return &ProductCache{client: client}
}

// Get returns (nil, false, nil) on a miss.
func (c *ProductCache) Get(ctx context.Context, key string) (*domain.Product, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
		return nil, false, nil
	}
	if err != nil {
		metrics.CacheLookupsTotal.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	var p domain.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		// A corrupt entry is treated as a miss and dropped.
		_ = c.client.Del(ctx, key).Err()
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
		return nil, false, nil
	}
	metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
	return &p, true, nil
}

func (c *ProductCache) Set(ctx context.Context, key string, p *domain.Product, ttl time.Duration) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	return c.client.Set(ctx, key, raw, ttl).Err()
}

func (c *ProductCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
