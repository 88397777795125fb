package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyStore remembers request results in Redis.
// Key format: idem:<scope>:<key>
type IdempotencyStore struct {
	client redis.Cmdable
}

func NewIdempotencyStore(client redis.Cmdable) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

// Lookup reports the value stored for (scope, key), if any.
func (s *IdempotencyStore) Lookup(ctx context.Context, scope, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, idemKey(scope, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("idempotency lookup: %w", err)
	}
	return v, true, nil
}

// Remember stores value for (scope, key) unless a value is already present.
func (s *IdempotencyStore) Remember(ctx context.Context, scope, key, value string, ttl time.Duration) error {
	if err := s.client.SetNX(ctx, idemKey(scope, key), value, ttl).Err(); err != nil {
		return fmt.Errorf("idempotency remember: %w", err)
	}
	return nil
}

func idemKey(scope, key string) string {
	return fmt.Sprintf("idem:%s:%s", scope, key)
}
