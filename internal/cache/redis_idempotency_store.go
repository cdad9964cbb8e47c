package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/shop-service/internal/service"
)

// RedisIdempotencyStore keeps Idempotency-Key reservations and their results in Redis.
type RedisIdempotencyStore struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	prefix string
}

// NewRedisIdempotencyStore returns a store whose keys expire after ttl.
func NewRedisIdempotencyStore(rdb redis.Cmdable, ttl time.Duration) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{rdb: rdb, ttl: ttl, prefix: "shop:idemp:"}
}

func (s *RedisIdempotencyStore) lockKey(scope, key string) string {
	return s.prefix + "lock:" + scope + ":" + key
}

func (s *RedisIdempotencyStore) resultKey(scope, key string) string {
	return s.prefix + "map:" + scope + ":" + key
}

// TryLock reserves the key; false means another request holds it.
func (s *RedisIdempotencyStore) TryLock(ctx context.Context, scope, key string) (bool, error) {
	return s.rdb.SetNX(ctx, s.lockKey(scope, key), "1", s.ttl).Result()
}

// Release drops a reservation whose request failed, so the client may retry.
func (s *RedisIdempotencyStore) Release(ctx context.Context, scope, key string) error {
	return s.rdb.Del(ctx, s.lockKey(scope, key)).Err()
}

// Remember stores the result produced under the key.
func (s *RedisIdempotencyStore) Remember(ctx context.Context, scope, key, value string) error {
	return s.rdb.Set(ctx, s.resultKey(scope, key), value, s.ttl).Err()
}

// Recall returns the stored result, if any.
func (s *RedisIdempotencyStore) Recall(ctx context.Context, scope, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, s.resultKey(scope, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

var _ service.IdempotencyStore = (*RedisIdempotencyStore)(nil)
