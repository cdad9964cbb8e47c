package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unreachable: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisIdempotencyStore(t *testing.T) {
	client := newTestClient(t)
	store := NewRedisIdempotencyStore(client, time.Minute)
	store.prefix = "test:" + uuid.NewString() + ":"
	ctx := context.Background()

	_, found, err := store.Recall(ctx, "orders:1", "key-1")
	require.NoError(t, err)
	assert.False(t, found)

	locked, err := store.TryLock(ctx, "orders:1", "key-1")
	require.NoError(t, err)
	assert.True(t, locked)

	locked, err = store.TryLock(ctx, "orders:1", "key-1")
	require.NoError(t, err)
	assert.False(t, locked)

	require.NoError(t, store.Remember(ctx, "orders:1", "key-1", "42"))
	val, found, err := store.Recall(ctx, "orders:1", "key-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "42", val)

	require.NoError(t, store.Release(ctx, "orders:1", "key-1"))
	locked, err = store.TryLock(ctx, "orders:1", "key-1")
	require.NoError(t, err)
	assert.True(t, locked)
}
