package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/shop-service/internal/config"
)

const redisDialCheckTimeout = 2 * time.Second

// Redis wraps the go-redis client used for idempotency keys.
type Redis struct {
	Client    *redis.Client
	reachable bool
}

// NewRedis builds the client and probes it once. An unreachable server is not fatal:
// callers consult Available to decide whether to wire Redis-backed features.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisDialCheckTimeout)
	defer cancel()

	r := &Redis{Client: client}
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		r.reachable = true
		logger.Info("connected to redis", zap.String("addr", cfg.Addr))
	}
	return r
}

// Available reports whether the startup probe succeeded.
func (r *Redis) Available() bool {
	return r != nil && r.Client != nil && r.reachable
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}
