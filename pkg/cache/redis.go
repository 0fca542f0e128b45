// Package cache owns the Redis client used for reference-data caching.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shiva/tripmatch/config"
)

// KeyPrefix namespaces every key this service writes.
const KeyPrefix = "tripmatch:"

// NewRedisClient creates a Redis client with connection pooling.
//
// Redis only fronts small reference lookups here, so the pool is modest
// (default PoolSize = 20) and timeouts are short.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	if err := HealthCheck(ctx, client); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping failed: %w", err)
	}
	if log != nil {
		log.Info("redis connected", zap.String("addr", cfg.Addr()), zap.Int("db", cfg.DB))
	}

	return client, nil
}

// HealthCheck pings Redis and returns nil if healthy.
func HealthCheck(ctx context.Context, client redis.Cmdable) error {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return client.Ping(pingCtx).Err()
}

// Key joins parts under KeyPrefix.
func Key(parts ...string) string {
	k := KeyPrefix
	for i, p := range parts {
		if i > 0 {
			k += ":"
		}
		k += p
	}
	return k
}
