package cache

import (
	"context"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/shiva/tripmatch/config"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "tripmatch:", Key())
	assert.Equal(t, "tripmatch:trip_type:private groups", Key("trip_type", "private groups"))
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := config.RedisConfig{Host: mr.Host(), PoolSize: 2}
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	cfg.Port = port

	client, err := NewRedisClient(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, HealthCheck(context.Background(), client))
}

func TestHealthCheck_Down(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	require.NoError(t, HealthCheck(context.Background(), client))
	mr.Close()
	assert.Error(t, HealthCheck(context.Background(), client))
}
