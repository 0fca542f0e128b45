package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.ServerAddr())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 10, cfg.Recommend.MaxResults)
	assert.Equal(t, 5, cfg.Recommend.MinResults)
	assert.Equal(t, 30.0, cfg.Recommend.MinScore)
	assert.Equal(t, 1.3, cfg.Recommend.StrictBudgetMultiplier)
	assert.Equal(t, 1.5, cfg.Recommend.RelaxedBudgetMultiplier)
	assert.Equal(t, "Private Groups", cfg.Recommend.PrivateGroupsLabel)
	assert.Equal(t, time.Hour, cfg.Recommend.TypeCacheTTL)
	assert.Equal(t, 5*time.Second, cfg.Recommend.Timeout)
	assert.Empty(t, cfg.Recommend.WeightsFile)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("RECOMMEND_MAX_RESULTS", "20")
	t.Setenv("RECOMMEND_TIMEOUT", "750ms")
	t.Setenv("RECOMMEND_PRIVATE_GROUPS_LABEL", "Private Tours")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 20, cfg.Recommend.MaxResults)
	assert.Equal(t, 750*time.Millisecond, cfg.Recommend.Timeout)
	assert.Equal(t, "Private Tours", cfg.Recommend.PrivateGroupsLabel)
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{User: "u", Password: "p", Host: "db", Port: 5432, DBName: "trips", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/trips?sslmode=disable", p.DSN())

	r := RedisConfig{Host: "cache", Port: 6379}
	assert.Equal(t, "cache:6379", r.Addr())
}

type weights struct {
	BaseScore float64 `mapstructure:"base_score"`
	ThemeFull float64 `mapstructure:"theme_full"`
}

func TestLoadOverrides(t *testing.T) {
	target := weights{BaseScore: 25, ThemeFull: 25}
	require.NoError(t, LoadOverrides("", &target))
	assert.Equal(t, weights{25, 25}, target)

	path := filepath.Join(t.TempDir(), "weights.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"base_score": 30}`), 0o600))

	require.NoError(t, LoadOverrides(path, &target))
	assert.Equal(t, weights{30, 25}, target)

	assert.Error(t, LoadOverrides(filepath.Join(t.TempDir(), "missing.yaml"), &target))
}
