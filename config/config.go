package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Log       LogConfig
	Recommend RecommendConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `mapstructure:"SERVER_HOST"`
	Port         int           `mapstructure:"SERVER_PORT"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
	IdleTimeout  time.Duration `mapstructure:"SERVER_IDLE_TIMEOUT"`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `mapstructure:"POSTGRES_HOST"`
	Port     int    `mapstructure:"POSTGRES_PORT"`
	User     string `mapstructure:"POSTGRES_USER"`
	Password string `mapstructure:"POSTGRES_PASSWORD"`
	DBName   string `mapstructure:"POSTGRES_DB"`
	SSLMode  string `mapstructure:"POSTGRES_SSLMODE"`
	MaxConns int32  `mapstructure:"POSTGRES_MAX_CONNS"`
	MinConns int32  `mapstructure:"POSTGRES_MIN_CONNS"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     int    `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
	PoolSize int    `mapstructure:"REDIS_POOL_SIZE"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`  // debug | info | warn | error
	Format string `mapstructure:"LOG_FORMAT"` // json | console
}

// RecommendConfig holds the recommendation engine tunables that operators
// are expected to change. The full scoring table lives in WeightsFile.
type RecommendConfig struct {
	MaxResults              int           `mapstructure:"RECOMMEND_MAX_RESULTS"`
	MinResults              int           `mapstructure:"RECOMMEND_MIN_RESULTS"`
	MinScore                float64       `mapstructure:"RECOMMEND_MIN_SCORE"`
	TopK                    int           `mapstructure:"RECOMMEND_TOP_K"`
	StrictBudgetMultiplier  float64       `mapstructure:"RECOMMEND_STRICT_BUDGET_MULTIPLIER"`
	RelaxedBudgetMultiplier float64       `mapstructure:"RECOMMEND_RELAXED_BUDGET_MULTIPLIER"`
	DepartingSoonDays       int           `mapstructure:"RECOMMEND_DEPARTING_SOON_DAYS"`
	PrivateGroupsLabel      string        `mapstructure:"RECOMMEND_PRIVATE_GROUPS_LABEL"`
	TypeCacheTTL            time.Duration `mapstructure:"RECOMMEND_TYPE_CACHE_TTL"`
	Timeout                 time.Duration `mapstructure:"RECOMMEND_TIMEOUT"`
	WeightsFile             string        `mapstructure:"RECOMMEND_WEIGHTS_FILE"`
}

// DSN returns the PostgreSQL connection string.
func (p *PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode,
	)
}

// Addr returns the Redis address in host:port format.
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// ServerAddr returns the HTTP listen address in host:port format.
func (s *ServerConfig) ServerAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads configuration from environment variables and .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	setDefaults(v)

	// Try to read .env file. If it doesn't exist (e.g., inside Docker),
	// env vars injected by docker-compose env_file are used instead.
	_ = v.ReadInConfig()

	cfg := &Config{}

	// ── Server ──────────────────────────────────────────
	cfg.Server = ServerConfig{
		Host:         v.GetString("SERVER_HOST"),
		Port:         v.GetInt("SERVER_PORT"),
		ReadTimeout:  v.GetDuration("SERVER_READ_TIMEOUT"),
		WriteTimeout: v.GetDuration("SERVER_WRITE_TIMEOUT"),
		IdleTimeout:  v.GetDuration("SERVER_IDLE_TIMEOUT"),
	}

	// ── Postgres ────────────────────────────────────────
	cfg.Postgres = PostgresConfig{
		Host:     v.GetString("POSTGRES_HOST"),
		Port:     v.GetInt("POSTGRES_PORT"),
		User:     v.GetString("POSTGRES_USER"),
		Password: v.GetString("POSTGRES_PASSWORD"),
		DBName:   v.GetString("POSTGRES_DB"),
		SSLMode:  v.GetString("POSTGRES_SSLMODE"),
		MaxConns: v.GetInt32("POSTGRES_MAX_CONNS"),
		MinConns: v.GetInt32("POSTGRES_MIN_CONNS"),
	}

	// ── Redis ───────────────────────────────────────────
	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
		PoolSize: v.GetInt("REDIS_POOL_SIZE"),
	}

	// ── Logging ─────────────────────────────────────────
	cfg.Log = LogConfig{
		Level:  strings.ToLower(v.GetString("LOG_LEVEL")),
		Format: strings.ToLower(v.GetString("LOG_FORMAT")),
	}

	// ── Recommendation engine ───────────────────────────
	cfg.Recommend = RecommendConfig{
		MaxResults:              v.GetInt("RECOMMEND_MAX_RESULTS"),
		MinResults:              v.GetInt("RECOMMEND_MIN_RESULTS"),
		MinScore:                v.GetFloat64("RECOMMEND_MIN_SCORE"),
		TopK:                    v.GetInt("RECOMMEND_TOP_K"),
		StrictBudgetMultiplier:  v.GetFloat64("RECOMMEND_STRICT_BUDGET_MULTIPLIER"),
		RelaxedBudgetMultiplier: v.GetFloat64("RECOMMEND_RELAXED_BUDGET_MULTIPLIER"),
		DepartingSoonDays:       v.GetInt("RECOMMEND_DEPARTING_SOON_DAYS"),
		PrivateGroupsLabel:      v.GetString("RECOMMEND_PRIVATE_GROUPS_LABEL"),
		TypeCacheTTL:            v.GetDuration("RECOMMEND_TYPE_CACHE_TTL"),
		Timeout:                 v.GetDuration("RECOMMEND_TIMEOUT"),
		WeightsFile:             v.GetString("RECOMMEND_WEIGHTS_FILE"),
	}

	if cfg.Recommend.PrivateGroupsLabel == "" {
		return nil, fmt.Errorf("config: RECOMMEND_PRIVATE_GROUPS_LABEL must not be empty")
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", "5s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "10s")
	v.SetDefault("SERVER_IDLE_TIMEOUT", "120s")

	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", 5432)
	v.SetDefault("POSTGRES_USER", "tripmatch")
	v.SetDefault("POSTGRES_PASSWORD", "tripmatch_secret")
	v.SetDefault("POSTGRES_DB", "tripmatch_db")
	v.SetDefault("POSTGRES_SSLMODE", "disable")
	v.SetDefault("POSTGRES_MAX_CONNS", 20)
	v.SetDefault("POSTGRES_MIN_CONNS", 2)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 20)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("RECOMMEND_MAX_RESULTS", 10)
	v.SetDefault("RECOMMEND_MIN_RESULTS", 5)
	v.SetDefault("RECOMMEND_MIN_SCORE", 30)
	v.SetDefault("RECOMMEND_TOP_K", 30)
	v.SetDefault("RECOMMEND_STRICT_BUDGET_MULTIPLIER", 1.3)
	v.SetDefault("RECOMMEND_RELAXED_BUDGET_MULTIPLIER", 1.5)
	v.SetDefault("RECOMMEND_DEPARTING_SOON_DAYS", 30)
	v.SetDefault("RECOMMEND_PRIVATE_GROUPS_LABEL", "Private Groups")
	v.SetDefault("RECOMMEND_TYPE_CACHE_TTL", "1h")
	v.SetDefault("RECOMMEND_TIMEOUT", "5s")
	v.SetDefault("RECOMMEND_WEIGHTS_FILE", "")
}

// LoadOverrides reads a YAML/JSON/TOML file and unmarshals it over target,
// so keys missing from the file keep target's current values. An empty
// path is a no-op.
func LoadOverrides(path string, target any) error {
	if path == "" {
		return nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := v.Unmarshal(target); err != nil {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}
	return nil
}
