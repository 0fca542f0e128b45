// Package db owns the PostgreSQL connection pool.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/shiva/tripmatch/config"
)

// SlowQueryThreshold is the duration above which a query is logged at warn.
const SlowQueryThreshold = 250 * time.Millisecond

// NewPostgresPool creates a connection pool to PostgreSQL.
//
// The catalog is read-mostly, so the pool stays small:
//   - MaxConns: from config (default 20)
//   - MinConns: kept warm from config (default 2)
//   - Health-check period: 30 s
//   - Connect timeout: 5 s
func NewPostgresPool(ctx context.Context, cfg config.PostgresConfig, log *zap.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.HealthCheckPeriod = 30 * time.Second
	poolCfg.MaxConnLifetime = 1 * time.Hour
	poolCfg.MaxConnIdleTime = 15 * time.Minute
	poolCfg.ConnConfig.ConnectTimeout = 5 * time.Second
	if log != nil {
		poolCfg.ConnConfig.Tracer = NewQueryTracer(log.Named("postgres"), SlowQueryThreshold)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}

	// Verify connectivity.
	if err := HealthCheck(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping failed: %w", err)
	}

	return pool, nil
}

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck pings PostgreSQL and returns nil if healthy.
func HealthCheck(ctx context.Context, p Pinger) error {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.Ping(pingCtx)
}

// ─── Query tracing ──────────────────────────────────────────

type traceStartKey struct{}

type traceStart struct {
	sql   string
	start time.Time
}

// QueryTracer logs failed queries and queries slower than a threshold.
type QueryTracer struct {
	log       *zap.Logger
	threshold time.Duration
	now       func() time.Time
}

// NewQueryTracer creates a pgx.QueryTracer backed by zap.
func NewQueryTracer(log *zap.Logger, threshold time.Duration) *QueryTracer {
	return &QueryTracer{log: log, threshold: threshold, now: time.Now}
}

var _ pgx.QueryTracer = (*QueryTracer)(nil)

// TraceQueryStart records the start time on the context.
func (t *QueryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, traceStartKey{}, traceStart{sql: data.SQL, start: t.now()})
}

// TraceQueryEnd logs the query when it failed or ran slow.
func (t *QueryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	st, ok := ctx.Value(traceStartKey{}).(traceStart)
	if !ok {
		return
	}
	elapsed := t.now().Sub(st.start)

	switch {
	case data.Err != nil:
		t.log.Error("query failed",
			zap.String("sql", compactSQL(st.sql)),
			zap.Duration("elapsed", elapsed),
			zap.Error(data.Err),
		)
	case elapsed >= t.threshold:
		t.log.Warn("slow query",
			zap.String("sql", compactSQL(st.sql)),
			zap.Duration("elapsed", elapsed),
			zap.String("tag", data.CommandTag.String()),
		)
	}
}

// compactSQL folds whitespace so multi-line queries log on one line.
func compactSQL(sql string) string {
	out := make([]byte, 0, len(sql))
	space := false
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		if c == ' ' || c == '\n' || c == '\t' || c == '\r' {
			space = true
			continue
		}
		if space && len(out) > 0 {
			out = append(out, ' ')
		}
		space = false
		out = append(out, c)
	}
	return string(out)
}
