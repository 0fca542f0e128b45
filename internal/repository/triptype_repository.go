package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/shiva/tripmatch/pkg/cache"
)

// ErrTripTypeNotFound is returned when no trip type carries the label.
var ErrTripTypeNotFound = errors.New("trip type not found")

// DefaultTypeCacheTTL bounds how stale a cached type id can get.
const DefaultTypeCacheTTL = time.Hour

// TripTypeRepository resolves trip type ids by name. The Private Groups id
// is read on every request, so it sits behind a Redis cache.
type TripTypeRepository struct {
	db    DBTX
	redis redis.Cmdable
	label string
	ttl   time.Duration
}

// NewTripTypeRepository creates a trip type repository. label is the name
// of the Private Groups row; ttl <= 0 selects DefaultTypeCacheTTL.
func NewTripTypeRepository(db DBTX, rdb redis.Cmdable, label string, ttl time.Duration) *TripTypeRepository {
	if ttl <= 0 {
		ttl = DefaultTypeCacheTTL
	}
	return &TripTypeRepository{db: db, redis: rdb, label: label, ttl: ttl}
}

func typeCacheKey(name string) string {
	return cache.Key("trip_type", strings.ToLower(name))
}

// PrivateGroupsTypeID returns the id of the Private Groups trip type.
//
// Strategy:
//  1. Try Redis first (fast path).
//  2. On miss or Redis failure, query Postgres, then cache with the TTL.
func (r *TripTypeRepository) PrivateGroupsTypeID(ctx context.Context) (int64, error) {
	return r.IDByName(ctx, r.label)
}

// IDByName resolves a trip type id by exact name.
func (r *TripTypeRepository) IDByName(ctx context.Context, name string) (int64, error) {
	key := typeCacheKey(name)

	// ── Fast path: Redis ────────────────────────────────
	if r.redis != nil {
		if id, err := r.redis.Get(ctx, key).Int64(); err == nil {
			return id, nil
		}
	}

	// ── Slow path: Postgres ─────────────────────────────
	var id int64
	err := r.db.QueryRow(ctx, `SELECT id FROM trip_types WHERE name = $1 ORDER BY id LIMIT 1`, name).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: %q", ErrTripTypeNotFound, name)
		}
		return 0, fmt.Errorf("query trip type %q: %w", name, err)
	}

	// Fire-and-forget: a cache write failure only costs the next lookup.
	if r.redis != nil {
		_ = r.redis.Set(ctx, key, id, r.ttl).Err()
	}
	return id, nil
}

// Invalidate drops the cached Private Groups id, e.g. after the reference
// data was edited.
func (r *TripTypeRepository) Invalidate(ctx context.Context) error {
	if r.redis == nil {
		return nil
	}
	if err := r.redis.Del(ctx, typeCacheKey(r.label)).Err(); err != nil {
		return fmt.Errorf("invalidate trip type cache: %w", err)
	}
	return nil
}
