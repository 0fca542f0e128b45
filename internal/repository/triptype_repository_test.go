package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const typeQuery = "SELECT id FROM trip_types WHERE name"

func setupTypeRepo(t *testing.T) (*TripTypeRepository, pgxmock.PgxPoolIface, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return NewTripTypeRepository(mock, rdb, "Private Groups", time.Minute), mock, mr
}

func TestPrivateGroupsTypeID_MissThenHit(t *testing.T) {
	repo, mock, mr := setupTypeRepo(t)
	ctx := context.Background()

	mock.ExpectQuery(typeQuery).
		WithArgs("Private Groups").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(9)))

	id, err := repo.PrivateGroupsTypeID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)

	// Cached with TTL; the second call must not touch Postgres.
	key := typeCacheKey("Private Groups")
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Minute, mr.TTL(key))

	id, err = repo.PrivateGroupsTypeID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrivateGroupsTypeID_NotFound(t *testing.T) {
	repo, mock, mr := setupTypeRepo(t)

	mock.ExpectQuery(typeQuery).
		WithArgs("Private Groups").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.PrivateGroupsTypeID(context.Background())
	assert.ErrorIs(t, err, ErrTripTypeNotFound)
	assert.False(t, mr.Exists(typeCacheKey("Private Groups")))
}

func TestPrivateGroupsTypeID_DBError(t *testing.T) {
	repo, mock, _ := setupTypeRepo(t)

	boom := errors.New("db down")
	mock.ExpectQuery(typeQuery).
		WithArgs("Private Groups").
		WillReturnError(boom)

	_, err := repo.PrivateGroupsTypeID(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrTripTypeNotFound)
}

func TestPrivateGroupsTypeID_RedisDownFallsBackToDB(t *testing.T) {
	repo, mock, mr := setupTypeRepo(t)
	mr.Close()

	mock.ExpectQuery(typeQuery).
		WithArgs("Private Groups").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(4)))

	id, err := repo.PrivateGroupsTypeID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), id)
}

func TestInvalidate(t *testing.T) {
	repo, mock, mr := setupTypeRepo(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(typeCacheKey("Private Groups"), "9"))
	require.NoError(t, repo.Invalidate(ctx))
	assert.False(t, mr.Exists(typeCacheKey("Private Groups")))

	mock.ExpectQuery(typeQuery).
		WithArgs("Private Groups").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(11)))

	id, err := repo.PrivateGroupsTypeID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
}

func TestNewTripTypeRepository_DefaultTTL(t *testing.T) {
	repo := NewTripTypeRepository(nil, nil, "Private Groups", 0)
	assert.Equal(t, DefaultTypeCacheTTL, repo.ttl)
}
