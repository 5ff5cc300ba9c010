package session

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ollxel/geotimer-bot/internal/domain"
)

func newTestStorage(t *testing.T) (Storage, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStorage(client, testLogger()), srv
}

func TestRedisStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	storage, _ := newTestStorage(t)

	sess := &Session{
		UserID: 42,
		Step:   StepAwaitingRadius,
		Name:   "Home",
		Center: domain.Point{Lat: 40.0, Lon: -75.0},
	}

	require.NoError(t, storage.Set(ctx, 42, sess))

	got, err := storage.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.UserID)
	assert.Equal(t, StepAwaitingRadius, got.Step)
	assert.Equal(t, "Home", got.Name)
	assert.Equal(t, domain.Point{Lat: 40.0, Lon: -75.0}, got.Center)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestRedisStorage_GetMissing(t *testing.T) {
	ctx := context.Background()
	storage, _ := newTestStorage(t)

	_, err := storage.Get(ctx, 999)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStorage_SessionHasNoTTL(t *testing.T) {
	ctx := context.Background()
	storage, srv := newTestStorage(t)

	require.NoError(t, storage.Set(ctx, 42, &Session{UserID: 42, Step: StepAwaitingName}))

	// Abandoned sessions persist until explicitly cleared.
	assert.Zero(t, srv.TTL("session:42"))
}

func TestRedisStorage_Clear(t *testing.T) {
	ctx := context.Background()
	storage, _ := newTestStorage(t)

	require.NoError(t, storage.Set(ctx, 42, &Session{UserID: 42, Step: StepAwaitingName}))
	require.NoError(t, storage.Clear(ctx, 42))

	_, err := storage.Get(ctx, 42)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStorage_GetAll(t *testing.T) {
	ctx := context.Background()
	storage, _ := newTestStorage(t)

	require.NoError(t, storage.Set(ctx, 1, &Session{UserID: 1, Step: StepAwaitingName}))
	require.NoError(t, storage.Set(ctx, 2, &Session{UserID: 2, Step: StepAwaitingRadius}))

	all, err := storage.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
