package idempotency

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisManager_Seen(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	mgr := NewRedisManager(client, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	seen, err := mgr.Seen(ctx, "100500")
	require.NoError(t, err)
	assert.False(t, seen)

	seen, err = mgr.Seen(ctx, "100500")
	require.NoError(t, err)
	assert.True(t, seen)

	// A different update id is independent.
	seen, err = mgr.Seen(ctx, "100501")
	require.NoError(t, err)
	assert.False(t, seen)
}
