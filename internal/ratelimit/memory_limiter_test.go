package ratelimit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_Check(t *testing.T) {
	ctx := context.Background()
	limiter := NewMemoryLimiter(slog.New(slog.NewTextHandler(io.Discard, nil)))

	const limit = 3

	for i := 0; i < limit; i++ {
		result, err := limiter.Check(ctx, "user:42", limit, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	}

	result, err := limiter.Check(ctx, "user:42", limit, time.Minute)
	require.ErrorIs(t, err, ErrLimitExceeded)
	assert.False(t, result.Allowed)
	assert.Zero(t, result.Remaining)

	// A different key is unaffected.
	other, err := limiter.Check(ctx, "user:7", limit, time.Minute)
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}
