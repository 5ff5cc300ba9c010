package geocode

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNominatimResolver_Resolve(t *testing.T) {
	var lastQuery atomic.Value

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastQuery.Store(r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "geotimer-bot-test", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"40.0","lon":"-75.0","display_name":"Somewhere, PA"}]`))
	}))
	defer srv.Close()

	resolver := NewNominatimResolver(srv.URL, "geotimer-bot-test", time.Second, testLogger())

	point, err := resolver.Resolve(context.Background(), "123 Main St")
	require.NoError(t, err)
	assert.InDelta(t, 40.0, point.Lat, 1e-9)
	assert.InDelta(t, -75.0, point.Lon, 1e-9)
	assert.Equal(t, "123 Main St", lastQuery.Load())
}

func TestNominatimResolver_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	resolver := NewNominatimResolver(srv.URL, "", time.Second, testLogger())

	_, err := resolver.Resolve(context.Background(), "nowhere at all")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestNominatimResolver_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	resolver := NewNominatimResolver(srv.URL, "", time.Second, testLogger())

	_, err := resolver.Resolve(context.Background(), "anywhere")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}

func TestCachedResolver_HitSkipsUpstream(t *testing.T) {
	var calls atomic.Int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`[{"lat":"40.0","lon":"-75.0"}]`))
	}))
	defer srv.Close()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	upstream := NewNominatimResolver(srv.URL, "", time.Second, testLogger())
	cached := NewCachedResolver(upstream, client, time.Hour, testLogger())

	ctx := context.Background()

	first, err := cached.Resolve(ctx, "123 Main St")
	require.NoError(t, err)

	// Same address with different spacing and case hits the cache.
	second, err := cached.Resolve(ctx, "  123  main st ")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), calls.Load())
}

func TestCachedResolver_NotFoundNotCached(t *testing.T) {
	var calls atomic.Int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cached := NewCachedResolver(NewNominatimResolver(srv.URL, "", time.Second, testLogger()), client, time.Hour, testLogger())

	ctx := context.Background()
	_, err := cached.Resolve(ctx, "nowhere")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = cached.Resolve(ctx, "nowhere")
	require.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, int64(2), calls.Load())
}
