package ratelimit_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/intelsleuth/infrastructure/logger"
	"github.com/jonesrussell/intelsleuth/internal/ratelimit"
)

const testLimit = 3

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisLimiter_FixedWindow(t *testing.T) {
	t.Parallel()

	mr, client := newRedis(t)
	l := ratelimit.NewRedisLimiter(client, testLimit, time.Minute)
	ctx := context.Background()

	for i := 0; i < testLimit; i++ {
		ok, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i)
	}
	ok, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = l.Allow(ctx, "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, ok, "other clients have their own window")

	for _, key := range mr.Keys() {
		assert.Positive(t, mr.TTL(key))
	}
}

func TestRedisLimiter_ErrorWhenRedisDown(t *testing.T) {
	t.Parallel()

	mr, client := newRedis(t)
	mr.Close()

	_, err := ratelimit.NewRedisLimiter(client, testLimit, time.Minute).Allow(context.Background(), "k")
	assert.Error(t, err)
}

func TestMemoryLimiter(t *testing.T) {
	t.Parallel()

	l := ratelimit.NewMemoryLimiter(testLimit, time.Hour)
	ctx := context.Background()

	for i := 0; i < testLimit; i++ {
		ok, _ := l.Allow(ctx, "a")
		assert.True(t, ok)
	}
	ok, _ := l.Allow(ctx, "a")
	assert.False(t, ok)
	ok, _ = l.Allow(ctx, "b")
	assert.True(t, ok)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limited := 0
	r := gin.New()
	r.Use(ratelimit.Middleware(ratelimit.NewMemoryLimiter(1, time.Hour), logger.NewNop(), func() { limited++ }))
	r.GET("/api/search", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	codes := make([]int, 2)
	for i := range codes {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/search", http.NoBody)
		req.RemoteAddr = "1.2.3.4:1234"
		r.ServeHTTP(w, req)
		codes[i] = w.Code
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, 1, limited)
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, error) {
	return false, assert.AnError
}

func TestMiddleware_FailsOpen(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(ratelimit.Middleware(failingLimiter{}, logger.NewNop(), nil))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	assert.Equal(t, http.StatusOK, w.Code)
}
