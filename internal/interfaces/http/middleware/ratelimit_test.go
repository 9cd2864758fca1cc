package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	client.FlushDB(ctx)
	t.Cleanup(func() {
		client.FlushDB(ctx)
		client.Close()
	})
	return client
}

func performLimited(t *testing.T, limiter *RateLimiter) int {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.GET("/limited", limiter.Limit(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/limited", nil)
	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, req)
	return rr.Code
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	client := setupTestRedis(t)
	limiter := NewRateLimiter(client, 3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, performLimited(t, limiter), "request %d should pass", i+1)
	}
	assert.Equal(t, http.StatusTooManyRequests, performLimited(t, limiter))
}

func TestRateLimiter_RedisDownFailsOpen(t *testing.T) {
	// Points at a closed port so every command errors. Traffic must still flow.
	client := redis.NewClient(&redis.Options{
		Addr:        "localhost:1",
		DialTimeout: 100 * time.Millisecond,
	})
	t.Cleanup(func() { client.Close() })

	limiter := NewRateLimiter(client, 1, time.Minute)

	assert.Equal(t, http.StatusOK, performLimited(t, limiter))
	assert.Equal(t, http.StatusOK, performLimited(t, limiter))
}
