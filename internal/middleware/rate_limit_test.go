package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	ok, remaining, _ := rl.Allow("1.1.1.1")
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)

	now = now.Add(10 * time.Second)
	ok, remaining, _ = rl.Allow("1.1.1.1")
	assert.True(t, ok)
	assert.Equal(t, 0, remaining)

	ok, _, wait := rl.Allow("1.1.1.1")
	assert.False(t, ok)
	assert.Equal(t, 50*time.Second, wait)

	ok, _, _ = rl.Allow("2.2.2.2")
	assert.True(t, ok, "keys are limited independently")

	now = now.Add(51 * time.Second)
	ok, _, _ = rl.Allow("1.1.1.1")
	assert.True(t, ok, "oldest hit left the window")
}

func TestRateLimit_Middleware(t *testing.T) {
	engine := gin.New()
	engine.GET("/", RateLimit(1, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"detail":"Request was throttled."}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimit_DisabledWhenZero(t *testing.T) {
	engine := gin.New()
	engine.GET("/", RateLimit(0, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
