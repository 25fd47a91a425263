package ctxutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWithRequest(t *testing.T) {
	ctx := WithRequest(context.Background(), "req-1", "10.0.0.1", "curl/8")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "10.0.0.1", GetClientIP(ctx))
	assert.Equal(t, "curl/8", GetUserAgent(ctx))
	assert.False(t, GetStartTime(ctx).IsZero())
}

func TestUserID(t *testing.T) {
	_, ok := GetUserID(context.Background())
	assert.False(t, ok)

	id, ok := GetUserID(WithUserID(context.Background(), 42))
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)
}

func TestNewContextWithRequest_KeepsStartTime(t *testing.T) {
	start := time.Now().Add(-time.Second)
	ctx := context.WithValue(context.Background(), StartTimeKey, start)

	ctx = NewContextWithRequest(ctx, "handler", "Login")

	assert.Equal(t, start, GetStartTime(ctx))
	assert.Equal(t, "handler", GetModule(ctx))
	assert.Equal(t, "Login", GetFunction(ctx))
	assert.GreaterOrEqual(t, GetDuration(ctx), time.Second)
}
