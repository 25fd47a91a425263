package testutil

import (
	"strconv"
	"testing"

	"github.com/Payphone-Digital/customer-service/config"
	"github.com/Payphone-Digital/customer-service/pkg/redis"
	"github.com/alicebob/miniredis/v2"
)

// NewRedis starts an in-process Redis server and returns it with a client
// connected to it. Both are closed when the test ends.
func NewRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	server := miniredis.RunT(t)
	port, err := strconv.Atoi(server.Port())
	if err != nil {
		t.Fatalf("parse miniredis port: %v", err)
	}

	cfg := config.Default()
	cfg.Redis.Enabled = true
	cfg.Redis.Host = server.Host()
	cfg.Redis.Port = port

	client, err := redis.NewClient(cfg)
	if err != nil {
		t.Fatalf("connect to miniredis: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})
	return server, client
}
