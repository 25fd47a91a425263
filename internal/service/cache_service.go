package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Payphone-Digital/customer-service/internal/constants"
	"github.com/Payphone-Digital/customer-service/internal/dto"
	"github.com/Payphone-Digital/customer-service/pkg/circuit"
	"github.com/Payphone-Digital/customer-service/pkg/logger"
	"github.com/Payphone-Digital/customer-service/pkg/redis"
	"go.uber.org/zap"
)

// CacheService is a best-effort read-through cache of customer
// representations. Failures are logged and treated as misses. Reads and
// writes go through a circuit breaker; invalidations are always sent.
type CacheService struct {
	redisClient *redis.Client
	breaker     *circuit.Breaker
	ttl         time.Duration
}

// NewCacheService creates a new cache service
func NewCacheService(redisClient *redis.Client, ttl time.Duration) *CacheService {
	if redisClient == nil {
		redisClient = redis.Disabled()
	}
	return &CacheService{
		redisClient: redisClient,
		breaker:     circuit.NewBreaker("redis", circuit.DefaultConfig(), logger.GetLogger()),
		ttl:         ttl,
	}
}

func customerKey(id uint) string {
	return fmt.Sprintf("%s%d", constants.CacheKeyCustomer, id)
}

func (s *CacheService) Enabled() bool {
	return s.redisClient.Enabled()
}

// GetCustomer returns the cached representation of customer id, if any.
func (s *CacheService) GetCustomer(ctx context.Context, id uint) (*dto.CustomerResponse, bool) {
	if !s.Enabled() {
		return nil, false
	}

	var resp dto.CustomerResponse
	var hit bool
	err := s.breaker.Execute(func() (err error) {
		hit, err = s.redisClient.GetJSON(ctx, customerKey(id), &resp)
		return err
	})
	if err != nil {
		logger.GetLogger().Warn("Failed to get cached customer",
			zap.Uint("customer_id", id),
			zap.Error(err),
		)
		return nil, false
	}
	if !hit {
		return nil, false
	}
	return &resp, true
}

func (s *CacheService) SetCustomer(ctx context.Context, resp *dto.CustomerResponse) {
	if !s.Enabled() {
		return
	}

	err := s.breaker.Execute(func() error {
		return s.redisClient.SetJSON(ctx, customerKey(resp.ID), resp, s.ttl)
	})
	if err != nil {
		logger.GetLogger().Warn("Failed to cache customer",
			zap.Uint("customer_id", resp.ID),
			zap.Error(err),
		)
	}
}

func (s *CacheService) InvalidateCustomer(ctx context.Context, id uint) {
	if err := s.redisClient.Delete(ctx, customerKey(id)); err != nil {
		logger.GetLogger().Warn("Failed to invalidate cached customer",
			zap.Uint("customer_id", id),
			zap.Error(err),
		)
	}
}

// Flush drops every cached customer and closes the breaker again.
func (s *CacheService) Flush(ctx context.Context) error {
	if err := s.redisClient.DeleteByPattern(ctx, constants.CacheKeyCustomer+"*"); err != nil {
		return err
	}
	s.breaker.Reset()
	return nil
}
