package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// AttemptLimiter throttles repeated failed validations of the same code.
type AttemptLimiter interface {
	// Allowed reports whether another attempt may proceed for the key.
	Allowed(ctx context.Context, key string) bool
	// RecordFailure counts a failed attempt against the key.
	RecordFailure(ctx context.Context, key string)
}

// redisLimiter counts failures per key with a TTL window. Redis outages never
// block validation; the limiter fails open.
type redisLimiter struct {
	client      *redis.Client
	logger      *zap.Logger
	maxAttempts int
	window      time.Duration
}

// NewRedisLimiter builds a redis-backed limiter.
func NewRedisLimiter(client *redis.Client, logger *zap.Logger, maxAttempts int, window time.Duration) AttemptLimiter {
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &redisLimiter{client: client, logger: logger, maxAttempts: maxAttempts, window: window}
}

func (l *redisLimiter) Allowed(ctx context.Context, key string) bool {
	if l.client == nil {
		return true
	}
	count, err := l.client.Get(ctx, l.redisKey(key)).Int()
	if err != nil && err != redis.Nil {
		l.logger.Warn("attempt limiter read failed", zap.Error(err))
		return true
	}
	return count < l.maxAttempts
}

func (l *redisLimiter) RecordFailure(ctx context.Context, key string) {
	if l.client == nil {
		return
	}
	redisKey := l.redisKey(key)
	pipe := l.client.TxPipeline()
	pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		l.logger.Warn("attempt limiter write failed", zap.Error(err))
	}
}

func (l *redisLimiter) redisKey(key string) string {
	return fmt.Sprintf("accesscode:attempts:%s", key)
}

// noopLimiter never throttles. Used in tests and when redis is disabled.
type noopLimiter struct{}

// NewNoopLimiter returns a limiter that always allows.
func NewNoopLimiter() AttemptLimiter {
	return noopLimiter{}
}

func (noopLimiter) Allowed(context.Context, string) bool  { return true }
func (noopLimiter) RecordFailure(context.Context, string) {}
