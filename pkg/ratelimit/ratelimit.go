// Package ratelimit 基于 Redis 的请求限流，用于保护投递等写入端点
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
)

// RateLimiter 限流器接口
type RateLimiter interface {
	// Allow 判断指定键在给定规则下是否放行
	Allow(ctx context.Context, key string, limit Limit) (*Result, error)
}

// Limit 限流规则：每 Period 允许 Rate 次，Burst 为突发容量
type Limit struct {
	Rate   int
	Period time.Duration
	Burst  int
}

// Result 单次限流判定结果
type Result struct {
	// Allowed 是否放行
	Allowed bool
	// Remaining 当前周期剩余额度
	Remaining int
	// ResetAfter 额度完全恢复所需时间
	ResetAfter time.Duration
	// RetryAfter 被拒绝时的建议重试间隔
	RetryAfter time.Duration
}

// RedisRateLimiter 基于 redis_rate（GCRA 算法）的限流器实现。
// 多实例共享同一 Redis 时限流额度全局生效。
type RedisRateLimiter struct {
	limiter *redis_rate.Limiter
}

// NewRedisRateLimiter 创建 Redis 限流器
func NewRedisRateLimiter(rdb *redis.Client) *RedisRateLimiter {
	return &RedisRateLimiter{
		limiter: redis_rate.NewLimiter(rdb),
	}
}

// Allow 判断是否放行。Burst 未配置时取 Rate 作为突发容量。
func (r *RedisRateLimiter) Allow(ctx context.Context, key string, limit Limit) (*Result, error) {
	burst := limit.Burst
	if burst <= 0 {
		burst = limit.Rate
	}

	res, err := r.limiter.Allow(ctx, key, redis_rate.Limit{
		Rate:   limit.Rate,
		Period: limit.Period,
		Burst:  burst,
	})
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}

	return &Result{
		Allowed:    res.Allowed > 0,
		Remaining:  res.Remaining,
		ResetAfter: res.ResetAfter,
		RetryAfter: res.RetryAfter,
	}, nil
}
