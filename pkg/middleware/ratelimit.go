package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/StefanoVidesott/WannaWork-App/pkg/config"
	"github.com/StefanoVidesott/WannaWork-App/pkg/ratelimit"
	"github.com/gin-gonic/gin"
)

// RateLimitMiddleware creates a Gin middleware for rate limiting
func RateLimitMiddleware(limiter ratelimit.RateLimiter, cfg config.RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		// 已认证请求按操作者限流，否则按 IP
		key := fmt.Sprintf("ratelimit:ip:%s", c.ClientIP())
		if actorID, _ := Actor(c); actorID != 0 {
			key = fmt.Sprintf("ratelimit:actor:%d", actorID)
		}

		limit := ratelimit.Limit{
			Rate:   cfg.Rate,
			Period: time.Duration(cfg.Period) * time.Second,
			Burst:  cfg.Burst,
		}

		res, err := limiter.Allow(c.Request.Context(), key, limit)
		if err != nil {
			// Fail open if rate limiter fails
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(int64(res.ResetAfter/time.Second), 10))

		if !res.Allowed {
			c.Header("Retry-After", strconv.FormatInt(int64(res.RetryAfter/time.Second), 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "too many requests",
			})
			return
		}

		c.Next()
	}
}
