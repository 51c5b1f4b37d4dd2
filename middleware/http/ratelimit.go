package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/portfoliohub/core/rate"
	"github.com/kochabx/portfoliohub/errors"
	"github.com/kochabx/portfoliohub/transport/http/response"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Limiter rate.Limiter
	// KeyFunc 默认按客户端 IP
	KeyFunc    func(*gin.Context) string
	RetryAfter int // 秒，写入 Retry-After
	SkipPaths  []string
	SkipFunc   func(*gin.Context) bool
}

// RateLimit 超限时返回 429 envelope
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limiter == nil {
		panic("middleware: RateLimit requires a Limiter")
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	retryAfter := strconv.Itoa(max(1, cfg.RetryAfter))
	matcher := NewPathMatcher(cfg.SkipPaths)

	return func(c *gin.Context) {
		if shouldSkip(c, matcher, cfg.SkipFunc) {
			c.Next()
			return
		}
		if !cfg.Limiter.Allow(cfg.KeyFunc(c)) {
			c.Header("Retry-After", retryAfter)
			response.GinJSONE(c, errors.TooManyRequests("too many requests, please try again later"))
			return
		}
		c.Next()
	}
}
