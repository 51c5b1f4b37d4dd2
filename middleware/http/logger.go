package middleware

import (
	"bytes"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kochabx/portfoliohub/log"
)

const headerRequestID = "X-Request-Id"

// LoggerConfig 访问日志配置
type LoggerConfig struct {
	RequestBody bool // 请求体经 logger 的脱敏 writer 输出
	SkipPaths   []string
	SkipFunc    func(*gin.Context) bool
	Logger      *log.Logger
}

// Logger 访问日志，缺失时补齐 X-Request-Id 并回写到响应头
func Logger(cfgs ...LoggerConfig) gin.HandlerFunc {
	var cfg LoggerConfig
	if len(cfgs) > 0 {
		cfg = cfgs[0]
	}
	if cfg.Logger == nil {
		cfg.Logger = log.G.Component("access")
	}
	matcher := NewPathMatcher(cfg.SkipPaths)

	return func(c *gin.Context) {
		requestID := c.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
			c.Request.Header.Set(headerRequestID, requestID)
		}
		c.Header(headerRequestID, requestID)

		if shouldSkip(c, matcher, cfg.SkipFunc) {
			c.Next()
			return
		}

		start := time.Now()
		var body []byte
		if cfg.RequestBody && c.Request.Body != nil {
			if b, err := io.ReadAll(c.Request.Body); err == nil {
				body = b
				c.Request.Body = io.NopCloser(bytes.NewReader(b))
			}
		}

		c.Next()

		status := c.Writer.Status()
		event := cfg.Logger.Info()
		switch {
		case status >= 500:
			event = cfg.Logger.Error()
		case status >= 400:
			event = cfg.Logger.Warn()
		}
		event = event.
			Int("status", status).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("request_id", requestID).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP())

		if query := c.Request.URL.RawQuery; query != "" {
			event = event.Str("query", query)
		}
		if len(body) > 0 {
			event = event.Bytes("request_body", body)
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.ByType(gin.ErrorTypePrivate).String())
		}
		event.Send()
	}
}
