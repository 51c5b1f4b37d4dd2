package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// CorsConfig CORS 配置
type CorsConfig struct {
	AllowOrigins     []string // 支持 "*" 与 "*.example.com"
	AllowMethods     []string
	AllowHeaders     []string
	AllowCredentials bool
	ExposeHeaders    []string
	MaxAge           int // 秒
	SkipPaths        []string
	SkipFunc         func(*gin.Context) bool
}

// DefaultCorsConfig 前端通过 cookie 鉴权，默认允许凭证，源需显式列出
func DefaultCorsConfig(origins ...string) CorsConfig {
	return CorsConfig{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", headerRequestID},
		AllowCredentials: true,
		ExposeHeaders:    []string{headerRequestID, "Retry-After"},
		MaxAge:           43200,
	}
}

// Cors 创建 CORS 中间件
func Cors(cfg CorsConfig) gin.HandlerFunc {
	allowAll := slices.Contains(cfg.AllowOrigins, "*")
	methods := strings.Join(cfg.AllowMethods, ", ")
	headers := strings.Join(cfg.AllowHeaders, ", ")
	expose := strings.Join(cfg.ExposeHeaders, ", ")
	maxAge := strconv.Itoa(cfg.MaxAge)
	matcher := NewPathMatcher(cfg.SkipPaths)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" || shouldSkip(c, matcher, cfg.SkipFunc) {
			c.Next()
			return
		}
		if !allowAll && !originAllowed(origin, cfg.AllowOrigins) {
			c.Next()
			return
		}

		h := c.Writer.Header()
		// 携带凭证时不能回 "*"
		if allowAll && !cfg.AllowCredentials {
			h.Set("Access-Control-Allow-Origin", "*")
		} else {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
		}
		if cfg.AllowCredentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}
		if expose != "" {
			h.Set("Access-Control-Expose-Headers", expose)
		}

		if c.Request.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)
			h.Set("Access-Control-Max-Age", maxAge)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func originAllowed(origin string, allowed []string) bool {
	for _, a := range allowed {
		if a == origin {
			return true
		}
		if suffix, ok := strings.CutPrefix(a, "*"); ok && strings.HasPrefix(suffix, ".") && strings.HasSuffix(origin, suffix) {
			return true
		}
	}
	return false
}
