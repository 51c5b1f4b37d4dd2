package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/portfoliohub/core/auth/jwt"
	"github.com/kochabx/portfoliohub/errors"
	"github.com/kochabx/portfoliohub/transport/http/response"
)

// DefaultContextKey claims 在 request context 中的默认 key
const DefaultContextKey = "claims"

var (
	ErrTokenMissing = errors.Unauthorized("missing access token")
	ErrTokenInvalid = errors.Unauthorized("invalid access token")
)

// Authenticator 校验 token 并返回 claims
type Authenticator[C any] interface {
	Authenticate(ctx context.Context, token string) (C, error)
}

// AuthenticatorFunc 函数适配器
type AuthenticatorFunc[C any] func(ctx context.Context, token string) (C, error)

func (f AuthenticatorFunc[C]) Authenticate(ctx context.Context, token string) (C, error) {
	return f(ctx, token)
}

// TokenExtractor 从请求中取出 token
type TokenExtractor func(c *gin.Context) (string, error)

// AuthConfig 认证中间件配置
type AuthConfig[C any] struct {
	Authenticator  Authenticator[C]
	Extractor      TokenExtractor // 默认 access_token cookie，其次 Bearer
	ContextKey     string
	SkipPaths      []string
	SkipFunc       func(*gin.Context) bool
	ErrorHandler   func(c *gin.Context, err error)
	SuccessHandler func(c *gin.Context, claims C)
}

// Auth 创建认证中间件，claims 写入 request context
func Auth[C any](cfg AuthConfig[C]) gin.HandlerFunc {
	if cfg.Authenticator == nil {
		panic("middleware: Auth requires an Authenticator")
	}
	if cfg.Extractor == nil {
		cfg.Extractor = ChainExtractor(CookieExtractor("access_token"), BearerExtractor())
	}
	if cfg.ContextKey == "" {
		cfg.ContextKey = DefaultContextKey
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c *gin.Context, err error) {
			response.GinJSONE(c, err)
		}
	}
	matcher := NewPathMatcher(cfg.SkipPaths)

	return func(c *gin.Context) {
		if shouldSkip(c, matcher, cfg.SkipFunc) {
			c.Next()
			return
		}

		token, err := cfg.Extractor(c)
		if err != nil {
			cfg.ErrorHandler(c, err)
			return
		}

		claims, err := cfg.Authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			cfg.ErrorHandler(c, unauthorized(err))
			return
		}

		ctx := context.WithValue(c.Request.Context(), cfg.ContextKey, claims)
		c.Request = c.Request.WithContext(ctx)
		if cfg.SuccessHandler != nil {
			cfg.SuccessHandler(c, claims)
		}
		c.Next()
	}
}

// JWTAuthenticator 用 jwt.Authenticator 校验 access token
func JWTAuthenticator(a jwt.Authenticator) Authenticator[*jwt.UserClaims] {
	return AuthenticatorFunc[*jwt.UserClaims](a.Verify)
}

// GetClaims 读取 Auth 写入的 claims，key 缺省为 DefaultContextKey
func GetClaims[C any](ctx context.Context, key ...string) (C, bool) {
	k := DefaultContextKey
	if len(key) > 0 && key[0] != "" {
		k = key[0]
	}
	claims, ok := ctx.Value(k).(C)
	return claims, ok
}

// BearerExtractor Authorization: Bearer <token>
func BearerExtractor() TokenExtractor {
	return func(c *gin.Context) (string, error) {
		scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return "", ErrTokenMissing
		}
		return strings.TrimSpace(token), nil
	}
}

func HeaderExtractor(name string) TokenExtractor {
	return func(c *gin.Context) (string, error) {
		if v := c.GetHeader(name); v != "" {
			return v, nil
		}
		return "", ErrTokenMissing
	}
}

func QueryExtractor(name string) TokenExtractor {
	return func(c *gin.Context) (string, error) {
		if v := c.Query(name); v != "" {
			return v, nil
		}
		return "", ErrTokenMissing
	}
}

func CookieExtractor(name string) TokenExtractor {
	return func(c *gin.Context) (string, error) {
		v, err := c.Cookie(name)
		if err != nil || v == "" {
			return "", ErrTokenMissing
		}
		return v, nil
	}
}

// ChainExtractor 依次尝试，返回第一个成功的结果
func ChainExtractor(extractors ...TokenExtractor) TokenExtractor {
	return func(c *gin.Context) (string, error) {
		for _, e := range extractors {
			if token, err := e(c); err == nil {
				return token, nil
			}
		}
		return "", ErrTokenMissing
	}
}

// 非结构化错误统一为 401，保留原因
func unauthorized(err error) error {
	var ge *errors.Error
	if errors.As(err, &ge) {
		return ge
	}
	return ErrTokenInvalid.WithCause(err)
}
