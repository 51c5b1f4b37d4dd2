package jwt

import (
	"time"

	"github.com/kochabx/portfoliohub/core/auth/jwt/cache"
)

// Option 配置选项
type Option func(*BasicAuthenticator)

// WithBlacklist 设置 refresh token 黑名单，轮换时旧 token 写入其中
func WithBlacklist(b cache.Blacklist) Option {
	return func(a *BasicAuthenticator) {
		if b != nil {
			a.blacklist = b
		}
	}
}

// WithClock 替换时钟，测试使用
func WithClock(now func() time.Time) Option {
	return func(a *BasicAuthenticator) {
		if now != nil {
			a.generator.now = now
		}
	}
}
