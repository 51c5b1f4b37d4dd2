package cache

import (
	"context"
	"time"
)

// Blacklist 记录已吊销的 refresh token。Refresh 轮换和 Revoke 登出时写入旧 token 的 jti，
// ttl 为该 token 的剩余有效期，过期后条目可以丢弃
type Blacklist interface {
	// Add ttl <= 0 的 token 已经失效，实现可以忽略
	Add(ctx context.Context, jti string, ttl time.Duration) error

	// Contains 为 true 时刷新请求按会话过期处理
	Contains(ctx context.Context, jti string) (bool, error)
}
