package cache

import (
	"context"
	"time"
)

// NoopBlacklist 空黑名单实现（用于不需要吊销的场景）
type NoopBlacklist struct{}

// NewNoopBlacklist 创建空黑名单
func NewNoopBlacklist() Blacklist {
	return &NoopBlacklist{}
}

func (n *NoopBlacklist) Add(ctx context.Context, jti string, ttl time.Duration) error {
	return nil
}

func (n *NoopBlacklist) Contains(ctx context.Context, jti string) (bool, error) {
	return false, nil
}
