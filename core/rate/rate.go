package rate

import (
	"context"
	"time"
)

// Limiter 按 key 限流，key 通常是客户端 IP 或账号
type Limiter interface {
	Allow(key string) bool
	AllowN(key string, t time.Time, n int) bool
	Wait(ctx context.Context, key string) error
}
