package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBlacklist 多实例共享的黑名单，条目依赖 key 过期自动清理
type RedisBlacklist struct {
	client redis.Cmdable
	prefix string
}

// NewRedisBlacklist prefix 通常为 "<app>:jwt:blacklist:"
func NewRedisBlacklist(client redis.Cmdable, prefix string) *RedisBlacklist {
	return &RedisBlacklist{client: client, prefix: prefix}
}

func (r *RedisBlacklist) Add(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, r.prefix+jti, 1, ttl).Err()
}

func (r *RedisBlacklist) Contains(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, r.prefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
