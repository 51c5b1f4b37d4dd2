package rate

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const DefaultIdleTTL = time.Hour

type bucket struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// TokenBucketLimiter 每个 key 一个令牌桶。空闲桶由调用方定期 Cleanup 回收
type TokenBucketLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	limit    rate.Limit
	capacity int
	idleTTL  time.Duration
	now      func() time.Time
}

type Option func(*TokenBucketLimiter)

// WithIdleTTL 设置桶的空闲回收时间
func WithIdleTTL(d time.Duration) Option {
	return func(l *TokenBucketLimiter) {
		if d > 0 {
			l.idleTTL = d
		}
	}
}

// WithClock 替换时钟，测试使用
func WithClock(now func() time.Time) Option {
	return func(l *TokenBucketLimiter) {
		if now != nil {
			l.now = now
		}
	}
}

// NewTokenBucketLimiter capacity 为桶容量，perSecond 为每秒补充的令牌数
func NewTokenBucketLimiter(capacity int, perSecond float64, opts ...Option) *TokenBucketLimiter {
	l := &TokenBucketLimiter{
		buckets:  make(map[string]*bucket),
		limit:    rate.Limit(perSecond),
		capacity: max(capacity, 1),
		idleTTL:  DefaultIdleTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *TokenBucketLimiter) get(key string, t time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.capacity)}
		l.buckets[key] = b
	}
	b.lastAccess = t
	return b.limiter
}

func (l *TokenBucketLimiter) Allow(key string) bool {
	return l.AllowN(key, l.now(), 1)
}

func (l *TokenBucketLimiter) AllowN(key string, t time.Time, n int) bool {
	return l.get(key, t).AllowN(t, n)
}

func (l *TokenBucketLimiter) Wait(ctx context.Context, key string) error {
	return l.get(key, l.now()).Wait(ctx)
}

// Len 当前桶数量
func (l *TokenBucketLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Cleanup 删除空闲超过 idleTTL 的桶
func (l *TokenBucketLimiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	threshold := l.now().Add(-l.idleTTL)
	removed := 0
	for key, b := range l.buckets {
		if b.lastAccess.Before(threshold) {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

var _ Limiter = (*TokenBucketLimiter)(nil)
