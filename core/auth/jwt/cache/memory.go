package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryBlacklist 进程内黑名单，条目在 ttl 到期后失效
type MemoryBlacklist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

type MemoryOption func(*MemoryBlacklist)

// WithClock 替换时钟，需与签发 token 的时钟一致
func WithClock(now func() time.Time) MemoryOption {
	return func(m *MemoryBlacklist) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMemoryBlacklist 创建进程内黑名单，过期条目由 Cleanup 回收
func NewMemoryBlacklist(opts ...MemoryOption) *MemoryBlacklist {
	m := &MemoryBlacklist{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MemoryBlacklist) Add(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[jti] = m.now().Add(ttl)
	return nil
}

// Cleanup 删除已过期的条目，返回删除数量
func (m *MemoryBlacklist) Cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for k, exp := range m.entries {
		if !exp.After(now) {
			delete(m.entries, k)
			removed++
		}
	}
	return removed
}

func (m *MemoryBlacklist) Contains(ctx context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	exp, ok := m.entries[jti]
	if !ok {
		return false, nil
	}
	if !exp.After(m.now()) {
		delete(m.entries, jti)
		return false, nil
	}
	return true, nil
}

// Len 当前条目数，包含尚未清理的过期条目
func (m *MemoryBlacklist) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
