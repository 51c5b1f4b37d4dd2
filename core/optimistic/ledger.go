package optimistic

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrDuplicateID = errors.New("optimistic: operation id already pending")
	ErrNotFound    = errors.New("optimistic: operation not found")
)

// Ledger 记录已乐观应用但尚未确认的修改，按操作 id 回滚
type Ledger struct {
	mu      sync.Mutex
	pending map[string]func()
	order   []string
}

func NewLedger() *Ledger {
	return &Ledger{pending: make(map[string]func())}
}

// Apply 执行 apply 并以 id 登记 rollback。id 为空时生成 uuid
func (l *Ledger) Apply(id string, apply, rollback func()) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}

	l.mu.Lock()
	if _, ok := l.pending[id]; ok {
		l.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	if rollback == nil {
		rollback = func() {}
	}
	l.pending[id] = rollback
	l.order = append(l.order, id)
	l.mu.Unlock()

	if apply != nil {
		apply()
	}
	return id, nil
}

// Commit 确认修改，丢弃 rollback
func (l *Ledger) Commit(id string) error {
	_, err := l.take(id)
	return err
}

// Rollback 撤销修改
func (l *Ledger) Rollback(id string) error {
	rollback, err := l.take(id)
	if err != nil {
		return err
	}
	rollback()
	return nil
}

// RollbackAll 按登记的逆序撤销所有未确认修改，返回撤销的数量
func (l *Ledger) RollbackAll() int {
	l.mu.Lock()
	order := l.order
	pending := l.pending
	l.order = nil
	l.pending = make(map[string]func())
	l.mu.Unlock()

	for i := len(order) - 1; i >= 0; i-- {
		pending[order[i]]()
	}
	return len(order)
}

// Pending 未确认修改数量
func (l *Ledger) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// Run 乐观应用后调用 confirm，成功提交，失败回滚并返回 confirm 的错误
func (l *Ledger) Run(ctx context.Context, apply, rollback func(), confirm func(ctx context.Context) error) error {
	id, err := l.Apply("", apply, rollback)
	if err != nil {
		return err
	}

	if err := confirm(ctx); err != nil {
		_ = l.Rollback(id)
		return err
	}
	return l.Commit(id)
}

func (l *Ledger) take(id string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rollback, ok := l.pending[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(l.pending, id)
	for i, v := range l.order {
		if v == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	return rollback, nil
}
