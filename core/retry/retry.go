package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// Strategy 计算第 n 次重试前的等待时间（n 从 0 开始）
type Strategy interface {
	NextRetry(retryCount int) time.Duration
}

// ExponentialBackoff 指数退避
// delay = min(BaseDelay * Multiplier^retryCount, MaxDelay)，Jitter 时附加 ±25% 抖动
type ExponentialBackoff struct {
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
	Jitter     bool
}

// NewExponentialBackoff 创建指数退避策略
func NewExponentialBackoff(baseDelay, maxDelay time.Duration, multiplier float64, jitter bool) *ExponentialBackoff {
	return &ExponentialBackoff{
		BaseDelay:  baseDelay,
		MaxDelay:   maxDelay,
		Multiplier: multiplier,
		Jitter:     jitter,
	}
}

// NextRetry 计算下次重试延迟
func (e *ExponentialBackoff) NextRetry(retryCount int) time.Duration {
	retryCount = max(retryCount, 0)

	delay := float64(e.BaseDelay) * math.Pow(e.Multiplier, float64(retryCount))
	if e.MaxDelay > 0 && delay > float64(e.MaxDelay) {
		delay = float64(e.MaxDelay)
	}
	if e.Jitter && delay > 0 {
		delay += delay * 0.25 * (rand.Float64()*2 - 1)
	}
	return time.Duration(max(delay, 0))
}

// FixedDelay 固定延迟
type FixedDelay struct {
	Delay time.Duration
}

// NextRetry 返回固定延迟
func (f *FixedDelay) NextRetry(int) time.Duration {
	return f.Delay
}

// Sleeper 等待 d 或 ctx 结束；测试中可替换为记录延迟的实现
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep 是默认 Sleeper
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Policy 描述一次带重试的调用
type Policy struct {
	MaxRetries int
	Strategy   Strategy
	// Retryable 判断错误是否值得重试；为 nil 时所有错误都重试
	Retryable func(error) bool
	// OnRetry 在每次等待前调用，attempt 从 1 开始
	OnRetry func(attempt int, delay time.Duration, err error)
	Sleep   Sleeper
}

// Error 所有重试耗尽后返回
type Error struct {
	Attempts  int
	LastError error
}

func (e *Error) Error() string {
	return fmt.Sprintf("retry: gave up after %d attempts: %v", e.Attempts, e.LastError)
}

func (e *Error) Unwrap() error {
	return e.LastError
}

// Do 执行 op，失败且可重试时按策略等待后重试，最多 MaxRetries 次
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	sleep := p.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	var zero T
	for attempt := 0; ; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return zero, err
		}
		if attempt >= p.MaxRetries {
			if p.MaxRetries == 0 {
				return zero, err
			}
			return zero, &Error{Attempts: attempt + 1, LastError: err}
		}

		delay := p.Strategy.NextRetry(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt+1, delay, err)
		}
		if serr := sleep(ctx, delay); serr != nil {
			return zero, serr
		}
	}
}
