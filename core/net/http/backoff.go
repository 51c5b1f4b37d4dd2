package http

import (
	"context"
	"slices"
	"time"

	"github.com/kochabx/portfoliohub/core/retry"
	"github.com/kochabx/portfoliohub/errors"
	"github.com/kochabx/portfoliohub/log"
)

// BackoffConfig 配置 429 退避重试
type BackoffConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
	// SkipPaths 这些路径的 429 直接返回；刷新请求总是跳过
	SkipPaths []string
	// Sleep 测试时替换
	Sleep   retry.Sleeper
	Metrics Metrics
	Logger  *log.Logger
}

// DefaultBackoffConfig 3 次重试，1s 起步翻倍，上限 8s
func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   8 * time.Second,
		Multiplier: 2,
		SkipPaths:  []string{DefaultRefreshPath},
	}
}

// Backoff 对 429 响应做指数退避重试，重试耗尽后返回最后一次的 429 错误
func Backoff(cfg BackoffConfig) Interceptor {
	if cfg.Metrics == nil {
		cfg.Metrics = nopMetrics{}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.G.Component("backoff")
	}
	strategy := retry.NewExponentialBackoff(cfg.BaseDelay, cfg.MaxDelay, cfg.Multiplier, false)

	return func(next Handler) Handler {
		return func(ctx context.Context, req *Request) (*Response, error) {
			if req.refresh || slices.ContainsFunc(cfg.SkipPaths, func(p string) bool { return samePath(p, req.Path) }) {
				return next(ctx, req)
			}

			var last *Response
			resp, err := retry.Do(ctx, retry.Policy{
				MaxRetries: cfg.MaxRetries,
				Strategy:   strategy,
				Retryable:  errors.IsRateLimited,
				Sleep:      cfg.Sleep,
				OnRetry: func(attempt int, delay time.Duration, err error) {
					cfg.Metrics.BackoffRetry()
					cfg.Logger.Info().
						Str("path", req.Path).
						Int("attempt", attempt).
						Dur("delay", delay).
						Msg("rate limited, backing off")
				},
			}, func(ctx context.Context) (*Response, error) {
				resp, err := next(ctx, req)
				last = resp
				return resp, err
			})

			var rerr *retry.Error
			if errors.As(err, &rerr) {
				return last, rerr.LastError
			}
			if err != nil {
				return last, err
			}
			return resp, nil
		}
	}
}
