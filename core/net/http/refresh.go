package http

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/kochabx/portfoliohub/core/dedup"
	"github.com/kochabx/portfoliohub/errors"
	"github.com/kochabx/portfoliohub/log"
)

const DefaultRefreshPath = "/auth/refresh"

// AuthFailure 会话刷新最终失败时发布
type AuthFailure struct {
	Reason         error
	ShouldRedirect bool
}

// Publisher 接收 AuthFailure，session.Events 实现该接口
type Publisher interface {
	Publish(AuthFailure)
}

// RefreshConfig 配置会话刷新拦截器
type RefreshConfig struct {
	// Path 刷新接口路径，该路径自身不会触发刷新
	Path string
	// ExcludePaths 这些路径的 401/403 直接返回
	ExcludePaths []string
	// Gate 冷却窗口，与 session store 共享
	Gate    *dedup.Gate
	Cookies *CookieStore
	Events  Publisher
	Metrics Metrics
	Logger  *log.Logger
}

// Refresher 会话刷新拦截器。同一时刻最多一个刷新在途，其余失败请求排队等待结果
type Refresher struct {
	cfg RefreshConfig

	mu         sync.Mutex
	refreshing bool
	waiters    []chan error
}

// NewRefresher 创建刷新拦截器
func NewRefresher(cfg RefreshConfig) *Refresher {
	if cfg.Path == "" {
		cfg.Path = DefaultRefreshPath
	}
	if cfg.Gate == nil {
		cfg.Gate = dedup.NewGate(dedup.DefaultCooldown)
	}
	if cfg.Metrics == nil {
		cfg.Metrics = nopMetrics{}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.G.Component("refresh")
	}
	return &Refresher{cfg: cfg}
}

// Intercept 实现 Interceptor
func (r *Refresher) Intercept(next Handler) Handler {
	return func(ctx context.Context, req *Request) (*Response, error) {
		resp, err := next(ctx, req)
		if err == nil || !r.shouldRefresh(req, err) {
			return resp, err
		}
		return r.handleUnauthorized(ctx, req, next, resp, err)
	}
}

// Refreshing 当前是否有刷新在途
func (r *Refresher) Refreshing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refreshing
}

// Pending 当前排队等待的请求数
func (r *Refresher) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.waiters)
}

func (r *Refresher) shouldRefresh(req *Request, err error) bool {
	if !errors.IsUnauthenticated(err) || req.Retried || req.SkipRefresh || req.refresh {
		return false
	}
	return !r.isRefreshPath(req.Path) && !slices.ContainsFunc(r.cfg.ExcludePaths, func(p string) bool {
		return samePath(p, req.Path)
	})
}

func (r *Refresher) isRefreshPath(path string) bool {
	return samePath(r.cfg.Path, path)
}

func (r *Refresher) handleUnauthorized(ctx context.Context, req *Request, next Handler, resp *Response, cause error) (*Response, error) {
	r.mu.Lock()
	if r.refreshing {
		wait := make(chan error, 1)
		r.waiters = append(r.waiters, wait)
		r.mu.Unlock()

		r.cfg.Metrics.RefreshQueued()
		select {
		case err := <-wait:
			if err != nil {
				return nil, err
			}
			return r.replay(ctx, req, next)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if !r.cfg.Gate.ShouldProceed(false) {
		r.mu.Unlock()
		r.cfg.Logger.Debug().Str("path", req.Path).Time("until", r.cfg.Gate.Until()).Msg("refresh suppressed by cooldown")
		return resp, cause
	}
	r.refreshing = true
	r.mu.Unlock()

	if err := r.refresh(ctx, next); err != nil {
		return nil, err
	}
	return r.replay(ctx, req, next)
}

// refresh 调用刷新接口并结算等待队列
func (r *Refresher) refresh(ctx context.Context, next Handler) (err error) {
	defer func() {
		r.settle(err)
	}()

	// 刷新结果属于所有等待者，不随发起者取消
	_, err = next(context.WithoutCancel(ctx), NewRefreshRequest(r.cfg.Path))
	return err
}

func (r *Refresher) settle(err error) {
	r.mu.Lock()
	waiters := r.waiters
	r.waiters = nil
	r.refreshing = false
	r.mu.Unlock()

	if err == nil {
		r.cfg.Metrics.RefreshCompleted(RefreshSuccess)
		r.cfg.Logger.Debug().Int("waiters", len(waiters)).Msg("session refreshed")
		for _, w := range waiters {
			w <- nil
		}
		return
	}

	rateLimited := errors.IsRateLimited(err)
	if rateLimited {
		r.cfg.Metrics.RefreshCompleted(RefreshRateLimited)
	} else {
		r.cfg.Metrics.RefreshCompleted(RefreshFailure)
	}
	r.cfg.Logger.Warn().Err(err).Int("waiters", len(waiters)).Bool("rate_limited", rateLimited).Msg("session refresh failed")

	if r.cfg.Cookies != nil {
		r.cfg.Cookies.Clear()
	}
	for _, w := range waiters {
		w <- err
	}
	if !rateLimited && r.cfg.Events != nil {
		r.cfg.Events.Publish(AuthFailure{Reason: err, ShouldRedirect: true})
	}
}

func (r *Refresher) replay(ctx context.Context, req *Request, next Handler) (*Response, error) {
	retry := req.Clone()
	retry.Retried = true
	return next(ctx, retry)
}

func samePath(a, b string) bool {
	return strings.TrimSuffix(a, "/") == strings.TrimSuffix(b, "/")
}
