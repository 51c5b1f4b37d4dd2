package api

import (
	"net/http"
	"time"

	"github.com/kochabx/portfoliohub/config"
	"github.com/kochabx/portfoliohub/core/auth/jwt"
	"github.com/kochabx/portfoliohub/core/dedup"
	khttp "github.com/kochabx/portfoliohub/core/net/http"
	"github.com/kochabx/portfoliohub/core/retry"
	"github.com/kochabx/portfoliohub/core/validator"
	"github.com/kochabx/portfoliohub/log"
)

// Client PortfolioHub REST 客户端，请求经过会话刷新和 429 退避
type Client struct {
	http        *khttp.Client
	refresher   *khttp.Refresher
	gate        *dedup.Gate
	validate    validator.Validator
	refreshPath string
}

type options struct {
	events     khttp.Publisher
	gate       *dedup.Gate
	metrics    khttp.Metrics
	sleep      retry.Sleeper
	logger     *log.Logger
	httpClient *http.Client
	validate   validator.Validator
}

type Option func(*options)

// WithEvents 刷新失败时发布 AuthFailure
func WithEvents(p khttp.Publisher) Option {
	return func(o *options) { o.events = p }
}

// WithGate 共享冷却窗口，通常与 session store 使用同一个
func WithGate(g *dedup.Gate) Option {
	return func(o *options) { o.gate = g }
}

func WithMetrics(m khttp.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithSleeper 替换退避等待，测试使用
func WithSleeper(s retry.Sleeper) Option {
	return func(o *options) { o.sleep = s }
}

func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

func WithValidator(v validator.Validator) Option {
	return func(o *options) { o.validate = v }
}

// New 按配置组装客户端：cookie store、刷新拦截器（外层）、429 退避（内层）
func New(cs config.ClientSettings, bs config.BackoffSettings, opts ...Option) (*Client, error) {
	o := &options{
		logger:   log.G.Component("api"),
		validate: validator.Validate,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.gate == nil {
		o.gate = dedup.NewGate(cs.Cooldown)
	}

	cookies, err := khttp.NewCookieStore(cs.BaseURL,
		khttp.WithCookieNames(cs.Cookies.Names...),
		khttp.WithCookieDomains(cs.Cookies.Domains...),
		khttp.WithCookiePaths(cs.Cookies.Paths...),
	)
	if err != nil {
		return nil, err
	}

	refresher := khttp.NewRefresher(khttp.RefreshConfig{
		Path:         cs.RefreshPath,
		ExcludePaths: []string{PathLogin, PathRegister, PathLogout},
		Gate:         o.gate,
		Cookies:      cookies,
		Events:       o.events,
		Metrics:      o.metrics,
		Logger:       o.logger,
	})
	backoff := khttp.Backoff(khttp.BackoffConfig{
		MaxRetries: bs.MaxRetries,
		BaseDelay:  bs.BaseDelay,
		MaxDelay:   bs.MaxDelay,
		Multiplier: bs.Multiplier,
		SkipPaths:  []string{cs.RefreshPath},
		Sleep:      o.sleep,
		Metrics:    o.metrics,
		Logger:     o.logger,
	})

	clientOpts := []khttp.Option{
		khttp.WithCookieStore(cookies),
		khttp.WithLogger(o.logger),
		khttp.WithInterceptors(refresher.Intercept, backoff),
	}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, khttp.WithClient(o.httpClient))
	}
	clientOpts = append(clientOpts, khttp.WithTimeout(cs.Timeout))

	hc, err := khttp.New(cs.BaseURL, clientOpts...)
	if err != nil {
		return nil, err
	}

	return &Client{
		http:        hc,
		refresher:   refresher,
		gate:        o.gate,
		validate:    o.validate,
		refreshPath: cs.RefreshPath,
	}, nil
}

// HTTP 返回底层客户端
func (c *Client) HTTP() *khttp.Client {
	return c.http
}

// Refresher 返回会话刷新拦截器
func (c *Client) Refresher() *khttp.Refresher {
	return c.refresher
}

// Gate 返回刷新冷却窗口
func (c *Client) Gate() *dedup.Gate {
	return c.gate
}

// ClearSession 让本地会话 cookie 过期
func (c *Client) ClearSession() {
	c.http.Cookies().Clear()
}

// AccessTokenExpiry 读取 access_token cookie 的过期时间，不存在或无法解析时返回零值
func (c *Client) AccessTokenExpiry() time.Time {
	token, ok := c.http.Cookies().Get(khttp.CookieAccessToken, "")
	if !ok {
		return time.Time{}
	}
	return jwt.ExpiresAt(token)
}
