// Package devserver 开发用 PortfolioHub 后端，默认内存存储，供本地开发与客户端集成测试使用
package devserver

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"golang.org/x/crypto/bcrypt"

	"github.com/kochabx/portfoliohub/api"
	"github.com/kochabx/portfoliohub/config"
	"github.com/kochabx/portfoliohub/core/auth/jwt"
	"github.com/kochabx/portfoliohub/core/auth/jwt/cache"
	"github.com/kochabx/portfoliohub/core/rate"
	"github.com/kochabx/portfoliohub/core/validator"
	"github.com/kochabx/portfoliohub/log"
	"github.com/kochabx/portfoliohub/metrics"
	middleware "github.com/kochabx/portfoliohub/middleware/http"
)

const (
	CookieAccessToken  = "access_token"
	CookieRefreshToken = "refresh_token"

	// 上传上限
	maxUploadSize = 10 << 20
)

type Server struct {
	cfg        config.ServerSettings
	auth       *jwt.BasicAuthenticator
	blacklist  cache.Blacklist
	repo       Repository
	blobs      BlobStore
	auditor    Auditor
	limiter    rate.Limiter
	validate   validator.Validator
	metrics    *metrics.HTTPServer
	logger     *log.Logger
	now        func() time.Time
	bcryptCost int
	engine     *gin.Engine
	cron       *cron.Cron
	sweepers   []sweepTarget
}

type Option func(*Server)

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithLimiter 替换登录、注册限流器，默认按 LoginRate/LoginBurst 构造
func WithLimiter(l rate.Limiter) Option {
	return func(s *Server) { s.limiter = l }
}

func WithHTTPMetrics(m *metrics.HTTPServer) Option {
	return func(s *Server) { s.metrics = m }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithBlacklist 多实例部署时使用 cache.RedisBlacklist 共享已吊销的 refresh token
func WithBlacklist(b cache.Blacklist) Option {
	return func(s *Server) { s.blacklist = b }
}

// WithRepository 替换默认的内存存储，例如 NewGormRepository
func WithRepository(r Repository) Option {
	return func(s *Server) { s.repo = r }
}

// WithBlobStore 上传内容的存储，默认保存在内存
func WithBlobStore(b BlobStore) Option {
	return func(s *Server) { s.blobs = b }
}

// WithAuditor 接收登录、刷新等审计事件，默认写入日志
func WithAuditor(a Auditor) Option {
	return func(s *Server) { s.auditor = a }
}

// WithBcryptCost 测试中使用 bcrypt.MinCost
func WithBcryptCost(cost int) Option {
	return func(s *Server) { s.bcryptCost = cost }
}

// New 创建后端并注册路由
func New(cfg config.ServerSettings, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:        cfg,
		validate:   validator.Validate,
		logger:     log.G.Component("devserver"),
		now:        time.Now,
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.blacklist == nil {
		s.blacklist = cache.NewMemoryBlacklist(cache.WithClock(s.now))
	}

	auth, err := jwt.New(&jwt.Config{
		Secret:          cfg.JWT.Secret,
		Issuer:          cfg.JWT.Issuer,
		AccessTokenTTL:  cfg.JWT.AccessTokenTTL,
		RefreshTokenTTL: cfg.JWT.RefreshTokenTTL,
	}, jwt.WithBlacklist(s.blacklist), jwt.WithClock(s.now))
	if err != nil {
		return nil, fmt.Errorf("devserver: %w", err)
	}
	s.auth = auth

	if s.limiter == nil {
		s.limiter = rate.NewTokenBucketLimiter(cfg.LoginBurst, cfg.LoginRate, rate.WithClock(s.now))
	}
	if s.repo == nil {
		s.repo = newMemoryRepository(s.now)
	}
	if s.blobs == nil {
		s.blobs = newMemoryBlobs()
	}
	if s.auditor == nil {
		s.auditor = logAuditor{logger: s.logger}
	}
	if err := s.startSweeper(); err != nil {
		return nil, err
	}
	s.engine = s.routes()
	return s, nil
}

// Handler 返回 gin 引擎，交给 transport/http.Server 挂载 /metrics 与 /health
func (s *Server) Handler() *gin.Engine {
	return s.engine
}

// CreateUser 创建账号。不做输入校验，注册接口在 bind 时已校验，预置的开发账号可以用短密码
func (s *Server) CreateUser(ctx context.Context, in api.RegisterInput) (api.User, error) {
	if err := ctx.Err(); err != nil {
		return api.User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return api.User{}, fmt.Errorf("hash password: %w", err)
	}
	return s.repo.CreateUser(ctx, in, hash)
}

// Close 停止定期清理并等待正在执行的清理结束
func (s *Server) Close() error {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	return nil
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.Recovery(middleware.RecoveryConfig{Logger: s.logger}),
		middleware.Logger(middleware.LoggerConfig{SkipPaths: []string{"/health", "/metrics"}, Logger: s.logger}),
		middleware.Cors(middleware.DefaultCorsConfig(s.cfg.AllowOrigins...)),
	)
	if s.metrics != nil {
		r.Use(middleware.Metrics(s.metrics))
	}

	base := r.Group(s.cfg.BasePath)

	limited := middleware.RateLimit(middleware.RateLimitConfig{Limiter: s.limiter, RetryAfter: 1})
	authGroup := base.Group("/auth")
	authGroup.POST("/register", limited, s.register)
	authGroup.POST("/login", limited, s.login)
	authGroup.POST("/refresh", s.refresh)
	authGroup.POST("/logout", s.logout)

	base.GET("/templates", s.listTemplates)
	base.GET("/billing/plans", s.listPlans)
	base.GET("/p/:username/:slug", s.publicPortfolio)
	base.GET("/media/:id/:filename", s.serveMedia)

	private := base.Group("", middleware.Auth(middleware.AuthConfig[*jwt.UserClaims]{
		Authenticator: middleware.JWTAuthenticator(s.auth),
	}))
	private.GET("/users/me", s.me)
	private.PUT("/users/me", s.updateMe)
	private.GET("/portfolios/me", s.myPortfolio)
	private.PUT("/portfolios/me", s.savePortfolio)
	private.POST("/portfolios/me/publish", s.publish)
	private.POST("/media", s.uploadMedia)
	private.GET("/media", s.listMedia)
	private.POST("/billing/subscribe", s.subscribe)

	return r
}
