package config

import (
	"time"

	"github.com/kochabx/portfoliohub/log"
	"github.com/kochabx/portfoliohub/store/db"
	"github.com/kochabx/portfoliohub/store/kafka"
	"github.com/kochabx/portfoliohub/store/mongo"
	"github.com/kochabx/portfoliohub/store/oss/minio"
	"github.com/kochabx/portfoliohub/store/redis"
)

// Settings is the full PortfolioHub configuration file
type Settings struct {
	Client  ClientSettings  `mapstructure:"client"`
	Backoff BackoffSettings `mapstructure:"backoff"`
	Log     log.Config      `mapstructure:"log"`
	Server  ServerSettings  `mapstructure:"server"`
}

// ClientSettings configures the authenticated API client
type ClientSettings struct {
	BaseURL     string         `mapstructure:"base_url" default:"http://localhost:8080/api" validate:"required,url"`
	Timeout     time.Duration  `mapstructure:"timeout" default:"15s" validate:"gt=0"`
	RefreshPath string         `mapstructure:"refresh_path" default:"/auth/refresh" validate:"startswith=/"`
	Cooldown    time.Duration  `mapstructure:"cooldown" default:"5s" validate:"gte=0"`
	Cookies     CookieSettings `mapstructure:"cookies"`
}

// CookieSettings lists where session cookies may live so logout can expire every copy
type CookieSettings struct {
	Names   []string `mapstructure:"names" default:"access_token,refresh_token" validate:"min=1"`
	Domains []string `mapstructure:"domains"`
	Paths   []string `mapstructure:"paths" default:"/,/api,/auth"`
}

// BackoffSettings configures 429 retries
type BackoffSettings struct {
	MaxRetries int           `mapstructure:"max_retries" default:"3" validate:"gte=0,lte=10"`
	BaseDelay  time.Duration `mapstructure:"base_delay" default:"1s" validate:"gt=0"`
	MaxDelay   time.Duration `mapstructure:"max_delay" default:"8s" validate:"gtefield=BaseDelay"`
	Multiplier float64       `mapstructure:"multiplier" default:"2" validate:"gt=1"`
}

// ServerSettings configures the development backend
type ServerSettings struct {
	Addr       string        `mapstructure:"addr" default:":8080" validate:"required"`
	BasePath   string        `mapstructure:"base_path" default:"/api"`
	JWT        JWTSettings   `mapstructure:"jwt"`
	LoginRate  float64       `mapstructure:"login_rate" default:"1" validate:"gt=0"`
	LoginBurst int           `mapstructure:"login_burst" default:"5" validate:"gt=0"`
	Shutdown   time.Duration `mapstructure:"shutdown" default:"10s"`
	Metrics    bool          `mapstructure:"metrics" default:"true"`
	// Sweep 内存限流器与黑名单的清理周期，cron 表达式
	Sweep string `mapstructure:"sweep" default:"@every 5m"`
	// AllowOrigins 允许携带 cookie 的前端源
	AllowOrigins []string `mapstructure:"allow_origins" default:"http://localhost:5173"`
	// Database driver 为 memory 时数据只保存在进程内
	Database db.Config `mapstructure:"database"`
	// Mongo 启用后优先于 Database
	Mongo mongo.Config `mapstructure:"mongo"`
	// Redis 配置 addrs 后 refresh token 黑名单存入 redis
	Redis redis.Config `mapstructure:"redis"`
	// Media 配置 endpoint 后上传内容写入 minio/S3
	Media minio.Config `mapstructure:"media"`
	// Audit 配置 brokers 后认证审计事件发布到 kafka
	Audit kafka.Config `mapstructure:"audit"`
}

// JWTSettings configures token signing on the development backend
type JWTSettings struct {
	Secret          string        `mapstructure:"secret" validate:"required,min=16"`
	Issuer          string        `mapstructure:"issuer" default:"portfoliohub"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl" default:"15m" validate:"gt=0"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl" default:"168h" validate:"gtfield=AccessTokenTTL"`
}
