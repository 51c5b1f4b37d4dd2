package redis

import (
	"time"

	"github.com/kochabx/portfoliohub/core/tag"
)

// Config 单机、集群、哨兵共用一份配置。Addrs 为空表示不启用 redis
type Config struct {
	Addrs      []string `mapstructure:"addrs"`
	MasterName string   `mapstructure:"master_name"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	DB         int      `mapstructure:"db"`
	Protocol   int      `mapstructure:"protocol" default:"3"`

	DialTimeout  time.Duration `mapstructure:"dial_timeout" default:"5s"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" default:"3s"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" default:"3s"`

	// PoolSize 0 时由 go-redis 按 GOMAXPROCS 决定
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	MaxIdleTime  time.Duration `mapstructure:"max_idle_time" default:"5m"`
	MaxRetries   int           `mapstructure:"max_retries"`

	// KeyPrefix 所有业务 key 的前缀
	KeyPrefix string `mapstructure:"key_prefix" default:"portfoliohub:"`
}

func (c *Config) ApplyDefaults() error {
	return tag.ApplyDefaults(c)
}

// Single 单机配置
func Single(addr string) *Config {
	return &Config{Addrs: []string{addr}}
}

func (c *Config) Enabled() bool {
	return len(c.Addrs) > 0
}

func (c *Config) Validate() error {
	if len(c.Addrs) == 0 {
		return ErrEmptyAddrs
	}
	if c.DialTimeout < 0 || c.ReadTimeout < 0 || c.WriteTimeout < 0 {
		return ErrInvalidTimeout
	}
	return nil
}

func (c *Config) mode() string {
	switch {
	case c.MasterName != "":
		return "sentinel"
	case len(c.Addrs) > 1:
		return "cluster"
	default:
		return "single"
	}
}
