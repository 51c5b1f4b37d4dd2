package db

import (
	"fmt"
	"net/url"
	"time"
)

type MySQLConfig struct {
	Host       string        `mapstructure:"host" default:"localhost"`
	Port       int           `mapstructure:"port" default:"3306"`
	User       string        `mapstructure:"user" default:"root"`
	Password   string        `mapstructure:"password"`
	Database   string        `mapstructure:"database" default:"portfoliohub"`
	Charset    string        `mapstructure:"charset" default:"utf8mb4"`
	Collation  string        `mapstructure:"collation" default:"utf8mb4_unicode_ci"`
	Timeout    time.Duration `mapstructure:"timeout" default:"10s"`
	PoolConfig PoolConfig    `mapstructure:"pool"`

	levelSetting
}

func (c *MySQLConfig) Driver() Driver {
	return DriverMySQL
}

// DSN 固定 parseTime=true 与 UTC，时间字段按 time.Time 读写
func (c *MySQLConfig) DSN() string {
	q := url.Values{}
	q.Set("charset", c.Charset)
	q.Set("collation", c.Collation)
	q.Set("parseTime", "true")
	q.Set("loc", "UTC")
	q.Set("timeout", c.Timeout.String())
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s", c.User, c.Password, c.Host, c.Port, c.Database, q.Encode())
}

func (c *MySQLConfig) Pool() *PoolConfig {
	return c.PoolConfig.withDefaults(10, 50)
}
