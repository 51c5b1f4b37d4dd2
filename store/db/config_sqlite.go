package db

import (
	"net/url"
	"strconv"
)

// SQLiteConfig 单文件数据库，适合本地开发
type SQLiteConfig struct {
	Path        string     `mapstructure:"path" default:"portfoliohub.db"`
	JournalMode string     `mapstructure:"journal_mode" default:"WAL"`
	BusyTimeout int        `mapstructure:"busy_timeout" default:"5000"`
	ForeignKeys bool       `mapstructure:"foreign_keys" default:"true"`
	PoolConfig  PoolConfig `mapstructure:"pool"`

	levelSetting
}

func (c *SQLiteConfig) Driver() Driver {
	return DriverSQLite
}

func (c *SQLiteConfig) DSN() string {
	q := url.Values{}
	q.Set("_journal_mode", c.JournalMode)
	q.Set("_busy_timeout", strconv.Itoa(c.BusyTimeout))
	q.Set("_foreign_keys", strconv.FormatBool(c.ForeignKeys))
	return "file:" + c.Path + "?" + q.Encode()
}

// Pool 写入串行化，默认单连接
func (c *SQLiteConfig) Pool() *PoolConfig {
	return c.PoolConfig.withDefaults(1, 1)
}
