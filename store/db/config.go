package db

import (
	"strings"
	"time"
)

// Driver 数据库驱动类型
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverMySQL    Driver = "mysql"
)

func (d Driver) String() string {
	return string(d)
}

// LogLevel 对应 gorm logger.LogLevel
type LogLevel int

const (
	LogLevelSilent LogLevel = iota + 1
	LogLevelError
	LogLevelWarn
	LogLevelInfo
)

// ParseLogLevel 未知取值按 silent 处理
func ParseLogLevel(level string) LogLevel {
	switch strings.ToLower(level) {
	case "error":
		return LogLevelError
	case "warn":
		return LogLevelWarn
	case "info":
		return LogLevelInfo
	default:
		return LogLevelSilent
	}
}

// PoolConfig 连接池配置，零值由各驱动补齐
type PoolConfig struct {
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" default:"1h"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" default:"10m"`
}

func (p PoolConfig) withDefaults(idle, open int) *PoolConfig {
	if p.MaxIdleConns == 0 {
		p.MaxIdleConns = idle
	}
	if p.MaxOpenConns == 0 {
		p.MaxOpenConns = open
	}
	return &p
}

// DriverConfig 单个驱动的连接配置
type DriverConfig interface {
	Driver() Driver
	DSN() string
	Pool() *PoolConfig
	LogLevel() LogLevel
}

// Config 按 Driver 选择具体驱动配置；memory 表示不使用数据库
type Config struct {
	Driver   Driver         `mapstructure:"driver" default:"memory" validate:"oneof=memory sqlite postgres mysql"`
	Level    string         `mapstructure:"level" default:"silent" validate:"oneof=silent error warn info"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	MySQL    MySQLConfig    `mapstructure:"mysql"`
}

// Enabled 是否配置了真实数据库
func (c *Config) Enabled() bool {
	return c.Driver != "" && c.Driver != DriverMemory
}

// DriverConfig 返回选中的驱动配置
func (c *Config) DriverConfig() (DriverConfig, error) {
	var dc interface {
		DriverConfig
		setLevel(string)
	}
	switch c.Driver {
	case DriverSQLite:
		dc = &c.SQLite
	case DriverPostgres:
		dc = &c.Postgres
	case DriverMySQL:
		dc = &c.MySQL
	default:
		return nil, ErrUnsupportedDriver
	}
	dc.setLevel(c.Level)
	return dc, nil
}

type levelSetting struct {
	level string
}

func (l *levelSetting) setLevel(level string) { l.level = level }

func (l *levelSetting) LogLevel() LogLevel { return ParseLogLevel(l.level) }
