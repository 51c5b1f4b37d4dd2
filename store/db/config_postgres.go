package db

import (
	"fmt"
	"time"
)

type PostgresConfig struct {
	Host           string        `mapstructure:"host" default:"localhost"`
	Port           int           `mapstructure:"port" default:"5432"`
	User           string        `mapstructure:"user" default:"postgres"`
	Password       string        `mapstructure:"password"`
	Database       string        `mapstructure:"database" default:"portfoliohub"`
	SSLMode        string        `mapstructure:"sslmode" default:"disable"`
	TimeZone       string        `mapstructure:"timezone" default:"UTC"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" default:"10s"`
	PoolConfig     PoolConfig    `mapstructure:"pool"`

	levelSetting
}

func (c *PostgresConfig) Driver() Driver {
	return DriverPostgres
}

func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s connect_timeout=%d",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode, c.TimeZone, int(c.ConnectTimeout.Seconds()))
}

func (c *PostgresConfig) Pool() *PoolConfig {
	return c.PoolConfig.withDefaults(10, 50)
}
