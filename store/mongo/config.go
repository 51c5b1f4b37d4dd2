package mongo

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kochabx/portfoliohub/core/tag"
)

// Config URI 非空时优先使用，否则由 Host/Port/User/Password 拼接
type Config struct {
	Enabled     bool          `mapstructure:"enabled"`
	URI         string        `mapstructure:"uri"`
	Host        string        `mapstructure:"host" default:"localhost"`
	Port        int           `mapstructure:"port" default:"27017"`
	User        string        `mapstructure:"user"`
	Password    string        `mapstructure:"password"`
	Database    string        `mapstructure:"database" default:"portfoliohub"`
	MaxPoolSize uint64        `mapstructure:"max_pool_size" default:"10"`
	Timeout     time.Duration `mapstructure:"timeout" default:"3s"`
}

func (c *Config) Init() error {
	return tag.ApplyDefaults(c)
}

func (c *Config) uri() string {
	if c.URI != "" {
		return c.URI
	}
	u := url.URL{Scheme: "mongodb", Host: fmt.Sprintf("%s:%d", c.Host, c.Port), Path: "/"}
	if c.User != "" {
		u.User = url.UserPassword(c.User, c.Password)
	}
	return u.String()
}
