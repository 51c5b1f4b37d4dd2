package minio

import (
	"errors"
	"time"

	"github.com/kochabx/portfoliohub/core/tag"
)

// Config 对象存储配置，Endpoint 为空表示不启用
type Config struct {
	Endpoint        string        `mapstructure:"endpoint"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	UseSSL          bool          `mapstructure:"use_ssl"`
	Region          string        `mapstructure:"region"`
	Bucket          string        `mapstructure:"bucket" default:"portfoliohub-media"`
	PresignExpiry   time.Duration `mapstructure:"presign_expiry" default:"1h"`
}

func (c *Config) Enabled() bool {
	return c.Endpoint != ""
}

func (c *Config) Validate() error {
	switch {
	case c.Endpoint == "":
		return errors.New("minio: endpoint cannot be empty")
	case c.AccessKeyID == "" || c.SecretAccessKey == "":
		return errors.New("minio: credentials cannot be empty")
	case c.Bucket == "":
		return ErrEmptyBucketName
	}
	return nil
}

func (c *Config) applyDefaults() error {
	return tag.ApplyDefaults(c)
}
