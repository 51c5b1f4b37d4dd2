package kafka

import (
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/kochabx/portfoliohub/core/tag"
)

// Config Brokers 为空表示不启用
type Config struct {
	Brokers  []string `mapstructure:"brokers"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	Topic    string   `mapstructure:"topic" default:"portfoliohub.auth"`

	// Balancer hash 时同一 key 落在同一分区
	Balancer               string        `mapstructure:"balancer" default:"hash" validate:"omitempty,oneof=hash least_bytes"`
	AllowAutoTopicCreation bool          `mapstructure:"allow_auto_topic_creation" default:"true"`
	Async                  bool          `mapstructure:"async"`
	BatchTimeout           time.Duration `mapstructure:"batch_timeout" default:"50ms"`
	WriteTimeout           time.Duration `mapstructure:"write_timeout" default:"5s"`
}

func (c *Config) Enabled() bool {
	return len(c.Brokers) > 0
}

func (c *Config) ApplyDefaults() error {
	return tag.ApplyDefaults(c)
}

func (c *Config) balancer() kafka.Balancer {
	if c.Balancer == "least_bytes" {
		return &kafka.LeastBytes{}
	}
	return &kafka.Hash{}
}
