package config

import (
	"github.com/spf13/viper"

	"github.com/kochabx/portfoliohub/core/validator"
)

// Option configures a Config
type Option func(*Config)

// WithViper sets a custom viper instance
func WithViper(v *viper.Viper) Option {
	return func(c *Config) {
		c.viper = v
	}
}

// WithValidator sets a custom validator
func WithValidator(v validator.Validator) Option {
	return func(c *Config) {
		c.validate = v
	}
}

// WithLoader replaces the default file loader
func WithLoader(loader Loader) Option {
	return func(c *Config) {
		c.loader = loader
	}
}

// WithFile sets the config file name and search paths
func WithFile(name string, paths ...string) Option {
	return func(c *Config) {
		c.name = name
		if len(paths) > 0 {
			c.paths = paths
		}
	}
}

// WithEnvPrefix sets the prefix for environment overrides
func WithEnvPrefix(prefix string) Option {
	return func(c *Config) {
		c.envPrefix = prefix
	}
}

// WithOptionalFile lets Load succeed on defaults and env alone when no file exists
func WithOptionalFile() Option {
	return func(c *Config) {
		c.optional = true
	}
}

// WithOnChange registers a callback run after a successful hot reload
func WithOnChange(fn func()) Option {
	return func(c *Config) {
		c.onChange = fn
	}
}
