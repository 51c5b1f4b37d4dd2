package config

import (
	"sync"

	"github.com/spf13/viper"

	"github.com/kochabx/portfoliohub/core/validator"
	"github.com/kochabx/portfoliohub/log"
)

const (
	DefaultFile      = "config.yaml"
	DefaultEnvPrefix = "PORTFOLIOHUB"
)

// Config loads a target struct and keeps it current
type Config struct {
	mu        sync.RWMutex
	viper     *viper.Viper
	validate  validator.Validator
	target    any
	loader    Loader
	name      string
	paths     []string
	envPrefix string
	optional  bool
	onChange  func()
}

// New creates a Config for target. Without WithLoader a FileLoader reading
// config.yaml from the working directory with PORTFOLIOHUB_* overrides is used.
func New(target any, opts ...Option) *Config {
	c := &Config{
		viper:     viper.New(),
		validate:  validator.Validate,
		target:    target,
		name:      DefaultFile,
		paths:     []string{"."},
		envPrefix: DefaultEnvPrefix,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.loader == nil {
		fl := NewFileLoader(c.name, c.paths, c.envPrefix, c.viper, c.validate)
		fl.optional = c.optional
		c.loader = fl
	}

	return c
}

// Load reads the configuration
func (c *Config) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loader.Load(c.target)
}

// Watch reloads the configuration whenever the source changes
func (c *Config) Watch() error {
	return c.loader.Watch(func() {
		log.Info().Msg("config change detected")

		if err := c.Load(); err != nil {
			log.Error().Err(err).Msg("failed to reload config after change")
			return
		}

		log.Info().Msg("config reloaded successfully")
		if c.onChange != nil {
			c.onChange()
		}
	})
}

// Read runs fn with the target under the read lock, so fn never observes a half reload
func (c *Config) Read(fn func(target any)) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn(c.target)
}

// GetViper returns the underlying viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.viper
}
