package db

import (
	"time"

	"gorm.io/gorm"

	"github.com/kochabx/portfoliohub/log"
)

type Option func(*clientOptions)

type clientOptions struct {
	logger          *log.Logger
	connectTimeout  time.Duration
	slowQueryThresh time.Duration
	gormConfig      *gorm.Config
	models          []any
}

func defaultOptions() *clientOptions {
	return &clientOptions{
		connectTimeout: 10 * time.Second,
	}
}

func WithLogger(l *log.Logger) Option {
	return func(o *clientOptions) {
		o.logger = l
	}
}

func WithConnectTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		if d > 0 {
			o.connectTimeout = d
		}
	}
}

// WithSlowQuery 超过阈值的 SQL 记为 warn，0 关闭
func WithSlowQuery(threshold time.Duration) Option {
	return func(o *clientOptions) {
		o.slowQueryThresh = threshold
	}
}

// WithGormConfig 完全替换默认 gorm.Config
func WithGormConfig(cfg *gorm.Config) Option {
	return func(o *clientOptions) {
		o.gormConfig = cfg
	}
}

// WithAutoMigrate 连接成功后迁移这些模型
func WithAutoMigrate(models ...any) Option {
	return func(o *clientOptions) {
		o.models = append(o.models, models...)
	}
}
