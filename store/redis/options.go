package redis

import (
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/kochabx/portfoliohub/log"
)

type Option func(*clientOptions)

type clientOptions struct {
	hooks           []redis.Hook
	tracing         bool
	tracingOpts     []redisotel.TracingOption
	debug           bool
	slowQueryThresh time.Duration
	logger          *log.Logger
}

func WithHooks(hooks ...redis.Hook) Option {
	return func(o *clientOptions) {
		o.hooks = append(o.hooks, hooks...)
	}
}

// WithTracing 通过 redisotel 接入 OpenTelemetry 追踪
func WithTracing(opts ...redisotel.TracingOption) Option {
	return func(o *clientOptions) {
		o.tracing = true
		o.tracingOpts = opts
	}
}

// WithDebug 逐条记录命令；slow 大于 0 时超过阈值记为 warn
func WithDebug(slow time.Duration) Option {
	return func(o *clientOptions) {
		o.debug = true
		o.slowQueryThresh = slow
	}
}

func WithLogger(l *log.Logger) Option {
	return func(o *clientOptions) {
		o.logger = l
	}
}
