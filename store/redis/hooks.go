package redis

import (
	"context"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kochabx/portfoliohub/log"
)

// DebugHook 记录每条命令，超过阈值记为慢查询
type DebugHook struct {
	logger *log.Logger
	slow   time.Duration
}

func NewDebugHook(logger *log.Logger, slow time.Duration) *DebugHook {
	return &DebugHook{logger: logger, slow: slow}
}

func (h *DebugHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		start := time.Now()
		conn, err := next(ctx, network, addr)
		if err != nil {
			h.logger.Error().Err(err).Str("addr", addr).Dur("duration", time.Since(start)).Msg("redis dial failed")
		}
		return conn, err
	}
}

func (h *DebugHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		h.observe(time.Since(start), err, cmd.FullName(), 1)
		return err
	}
}

func (h *DebugHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		h.observe(time.Since(start), err, "pipeline", len(cmds))
		return err
	}
}

func (h *DebugHook) observe(d time.Duration, err error, name string, n int) {
	switch {
	case err != nil && err != redis.Nil:
		h.logger.Warn().Err(err).Str("cmd", name).Int("count", n).Dur("duration", d).Msg("redis command failed")
	case h.slow > 0 && d > h.slow:
		h.logger.Warn().Str("cmd", name).Int("count", n).Dur("duration", d).Dur("threshold", h.slow).Msg("slow redis command")
	default:
		h.logger.Debug().Str("cmd", name).Int("count", n).Dur("duration", d).Msg("redis command")
	}
}
