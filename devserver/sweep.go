package devserver

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/kochabx/portfoliohub/log"
)

const defaultSweep = "@every 5m"

// cleaner 需要定期回收过期条目的内存结构，rate.TokenBucketLimiter 与 cache.MemoryBlacklist 实现
type cleaner interface {
	Cleanup() int
}

type sweepTarget struct {
	name string
	c    cleaner
}

// startSweeper 按 cfg.Sweep 调度内存限流器与黑名单的清理，redis 等外部实现不需要
func (s *Server) startSweeper() error {
	spec := s.cfg.Sweep
	if spec == "" {
		spec = defaultSweep
	}

	for _, t := range []struct {
		name   string
		target any
	}{
		{"login_limiter", s.limiter},
		{"blacklist", s.blacklist},
	} {
		if c, ok := t.target.(cleaner); ok {
			s.sweepers = append(s.sweepers, sweepTarget{name: t.name, c: c})
		}
	}
	if len(s.sweepers) == 0 {
		return nil
	}

	logger := cronLogger{s.logger}
	s.cron = cron.New(cron.WithLogger(logger), cron.WithChain(cron.Recover(logger)))
	for _, t := range s.sweepers {
		if _, err := s.cron.AddFunc(spec, func() { s.sweep(t) }); err != nil {
			return fmt.Errorf("devserver: sweep schedule %q: %w", spec, err)
		}
	}
	s.cron.Start()
	return nil
}

func (s *Server) sweep(t sweepTarget) int {
	n := t.c.Cleanup()
	if n > 0 {
		s.logger.Debug().Str("target", t.name).Int("removed", n).Msg("sweep")
	}
	return n
}

func (s *Server) sweepAll() int {
	total := 0
	for _, t := range s.sweepers {
		total += s.sweep(t)
	}
	return total
}

// cronLogger 把 cron 的日志转到 zerolog
type cronLogger struct {
	logger *log.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}

var _ cron.Logger = cronLogger{}
