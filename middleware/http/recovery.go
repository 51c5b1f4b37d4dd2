package middleware

import (
	"fmt"
	"net"
	"net/http/httputil"
	"os"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/portfoliohub/errors"
	"github.com/kochabx/portfoliohub/log"
	"github.com/kochabx/portfoliohub/transport/http/response"
)

// RecoveryConfig Recovery 中间件配置，零值即默认配置：记录调用栈
type RecoveryConfig struct {
	DisableStackTrace bool
	Logger            *log.Logger
}

// Recovery 捕获 panic，返回 500 envelope
func Recovery(cfgs ...RecoveryConfig) gin.HandlerFunc {
	var cfg RecoveryConfig
	if len(cfgs) > 0 {
		cfg = cfgs[0]
	}
	if cfg.Logger == nil {
		cfg.Logger = log.G.Component("recovery")
	}

	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			dump, _ := httputil.DumpRequest(c.Request, false)

			if isBrokenPipe(rec) {
				cfg.Logger.Warn().
					Str("error", fmt.Sprint(rec)).
					Bytes("request", dump).
					Msg("broken pipe")
				_ = c.Error(fmt.Errorf("%v", rec))
				c.Abort()
				return
			}

			event := cfg.Logger.Error().
				Str("error", fmt.Sprint(rec)).
				Bytes("request", dump)
			if !cfg.DisableStackTrace {
				event = event.Bytes("stack", debug.Stack())
			}
			event.Msg("panic recovered")

			response.GinJSONE(c, errors.Internal("internal server error"))
		}()
		c.Next()
	}
}

func isBrokenPipe(rec any) bool {
	ne, ok := rec.(*net.OpError)
	if !ok {
		return false
	}
	se, ok := ne.Err.(*os.SyscallError)
	if !ok {
		return false
	}
	msg := strings.ToLower(se.Error())
	return strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer")
}
