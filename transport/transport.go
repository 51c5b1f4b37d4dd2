// Package transport 定义可由 app.Application 管理的服务
package transport

import (
	"context"
	"net"
	"strconv"
	"strings"
)

// Server 阻塞运行直到 Shutdown
type Server interface {
	Run() error
	Shutdown(context.Context) error
}

// ValidateAddress 校验 host:port 监听地址，host 可以为空
func ValidateAddress(addr string) bool {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	p, err := strconv.Atoi(port)
	if err != nil || p < 1 || p > 65535 {
		return false
	}
	return host == "" || net.ParseIP(host) != nil || isHostname(host)
}

func isHostname(host string) bool {
	if len(host) > 253 || strings.HasPrefix(host, "-") || strings.HasSuffix(host, "-") {
		return false
	}
	for _, r := range host {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
		default:
			return false
		}
	}
	return true
}
