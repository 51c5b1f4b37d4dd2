package errors

import (
	"context"
	"net"
	"net/http"
)

// Kind is the coarse category the session coordinator reacts to.
type Kind int

const (
	KindUnknown Kind = iota
	// KindUnauthenticated covers 401 and 403; it triggers refresh-then-retry.
	KindUnauthenticated
	// KindRateLimited is a 429; it triggers backoff and is never an auth failure.
	KindRateLimited
	// KindNetwork is a transport failure or timeout with no HTTP response.
	KindNetwork
	// KindServer is any 5xx response.
	KindServer
	// KindValidation is any other 4xx; surfaced verbatim to the caller.
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindRateLimited:
		return "rate_limited"
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// CodeNetwork marks errors raised before any HTTP response arrived.
const CodeNetwork = 0

func kindOfCode(code int) Kind {
	switch {
	case code == CodeNetwork:
		return KindNetwork
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return KindUnauthenticated
	case code == http.StatusTooManyRequests:
		return KindRateLimited
	case code >= 500:
		return KindServer
	case code >= 400:
		return KindValidation
	default:
		return KindUnknown
	}
}

// KindOf classifies err. Context deadlines and net errors count as network failures.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var ge *Error
	if As(err, &ge) {
		return ge.Kind()
	}

	if Is(err, context.DeadlineExceeded) {
		return KindNetwork
	}
	var ne net.Error
	if As(err, &ne) {
		return KindNetwork
	}

	return KindUnknown
}

// IsUnauthenticated reports whether err is a 401/403.
func IsUnauthenticated(err error) bool {
	return KindOf(err) == KindUnauthenticated
}

// IsRateLimited reports whether err is a 429.
func IsRateLimited(err error) bool {
	return KindOf(err) == KindRateLimited
}

// Network wraps a transport failure that produced no HTTP response.
func Network(err error, format string, args ...any) *Error {
	return Wrap(err, CodeNetwork, format, args...)
}
