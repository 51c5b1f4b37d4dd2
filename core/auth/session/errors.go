package session

import (
	"errors"

	kerrors "github.com/kochabx/portfoliohub/errors"
)

var ErrSuperseded = errors.New("session: result discarded by a later logout")

type LoginErrorKind int

const (
	LoginFailed LoginErrorKind = iota
	LoginInvalidCredentials
	LoginRateLimited
)

func (k LoginErrorKind) String() string {
	switch k {
	case LoginInvalidCredentials:
		return "invalid_credentials"
	case LoginRateLimited:
		return "rate_limited"
	default:
		return "failed"
	}
}

const (
	msgRateLimited        = "Too many login attempts. Please wait a moment and try again."
	msgInvalidCredentials = "Invalid email or password."
	msgLoginFailed        = "Login failed. Please try again."
)

// LoginError 登录失败，Message 可直接展示给用户
type LoginError struct {
	Kind    LoginErrorKind
	Message string
	Err     error
}

func (e *LoginError) Error() string {
	return e.Message
}

func (e *LoginError) Unwrap() error {
	return e.Err
}

func classifyLogin(err error) *LoginError {
	switch kerrors.KindOf(err) {
	case kerrors.KindRateLimited:
		return &LoginError{Kind: LoginRateLimited, Message: msgRateLimited, Err: err}
	case kerrors.KindUnauthenticated:
		return &LoginError{Kind: LoginInvalidCredentials, Message: msgInvalidCredentials, Err: err}
	case kerrors.KindValidation:
		return &LoginError{Kind: LoginFailed, Message: kerrors.Message(err), Err: err}
	default:
		return &LoginError{Kind: LoginFailed, Message: msgLoginFailed, Err: err}
	}
}
