package jwt

import "errors"

var (
	// Token 相关错误
	ErrInvalidToken     = errors.New("jwt: invalid token")
	ErrExpiredToken     = errors.New("jwt: token expired")
	ErrTokenRevoked     = errors.New("jwt: token revoked")
	ErrInvalidSignature = errors.New("jwt: invalid signature")
	ErrWrongTokenType   = errors.New("jwt: wrong token type")

	// 配置相关错误
	ErrEmptySecret = errors.New("jwt: secret cannot be empty")
)
