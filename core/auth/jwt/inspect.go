package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Inspect 读取 token 中的 claims 但不校验签名，客户端只用它判断过期时间
func Inspect(token string) (*UserClaims, error) {
	claims := &UserClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ExpiresAt 返回 token 的过期时间，无法解析或没有 exp 时返回零值
func ExpiresAt(token string) time.Time {
	claims, err := Inspect(token)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
