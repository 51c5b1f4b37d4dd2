package jwt

import "context"

// Authenticator JWT 认证器接口
type Authenticator interface {
	// Generate 为用户签发 token 对
	Generate(ctx context.Context, subject, email string) (*TokenPair, error)

	// Verify 校验 access token
	Verify(ctx context.Context, accessToken string) (*UserClaims, error)

	// Refresh 用 refresh token 换新的 token 对，旧 refresh token 作废
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, *UserClaims, error)

	// Revoke 作废 refresh token，登出时调用
	Revoke(ctx context.Context, refreshToken string) error
}
