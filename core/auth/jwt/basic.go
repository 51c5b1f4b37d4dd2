package jwt

import (
	"context"
	"fmt"

	"github.com/kochabx/portfoliohub/core/auth/jwt/cache"
	"github.com/kochabx/portfoliohub/core/tag"
)

// BasicAuthenticator 基础认证器
type BasicAuthenticator struct {
	generator *generator
	config    *Config
	blacklist cache.Blacklist
}

// New 从配置创建基础认证器
func New(config *Config, opts ...Option) (*BasicAuthenticator, error) {
	if err := tag.ApplyDefaults(config); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	generator, err := newGenerator(config)
	if err != nil {
		return nil, err
	}

	a := &BasicAuthenticator{
		generator: generator,
		config:    config,
		blacklist: cache.NewNoopBlacklist(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *BasicAuthenticator) Generate(ctx context.Context, subject, email string) (*TokenPair, error) {
	access := &UserClaims{Email: email, Type: AccessToken}
	access.Subject = subject
	accessToken, accessExp, err := a.generator.Generate(access, a.config.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refresh := &UserClaims{Email: email, Type: RefreshToken}
	refresh.Subject = subject
	refreshToken, refreshExp, err := a.generator.Generate(refresh, a.config.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (a *BasicAuthenticator) Verify(ctx context.Context, accessToken string) (*UserClaims, error) {
	return a.parse(accessToken, AccessToken)
}

func (a *BasicAuthenticator) Refresh(ctx context.Context, refreshToken string) (*TokenPair, *UserClaims, error) {
	claims, err := a.verifyRefresh(ctx, refreshToken)
	if err != nil {
		return nil, nil, fmt.Errorf("verify refresh token: %w", err)
	}

	if err := a.revoke(ctx, claims); err != nil {
		return nil, nil, err
	}

	pair, err := a.Generate(ctx, claims.Subject, claims.Email)
	if err != nil {
		return nil, nil, err
	}
	return pair, claims, nil
}

func (a *BasicAuthenticator) Revoke(ctx context.Context, refreshToken string) error {
	claims, err := a.verifyRefresh(ctx, refreshToken)
	if err != nil {
		return err
	}
	return a.revoke(ctx, claims)
}

func (a *BasicAuthenticator) verifyRefresh(ctx context.Context, refreshToken string) (*UserClaims, error) {
	claims, err := a.parse(refreshToken, RefreshToken)
	if err != nil {
		return nil, err
	}

	revoked, err := a.blacklist.Contains(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check blacklist: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

func (a *BasicAuthenticator) revoke(ctx context.Context, claims *UserClaims) error {
	ttl := claims.ExpiresAt.Time.Sub(a.generator.now())
	if ttl <= 0 {
		return nil
	}
	if err := a.blacklist.Add(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

func (a *BasicAuthenticator) parse(token string, want TokenType) (*UserClaims, error) {
	claims := &UserClaims{}
	if err := a.generator.Parse(token, claims); err != nil {
		return nil, err
	}
	if claims.Type != want {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

var _ Authenticator = (*BasicAuthenticator)(nil)
