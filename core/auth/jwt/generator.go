package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// generator JWT 生成器
type generator struct {
	config *Config
	now    func() time.Time
}

func newGenerator(config *Config) (*generator, error) {
	if config.Secret == "" {
		return nil, ErrEmptySecret
	}
	return &generator{config: config, now: time.Now}, nil
}

// Generate 填充标准字段并签名，返回 token 与过期时间
func (g *generator) Generate(claims *UserClaims, ttl time.Duration) (string, time.Time, error) {
	now := g.now()
	exp := now.Add(ttl)

	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(exp)
	if g.config.Issuer != "" {
		claims.Issuer = g.config.Issuer
	}
	if len(g.config.Audience) > 0 {
		claims.Audience = g.config.Audience
	}

	token := jwt.NewWithClaims(g.config.GetSigningMethod(), claims)
	signed, err := token.SignedString(g.config.GetSecret())
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse 校验签名与有效期
func (g *generator) Parse(tokenString string, claims Claims) error {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{g.config.GetSigningMethod().Alg()}),
		jwt.WithTimeFunc(g.now),
	}
	if g.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(g.config.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return g.config.GetSecret(), nil
	}, opts...)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSignature
	case err != nil:
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	case !token.Valid:
		return ErrInvalidToken
	}
	return nil
}
