package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Config JWT 配置
type Config struct {
	// 必需配置
	Secret string `json:"secret" validate:"required,min=16"`

	// Token 配置
	SigningMethod   string        `json:"signingMethod" default:"HS256" validate:"oneof=HS256 HS384 HS512"`
	AccessTokenTTL  time.Duration `json:"accessTokenTTL" default:"15m" validate:"gt=0"`
	RefreshTokenTTL time.Duration `json:"refreshTokenTTL" default:"168h" validate:"gt=0"`

	// 标准 Claims 配置
	Issuer   string   `json:"issuer"`
	Audience []string `json:"audience"`
}

// GetSigningMethod 获取签名方法，只支持 HMAC
func (c *Config) GetSigningMethod() jwt.SigningMethod {
	switch c.SigningMethod {
	case "HS384":
		return jwt.SigningMethodHS384
	case "HS512":
		return jwt.SigningMethodHS512
	default:
		return jwt.SigningMethodHS256
	}
}

// GetSecret 获取密钥字节
func (c *Config) GetSecret() []byte {
	return []byte(c.Secret)
}
