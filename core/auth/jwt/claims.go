package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims JWT Claims 接口类型别名
type Claims = jwt.Claims

// RegisteredClaims JWT 标准 Claims 类型别名
type RegisteredClaims = jwt.RegisteredClaims

// NumericDate 类型别名
type NumericDate = jwt.NumericDate

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// UserClaims 会话 token 的 claims，Subject 为用户 ID
type UserClaims struct {
	RegisteredClaims
	Email string    `json:"email,omitempty"`
	Type  TokenType `json:"typ"`
}
