package desensitize

const masked = "******"

var (
	// PasswordRule 登录、注册请求中的密码
	PasswordRule = MustNewFieldRule("password", "password", masked)

	// AccessTokenRule access_token 字段或 cookie
	AccessTokenRule = MustNewFieldRule("access_token", "access_token", masked)

	// RefreshTokenRule refresh_token 字段或 cookie
	RefreshTokenRule = MustNewFieldRule("refresh_token", "refresh_token", masked)

	// CookieRule 请求/响应头中的 cookie
	CookieRule = MustNewFieldRule("cookie", "cookie", masked)

	// AuthorizationRule Authorization 头
	AuthorizationRule = MustNewFieldRule("authorization", "authorization", masked)

	// BearerRule 文本中的 Bearer token
	BearerRule = MustNewContentRule("bearer", `(?i)(bearer\s+)[A-Za-z0-9\-_.=]+`, "${1}"+masked)

	// JWTRule 文本中出现的 JWT (header.payload.signature)
	JWTRule = MustNewContentRule("jwt", `eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`, masked)

	// EmailRule 邮箱 (alice@example.com -> a***e@e***.com)
	EmailRule = MustNewContentRule(
		"email",
		`\b([A-Za-z0-9])[A-Za-z0-9._%+-]*([A-Za-z0-9])@([A-Za-z0-9])[A-Za-z0-9.-]*\.([A-Za-z]{2,})\b`,
		"$1***$2@$3***.$4",
	)
)

// BuiltinRules 返回会话相关的内置规则
func BuiltinRules() []Rule {
	return []Rule{
		PasswordRule,
		AccessTokenRule,
		RefreshTokenRule,
		CookieRule,
		AuthorizationRule,
		BearerRule,
		JWTRule,
		EmailRule,
	}
}
