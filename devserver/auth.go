package devserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/kochabx/portfoliohub/api"
	"github.com/kochabx/portfoliohub/core/auth/jwt"
	"github.com/kochabx/portfoliohub/core/validator"
	"github.com/kochabx/portfoliohub/errors"
	middleware "github.com/kochabx/portfoliohub/middleware/http"
	"github.com/kochabx/portfoliohub/transport/http/response"
)

var (
	ErrInvalidCredentials = errors.Unauthorized("invalid email or password")
	ErrSessionExpired     = errors.Unauthorized("session expired")
)

// bind 解析 JSON 并执行结构校验
func (s *Server) bind(c *gin.Context, in any) bool {
	if err := c.ShouldBindJSON(in); err != nil {
		response.GinJSONE(c, errors.BadRequest("malformed request body").WithCause(err))
		return false
	}
	if err := s.validate.StructCtx(c.Request.Context(), in); err != nil {
		response.GinJSONE(c, validator.ToError(err))
		return false
	}
	return true
}

func (s *Server) register(c *gin.Context) {
	var in api.RegisterInput
	if !s.bind(c, &in) {
		return
	}

	u, err := s.CreateUser(c.Request.Context(), in)
	if err != nil {
		response.GinJSONE(c, err)
		return
	}
	if !s.issue(c, u) {
		return
	}
	s.audit(c, AuditRegister, u.ID, u.Email, "")
	response.GinJSONStatus(c, http.StatusCreated, api.AuthResponse{User: u})
}

func (s *Server) login(c *gin.Context) {
	var in api.Credentials
	if !s.bind(c, &in) {
		return
	}

	u, hash, err := s.repo.Credentials(c.Request.Context(), in.Email)
	if errors.Is(err, ErrUserNotFound) {
		// 未知邮箱同样做一次比较，响应时间不区分
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(in.Password))
		s.audit(c, AuditLoginFailed, "", in.Email, "unknown email")
		response.GinJSONE(c, ErrInvalidCredentials)
		return
	}
	if err != nil {
		response.GinJSONE(c, errors.Internal("load credentials").WithCause(err))
		return
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(in.Password)); err != nil {
		s.audit(c, AuditLoginFailed, u.ID, u.Email, "wrong password")
		response.GinJSONE(c, ErrInvalidCredentials)
		return
	}
	if !s.issue(c, u) {
		return
	}
	s.audit(c, AuditLogin, u.ID, u.Email, "")
	response.GinJSON(c, api.AuthResponse{User: u})
}

// refresh 轮换 refresh token，旧 token 进入黑名单
func (s *Server) refresh(c *gin.Context) {
	token, err := c.Cookie(CookieRefreshToken)
	if err != nil || token == "" {
		s.clearCookies(c)
		s.audit(c, AuditRefreshFailed, "", "", "missing refresh token")
		response.GinJSONE(c, ErrSessionExpired)
		return
	}

	pair, claims, err := s.auth.Refresh(c.Request.Context(), token)
	if err != nil {
		s.clearCookies(c)
		s.audit(c, AuditRefreshFailed, "", "", err.Error())
		response.GinJSONE(c, ErrSessionExpired.WithCause(err))
		return
	}
	u, err := s.repo.User(c.Request.Context(), claims.Subject)
	if err != nil {
		s.clearCookies(c)
		s.audit(c, AuditRefreshFailed, claims.Subject, "", "account removed")
		response.GinJSONE(c, ErrSessionExpired.WithCause(err))
		return
	}

	s.setCookies(c, pair)
	s.audit(c, AuditRefresh, u.ID, u.Email, "")
	response.GinJSON(c, api.AuthResponse{User: u})
}

// logout 幂等，没有 cookie 也返回成功
func (s *Server) logout(c *gin.Context) {
	if token, err := c.Cookie(CookieRefreshToken); err == nil && token != "" {
		if err := s.auth.Revoke(c.Request.Context(), token); err != nil {
			s.logger.Debug().Err(err).Msg("revoke on logout")
		}
		s.audit(c, AuditLogout, "", "", "")
	}
	s.clearCookies(c)
	response.GinJSON(c, nil)
}

func (s *Server) issue(c *gin.Context, u api.User) bool {
	pair, err := s.auth.Generate(c.Request.Context(), u.ID, u.Email)
	if err != nil {
		response.GinJSONE(c, errors.Internal("issue session").WithCause(err))
		return false
	}
	s.setCookies(c, pair)
	return true
}

func (s *Server) setCookies(c *gin.Context, pair *jwt.TokenPair) {
	http.SetCookie(c.Writer, s.cookie(CookieAccessToken, pair.AccessToken, pair.AccessExpiresAt))
	http.SetCookie(c.Writer, s.cookie(CookieRefreshToken, pair.RefreshToken, pair.RefreshExpiresAt))
}

func (s *Server) clearCookies(c *gin.Context) {
	for _, name := range []string{CookieAccessToken, CookieRefreshToken} {
		ck := s.cookie(name, "", time.Unix(0, 0))
		ck.MaxAge = -1
		http.SetCookie(c.Writer, ck)
	}
}

func (s *Server) cookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func currentUserID(c *gin.Context) (string, bool) {
	claims, ok := middleware.GetClaims[*jwt.UserClaims](c.Request.Context())
	if !ok || claims.Subject == "" {
		response.GinJSONE(c, middleware.ErrTokenInvalid)
		return "", false
	}
	return claims.Subject, true
}

var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("portfoliohub-dummy"), bcrypt.MinCost)
