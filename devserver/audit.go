package devserver

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/portfoliohub/log"
)

// AuditType 认证相关的审计事件
type AuditType string

const (
	AuditRegister      AuditType = "register"
	AuditLogin         AuditType = "login"
	AuditLoginFailed   AuditType = "login_failed"
	AuditRefresh       AuditType = "refresh"
	AuditRefreshFailed AuditType = "refresh_failed"
	AuditLogout        AuditType = "logout"
)

type AuditEvent struct {
	Type      AuditType `json:"type"`
	UserID    string    `json:"userId,omitempty"`
	Email     string    `json:"email,omitempty"`
	ClientIP  string    `json:"clientIp,omitempty"`
	RequestID string    `json:"requestId,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	At        time.Time `json:"at"`
}

// Auditor 接收审计事件，实现不得阻塞请求
type Auditor interface {
	Audit(ctx context.Context, e AuditEvent)
}

type logAuditor struct {
	logger *log.Logger
}

func (a logAuditor) Audit(_ context.Context, e AuditEvent) {
	a.logger.Info().
		Str("event", string(e.Type)).
		Str("user_id", e.UserID).
		Str("client_ip", e.ClientIP).
		Str("request_id", e.RequestID).
		Str("reason", e.Reason).
		Msg("audit")
}

// Publisher *kafka.Producer 满足此接口
type Publisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

type publishAuditor struct {
	pub    Publisher
	logger *log.Logger
}

// NewPublishAuditor 以 JSON 发布事件，key 为用户 id（未知时为邮箱）
func NewPublishAuditor(pub Publisher, logger *log.Logger) Auditor {
	if logger == nil {
		logger = log.G.Component("audit")
	}
	return publishAuditor{pub: pub, logger: logger}
}

func (a publishAuditor) Audit(ctx context.Context, e AuditEvent) {
	value, err := json.Marshal(e)
	if err != nil {
		a.logger.Error().Err(err).Msg("encode audit event")
		return
	}
	key := e.UserID
	if key == "" {
		key = e.Email
	}
	// 请求结束后 ctx 会被取消，发布不跟随请求生命周期
	if err := a.pub.Publish(context.WithoutCancel(ctx), key, value); err != nil {
		a.logger.Warn().Err(err).Str("event", string(e.Type)).Msg("publish audit event")
	}
}

func (s *Server) audit(c *gin.Context, t AuditType, userID, email, reason string) {
	s.auditor.Audit(c.Request.Context(), AuditEvent{
		Type:      t,
		UserID:    userID,
		Email:     email,
		ClientIP:  c.ClientIP(),
		RequestID: c.Writer.Header().Get("X-Request-Id"),
		Reason:    reason,
		At:        s.now(),
	})
}
