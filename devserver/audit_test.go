package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/portfoliohub/api"
)

type recordingAuditor struct {
	mu     sync.Mutex
	events []AuditEvent
}

func (r *recordingAuditor) Audit(_ context.Context, e AuditEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingAuditor) types() []AuditType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]AuditType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

type fakePublisher struct {
	keys   []string
	values [][]byte
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, key string, value []byte) error {
	f.keys = append(f.keys, key)
	f.values = append(f.values, value)
	return f.err
}

func TestAuditTrail(t *testing.T) {
	rec := &recordingAuditor{}
	h := newHarness(t, WithAuditor(rec))

	status, _ := h.do(http.MethodPost, "/auth/register", alice)
	require.Equal(t, http.StatusCreated, status)
	status, _ = h.do(http.MethodPost, "/auth/login", api.Credentials{Email: alice.Email, Password: "wrong"})
	require.Equal(t, http.StatusUnauthorized, status)
	status, _ = h.do(http.MethodPost, "/auth/login", api.Credentials{Email: "ghost@example.com", Password: "x"})
	require.Equal(t, http.StatusUnauthorized, status)
	status, _ = h.do(http.MethodPost, "/auth/login", api.Credentials{Email: alice.Email, Password: alice.Password})
	require.Equal(t, http.StatusOK, status)
	status, _ = h.do(http.MethodPost, "/auth/refresh", nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = h.do(http.MethodPost, "/auth/logout", nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = h.do(http.MethodPost, "/auth/refresh", nil)
	require.Equal(t, http.StatusUnauthorized, status)

	assert.Equal(t, []AuditType{
		AuditRegister, AuditLoginFailed, AuditLoginFailed, AuditLogin, AuditRefresh, AuditLogout, AuditRefreshFailed,
	}, rec.types())

	first := rec.events[0]
	assert.NotEmpty(t, first.UserID)
	assert.Equal(t, alice.Email, first.Email)
	assert.NotEmpty(t, first.RequestID)
	assert.False(t, first.At.IsZero())
	assert.Equal(t, "wrong password", rec.events[1].Reason)
	assert.Equal(t, "unknown email", rec.events[2].Reason)
}

func TestPublishAuditor(t *testing.T) {
	pub := &fakePublisher{}
	a := NewPublishAuditor(pub, nil)

	a.Audit(context.Background(), AuditEvent{Type: AuditLogin, UserID: "u-1", At: repoNow})
	a.Audit(context.Background(), AuditEvent{Type: AuditLoginFailed, Email: "ghost@example.com", At: repoNow})

	assert.Equal(t, []string{"u-1", "ghost@example.com"}, pub.keys)
	var e AuditEvent
	require.NoError(t, json.Unmarshal(pub.values[0], &e))
	assert.Equal(t, AuditLogin, e.Type)
	assert.Equal(t, "u-1", e.UserID)

	// 发布失败不影响调用方
	pub.err = errors.New("broker down")
	assert.NotPanics(t, func() {
		a.Audit(context.Background(), AuditEvent{Type: AuditLogout})
	})
}
