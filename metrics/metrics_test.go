package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinator(t *testing.T) {
	p := New()
	c := NewCoordinator(p.Registry())

	c.RefreshCompleted("success")
	c.RefreshCompleted("success")
	c.RefreshCompleted("failure")
	c.RefreshQueued()
	c.BackoffRetry()
	c.DedupShared("checkAuth")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.refreshes.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.refreshes.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.queued))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.backoffs))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.shared.WithLabelValues("checkAuth")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	p := New()
	NewCoordinator(p.Registry()).RefreshQueued()
	NewHTTPServer(p.Registry()).Observe("GET", "/api/users/me", 200, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "portfoliohub_auth_refresh_queued_total 1"))
	assert.True(t, strings.Contains(body, `portfoliohub_server_requests_total{method="GET",route="/api/users/me",status="200"} 1`))
}
