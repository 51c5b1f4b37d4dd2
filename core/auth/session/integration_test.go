package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kochabx/portfoliohub/api"
	"github.com/kochabx/portfoliohub/config"
	"github.com/kochabx/portfoliohub/core/auth/session"
	"github.com/kochabx/portfoliohub/core/dedup"
	khttp "github.com/kochabx/portfoliohub/core/net/http"
	"github.com/kochabx/portfoliohub/devserver"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type navigations struct {
	mu    sync.Mutex
	paths []string
}

func (n *navigations) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
}

func (n *navigations) get() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

type env struct {
	server   *devserver.Server
	client   *api.Client
	store    *session.Store
	nav      *navigations
	refreshs *atomic.Int32
	logouts  *atomic.Int32
}

func newEnv(t *testing.T) *env {
	t.Helper()
	srv, err := devserver.New(config.ServerSettings{
		BasePath: "/api",
		JWT: config.JWTSettings{
			Secret:          "session-test-secret-0",
			Issuer:          "portfoliohub",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: time.Hour,
		},
		LoginRate:  100,
		LoginBurst: 100,
	}, devserver.WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, err)

	refreshes, logouts := &atomic.Int32{}, &atomic.Int32{}
	handler := srv.Handler()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api" + api.PathRefresh:
			refreshes.Add(1)
		case "/api" + api.PathLogout:
			logouts.Add(1)
		}
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Close()
	})

	events := session.NewEvents()
	gate := dedup.NewGate(time.Second)
	client, err := api.New(config.ClientSettings{
		BaseURL:     ts.URL + "/api",
		Timeout:     5 * time.Second,
		RefreshPath: api.PathRefresh,
		Cookies: config.CookieSettings{
			Names: []string{khttp.CookieAccessToken, khttp.CookieRefreshToken},
			Paths: []string{"/", "/api", "/auth"},
		},
	}, config.BackoffSettings{MaxRetries: 0, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 2},
		api.WithEvents(events),
		api.WithGate(gate),
	)
	require.NoError(t, err)

	nav := &navigations{}
	store := session.NewStore(client,
		session.WithGate(gate),
		session.WithEvents(events),
		session.WithNavigator(nav),
	)
	t.Cleanup(store.Close)

	return &env{server: srv, client: client, store: store, nav: nav, refreshs: refreshes, logouts: logouts}
}

func (e *env) seed(t *testing.T) {
	t.Helper()
	_, err := e.server.CreateUser(context.Background(), api.RegisterInput{
		Email: "a@b.com", Username: "alice", Password: "pw",
	})
	require.NoError(t, err)
}

func TestLoginNavigatesToDashboard(t *testing.T) {
	e := newEnv(t)
	e.seed(t)

	_, err := e.store.Login(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)

	st := e.store.State()
	assert.True(t, st.IsAuthenticated)
	require.NotNil(t, st.User)
	assert.Equal(t, "a@b.com", st.User.Email)
	assert.Equal(t, []string{session.PathDashboard}, e.nav.get())

	sess := e.store.Session()
	require.NotNil(t, sess)
	assert.True(t, sess.AccessTokenExpiry.After(time.Now()))
}

func TestLoginWithWrongPassword(t *testing.T) {
	e := newEnv(t)
	e.seed(t)

	_, err := e.store.Login(context.Background(), "a@b.com", "nope")
	var lerr *session.LoginError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, session.LoginInvalidCredentials, lerr.Kind)
	assert.Zero(t, e.refreshs.Load(), "a failed login never triggers a refresh")
	assert.Empty(t, e.nav.get())
}

func TestCheckAuthTwiceRefreshesOnce(t *testing.T) {
	e := newEnv(t)
	e.seed(t)
	_, err := e.client.Login(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)

	first, err := e.store.CheckAuth(context.Background(), false)
	require.NoError(t, err)
	second, err := e.store.CheckAuth(context.Background(), false)
	require.NoError(t, err)

	assert.EqualValues(t, 1, e.refreshs.Load())
	assert.True(t, first.IsAuthenticated)
	assert.True(t, second.IsAuthenticated)
	assert.Equal(t, "alice", second.User.Username)
}

func TestCheckAuthWithoutSession(t *testing.T) {
	e := newEnv(t)

	st, err := e.store.CheckAuth(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, st.IsAuthenticated)
	assert.True(t, st.Initialized)
	assert.Empty(t, e.nav.get(), "a refresh endpoint 401 is not an auth-failure event")
}

func TestRevokedSessionSignsOut(t *testing.T) {
	e := newEnv(t)
	e.seed(t)
	_, err := e.store.Login(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)

	e.client.HTTP().Cookies().Set(
		&http.Cookie{Name: khttp.CookieAccessToken, Value: "expired", Path: "/"},
		&http.Cookie{Name: khttp.CookieRefreshToken, Value: "revoked", Path: "/"},
	)

	_, err = e.store.RefreshUser(context.Background())
	require.Error(t, err)

	assert.False(t, e.store.State().IsAuthenticated)
	assert.Equal(t, []string{session.PathDashboard, session.PathSignIn}, e.nav.get(), "signed out exactly once")
	assert.EqualValues(t, 1, e.refreshs.Load())
	assert.Zero(t, e.logouts.Load(), "the failed refresh already ended the session")
}
