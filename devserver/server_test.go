package devserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kochabx/portfoliohub/api"
	"github.com/kochabx/portfoliohub/config"
	"github.com/kochabx/portfoliohub/core/auth/jwt/cache"
	"github.com/kochabx/portfoliohub/core/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testSettings() config.ServerSettings {
	return config.ServerSettings{
		BasePath: "/api",
		JWT: config.JWTSettings{
			Secret:          "devserver-test-secret",
			Issuer:          "portfoliohub",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: time.Hour,
		},
		LoginRate:    100,
		LoginBurst:   100,
		AllowOrigins: []string{"http://localhost:5173"},
	}
}

type envelope struct {
	Code     int               `json:"code"`
	Data     json.RawMessage   `json:"data"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata"`
}

type harness struct {
	t      *testing.T
	srv    *Server
	ts     *httptest.Server
	client *http.Client
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	srv, err := New(testSettings(), append([]Option{WithBcryptCost(bcrypt.MinCost)}, opts...)...)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Close()
	})

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &harness{t: t, srv: srv, ts: ts, client: &http.Client{Jar: jar}}
}

func (h *harness) do(method, path string, body any) (int, envelope) {
	h.t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(h.t, err)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, h.ts.URL+"/api"+path, rdr)
	require.NoError(h.t, err)
	req.Header.Set("Content-Type", "application/json")
	return h.send(req)
}

func (h *harness) send(req *http.Request) (int, envelope) {
	h.t.Helper()
	return h.sendVia(h.client, req)
}

func (h *harness) sendVia(client *http.Client, req *http.Request) (int, envelope) {
	h.t.Helper()
	resp, err := client.Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(h.t, json.NewDecoder(resp.Body).Decode(&env))
	assert.Equal(h.t, resp.StatusCode, env.Code, "envelope code mirrors HTTP status")
	return resp.StatusCode, env
}

func (h *harness) cookie(name string) string {
	req, _ := http.NewRequest(http.MethodGet, h.ts.URL+"/api", nil)
	for _, c := range h.client.Jar.Cookies(req.URL) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

var alice = api.RegisterInput{Email: "alice@example.com", Username: "alice", Password: "correct-horse"}

func TestRegisterAndMe(t *testing.T) {
	h := newHarness(t)

	status, env := h.do(http.MethodPost, "/auth/register", alice)
	require.Equal(t, http.StatusCreated, status)
	u := decode[api.AuthResponse](t, env).User
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "free", u.Plan)
	assert.NotEmpty(t, h.cookie(CookieAccessToken))
	assert.NotEmpty(t, h.cookie(CookieRefreshToken))

	status, env = h.do(http.MethodGet, "/users/me", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, u.ID, decode[api.User](t, env).ID)

	status, env = h.do(http.MethodPost, "/auth/register", api.RegisterInput{
		Email: "other@example.com", Username: "alice", Password: "another-pass",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "username taken", env.Message)
}

func TestRegisterValidation(t *testing.T) {
	h := newHarness(t)

	status, env := h.do(http.MethodPost, "/auth/register", api.RegisterInput{
		Email: "bob@example.com", Username: "Admin!", Password: "short",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, env.Metadata, "username")
	assert.Contains(t, env.Metadata, "password")
}

func TestLogin(t *testing.T) {
	h := newHarness(t)
	_, err := h.srv.CreateUser(context.Background(), alice)
	require.NoError(t, err)

	status, env := h.do(http.MethodPost, "/auth/login", api.Credentials{Email: alice.Email, Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, ErrInvalidCredentials.Message, env.Message)

	status, _ = h.do(http.MethodPost, "/auth/login", api.Credentials{Email: "nobody@example.com", Password: "x"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env = h.do(http.MethodPost, "/auth/login", api.Credentials{Email: "ALICE@example.com", Password: alice.Password})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, alice.Email, decode[api.AuthResponse](t, env).User.Email)
}

func TestLoginRateLimited(t *testing.T) {
	h := newHarness(t, WithLimiter(rate.NewTokenBucketLimiter(2, 0.0001)))

	var codes []int
	for range 3 {
		status, _ := h.do(http.MethodPost, "/auth/login", api.Credentials{Email: alice.Email, Password: "x"})
		codes = append(codes, status)
	}
	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
}

func TestRefreshRotation(t *testing.T) {
	h := newHarness(t)
	status, _ := h.do(http.MethodPost, "/auth/register", alice)
	require.Equal(t, http.StatusCreated, status)
	old := h.cookie(CookieRefreshToken)

	status, env := h.do(http.MethodPost, "/auth/refresh", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice", decode[api.AuthResponse](t, env).User.Username)
	assert.NotEqual(t, old, h.cookie(CookieRefreshToken))
	assert.Equal(t, 1, h.srv.blacklist.(*cache.MemoryBlacklist).Len())

	// 旧 refresh token 重放被拒绝
	req, _ := http.NewRequest(http.MethodPost, h.ts.URL+"/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: CookieRefreshToken, Value: old})
	status, env = h.sendVia(&http.Client{}, req)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, ErrSessionExpired.Message, env.Message)
}

func TestRefreshWithoutCookie(t *testing.T) {
	h := newHarness(t)
	status, _ := h.do(http.MethodPost, "/auth/refresh", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	status, _ := h.do(http.MethodPost, "/auth/register", alice)
	require.Equal(t, http.StatusCreated, status)

	status, _ = h.do(http.MethodPost, "/auth/logout", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, h.cookie(CookieAccessToken))
	assert.Empty(t, h.cookie(CookieRefreshToken))

	status, _ = h.do(http.MethodGet, "/users/me", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	// 重复登出也成功
	status, _ = h.do(http.MethodPost, "/auth/logout", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestPortfolioLifecycle(t *testing.T) {
	h := newHarness(t)
	status, _ := h.do(http.MethodPost, "/auth/register", alice)
	require.Equal(t, http.StatusCreated, status)

	status, _ = h.do(http.MethodGet, "/portfolios/me", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = h.do(http.MethodPut, "/portfolios/me", api.SavePortfolioInput{Slug: "work", TemplateID: "nope"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, env := h.do(http.MethodPut, "/portfolios/me", api.SavePortfolioInput{
		Slug:       "work",
		TemplateID: "minimal",
		Content:    map[string]any{"headline": "Designer"},
		SEO:        api.SEO{Title: "Alice"},
	})
	require.Equal(t, http.StatusOK, status)
	p := decode[api.Portfolio](t, env)
	assert.Equal(t, "alice", p.Username)
	assert.False(t, p.Published)

	status, _ = h.do(http.MethodGet, "/p/alice/work", nil)
	assert.Equal(t, http.StatusNotFound, status, "drafts are not public")

	status, _ = h.do(http.MethodPost, "/portfolios/me/publish", api.PublishInput{Published: true})
	require.Equal(t, http.StatusOK, status)

	req, _ := http.NewRequest(http.MethodGet, h.ts.URL+"/api/p/alice/work", nil)
	status, env = h.sendVia(&http.Client{}, req)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Designer", decode[api.Portfolio](t, env).Content["headline"])
}

func TestMediaUpload(t *testing.T) {
	h := newHarness(t)
	status, _ := h.do(http.MethodPost, "/auth/register", alice)
	require.Equal(t, http.StatusCreated, status)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "avatar.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("\x89PNG fake"))
	require.NoError(t, mw.Close())

	req, _ := http.NewRequest(http.MethodPost, h.ts.URL+"/api/media", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	status, env := h.send(req)
	require.Equal(t, http.StatusCreated, status)
	item := decode[api.MediaItem](t, env)
	assert.Equal(t, "avatar.png", item.Filename)
	assert.EqualValues(t, 9, item.Size)

	status, env = h.do(http.MethodGet, "/media", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]api.MediaItem](t, env), 1)

	status, _ = h.do(http.MethodPost, "/media", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	// 媒体地址无需 cookie
	resp, err := http.Get(h.ts.URL + "/api" + item.URL)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "\x89PNG fake", string(raw))
	assert.Equal(t, "application/octet-stream", resp.Header.Get("Content-Type"))

	status, env = h.do(http.MethodGet, "/media/"+item.ID+"/other.png", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "media not found", env.Message)
}

func TestBilling(t *testing.T) {
	h := newHarness(t)

	status, env := h.do(http.MethodGet, "/billing/plans", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]api.Plan](t, env), len(plans))

	status, _ = h.do(http.MethodPost, "/billing/subscribe", api.SubscribeInput{PlanID: "pro"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = h.do(http.MethodPost, "/auth/register", alice)
	require.Equal(t, http.StatusCreated, status)

	status, _ = h.do(http.MethodPost, "/billing/subscribe", api.SubscribeInput{PlanID: "gold"})
	assert.Equal(t, http.StatusNotFound, status)

	status, env = h.do(http.MethodPost, "/billing/subscribe", api.SubscribeInput{PlanID: "pro"})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "active", decode[api.Subscription](t, env).Status)

	_, env = h.do(http.MethodGet, "/users/me", nil)
	assert.Equal(t, "pro", decode[api.User](t, env).Plan)
}
