package api_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kochabx/portfoliohub/api"
	"github.com/kochabx/portfoliohub/config"
	"github.com/kochabx/portfoliohub/core/dedup"
	khttp "github.com/kochabx/portfoliohub/core/net/http"
	"github.com/kochabx/portfoliohub/core/rate"
	"github.com/kochabx/portfoliohub/devserver"
	"github.com/kochabx/portfoliohub/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type events struct {
	mu       sync.Mutex
	failures []khttp.AuthFailure
}

func (e *events) Publish(f khttp.AuthFailure) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failures = append(e.failures, f)
}

func (e *events) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.failures)
}

type sleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleeper) sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return nil
}

type fixture struct {
	client *api.Client
	server *devserver.Server
	events *events
	sleep  *sleeper
}

func newFixture(t *testing.T, opts ...devserver.Option) *fixture {
	t.Helper()
	srv, err := devserver.New(config.ServerSettings{
		BasePath: "/api",
		JWT: config.JWTSettings{
			Secret:          "api-test-secret-0123",
			Issuer:          "portfoliohub",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: time.Hour,
		},
		LoginRate:  100,
		LoginBurst: 100,
	}, append([]devserver.Option{devserver.WithBcryptCost(bcrypt.MinCost)}, opts...)...)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Close()
	})

	f := &fixture{server: srv, events: &events{}, sleep: &sleeper{}}
	f.client, err = api.New(config.ClientSettings{
		BaseURL:     ts.URL + "/api",
		Timeout:     5 * time.Second,
		RefreshPath: api.PathRefresh,
		Cookies: config.CookieSettings{
			Names: []string{khttp.CookieAccessToken, khttp.CookieRefreshToken},
			Paths: []string{"/", "/api", "/auth"},
		},
	}, config.BackoffSettings{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   8 * time.Second,
		Multiplier: 2,
	},
		api.WithEvents(f.events),
		api.WithGate(dedup.NewGate(time.Nanosecond)),
		api.WithSleeper(f.sleep.sleep),
	)
	require.NoError(t, err)
	return f
}

var alice = api.RegisterInput{Email: "alice@example.com", Username: "alice", Password: "correct-horse"}

func TestPortfolioWorkflow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.client.Register(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.True(t, f.client.AccessTokenExpiry().After(time.Now()))

	me, err := f.client.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, u.ID, me.ID)

	name := "Alice Liddell"
	me, err = f.client.UpdateMe(ctx, api.UpdateUserInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, me.Name)

	tpls, err := f.client.Templates(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, tpls)

	_, err = f.client.MyPortfolio(ctx)
	assert.Equal(t, http.StatusNotFound, errors.Code(err))

	p, err := f.client.SavePortfolio(ctx, api.SavePortfolioInput{
		Slug:       "work",
		TemplateID: tpls[0].ID,
		Content:    map[string]any{"headline": "Illustrator"},
	})
	require.NoError(t, err)
	assert.False(t, p.Published)

	p, err = f.client.Publish(ctx, true)
	require.NoError(t, err)
	assert.True(t, p.Published)

	pub, err := f.client.PublicPortfolio(ctx, "alice", "work")
	require.NoError(t, err)
	assert.Equal(t, "Illustrator", pub.Content["headline"])

	item, err := f.client.UploadMedia(ctx, "cover.jpg", bytes.NewReader([]byte("jpeg-bytes")))
	require.NoError(t, err)
	assert.Equal(t, "cover.jpg", item.Filename)
	assert.EqualValues(t, len("jpeg-bytes"), item.Size)

	media, err := f.client.ListMedia(ctx)
	require.NoError(t, err)
	assert.Len(t, media, 1)

	plans, err := f.client.Plans(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, plans)

	sub, err := f.client.Subscribe(ctx, "pro")
	require.NoError(t, err)
	assert.Equal(t, "pro", sub.PlanID)

	require.NoError(t, f.client.Logout(ctx))
	assert.True(t, f.client.AccessTokenExpiry().IsZero())
	assert.Zero(t, f.events.count())
}

func TestRegisterUsernameTaken(t *testing.T) {
	f := newFixture(t)
	_, err := f.server.CreateUser(context.Background(), alice)
	require.NoError(t, err)

	_, err = f.client.Register(context.Background(), api.RegisterInput{
		Email: "second@example.com", Username: "alice", Password: "another-pass",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, errors.Code(err))
	assert.Equal(t, "username taken", errors.Message(err))
	assert.Equal(t, errors.KindValidation, errors.KindOf(err))
	assert.Zero(t, f.events.count())
}

func TestClientSideValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.client.Register(context.Background(), api.RegisterInput{
		Email: "not-an-email", Username: "dashboard", Password: "pw",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, errors.Code(err))

	var ge *errors.Error
	require.True(t, errors.As(err, &ge))
	assert.Contains(t, ge.GetMetadata(), "email")
	assert.Contains(t, ge.GetMetadata(), "username")
	assert.Contains(t, ge.GetMetadata(), "password")

	_, err = f.client.PublicPortfolio(context.Background(), "", "work")
	assert.Equal(t, http.StatusBadRequest, errors.Code(err))
}

func TestExpiredAccessTokenIsRefreshed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.client.Register(ctx, alice)
	require.NoError(t, err)

	f.client.HTTP().Cookies().Set(&http.Cookie{Name: khttp.CookieAccessToken, Value: "expired", Path: "/"})

	me, err := f.client.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)

	token, ok := f.client.HTTP().Cookies().Get(khttp.CookieAccessToken, "")
	require.True(t, ok)
	assert.NotEqual(t, "expired", token)
	assert.Zero(t, f.events.count())
}

func TestRevokedSessionPublishesAuthFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.client.Register(ctx, alice)
	require.NoError(t, err)

	cookies := f.client.HTTP().Cookies()
	cookies.Set(
		&http.Cookie{Name: khttp.CookieAccessToken, Value: "expired", Path: "/"},
		&http.Cookie{Name: khttp.CookieRefreshToken, Value: "revoked", Path: "/"},
	)

	_, err = f.client.Me(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsUnauthenticated(err))

	require.Equal(t, 1, f.events.count())
	assert.True(t, f.events.failures[0].ShouldRedirect)
	_, ok := cookies.Get(khttp.CookieRefreshToken, "")
	assert.False(t, ok, "session cookies are cleared")
}

func TestLoginFailureDoesNotRefresh(t *testing.T) {
	f := newFixture(t)
	_, err := f.server.CreateUser(context.Background(), alice)
	require.NoError(t, err)

	_, err = f.client.Login(context.Background(), alice.Email, "wrong-password")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, errors.Code(err))
	assert.False(t, f.client.Refresher().Refreshing())
	assert.Zero(t, f.events.count())
	assert.True(t, f.client.Gate().Until().IsZero(), "no refresh attempt was stamped")
}

func TestLoginRateLimitedBacksOff(t *testing.T) {
	f := newFixture(t, devserver.WithLimiter(rate.NewTokenBucketLimiter(1, 0.0001)))
	_, err := f.server.CreateUser(context.Background(), alice)
	require.NoError(t, err)

	_, err = f.client.Login(context.Background(), alice.Email, "wrong-password")
	assert.Equal(t, http.StatusUnauthorized, errors.Code(err))

	_, err = f.client.Login(context.Background(), alice.Email, alice.Password)
	require.Error(t, err)
	assert.True(t, errors.IsRateLimited(err))
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, f.sleep.delays)
}
