package devserver

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/portfoliohub/api"
	"github.com/kochabx/portfoliohub/core/tag"
	"github.com/kochabx/portfoliohub/store/db"
	"github.com/kochabx/portfoliohub/store/mongo"
)

var repoNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return repoNow }

func repositories(t *testing.T) map[string]Repository {
	t.Helper()

	cfg := &db.Config{Driver: db.DriverSQLite}
	require.NoError(t, tag.ApplyDefaults(cfg))
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "devserver.db")
	dc, err := cfg.DriverConfig()
	require.NoError(t, err)
	client, err := db.New(dc, db.WithAutoMigrate(Models()...))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	repos := map[string]Repository{
		"memory": newMemoryRepository(fixedNow),
		"gorm":   NewGormRepository(client.DB(), fixedNow),
	}
	if repo := mongoRepo(t); repo != nil {
		repos["mongo"] = repo
	}
	return repos
}

// mongoRepo 每次使用独立的数据库，mongo 不可用时返回 nil
func mongoRepo(t *testing.T) Repository {
	t.Helper()
	uri := os.Getenv("PORTFOLIOHUB_MONGO_URI")
	if uri == "" {
		return nil
	}
	ctx := context.Background()
	client, err := mongo.New(ctx, &mongo.Config{URI: uri, Database: "devserver_" + strings.ReplaceAll(uuid.NewString(), "-", ""), Timeout: time.Second})
	if err != nil {
		t.Logf("mongo not available: %v", err)
		return nil
	}
	t.Cleanup(func() {
		_ = client.Database().Drop(ctx)
		_ = client.Close(ctx)
	})
	repo, err := NewMongoRepository(ctx, client.Database(), fixedNow)
	require.NoError(t, err)
	return repo
}

func TestRepositoryUsers(t *testing.T) {
	ctx := context.Background()
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			u, err := repo.CreateUser(ctx, api.RegisterInput{Email: "Ada@Example.com", Username: "ada", Name: "Ada"}, []byte("hash"))
			require.NoError(t, err)
			assert.Equal(t, "ada@example.com", u.Email)
			assert.Equal(t, "free", u.Plan)

			_, err = repo.CreateUser(ctx, api.RegisterInput{Email: "other@example.com", Username: "ada"}, nil)
			assert.ErrorIs(t, err, ErrUsernameTaken)
			_, err = repo.CreateUser(ctx, api.RegisterInput{Email: "ADA@example.com", Username: "ada2"}, nil)
			assert.ErrorIs(t, err, ErrEmailTaken)

			got, hash, err := repo.Credentials(ctx, "ADA@EXAMPLE.COM")
			require.NoError(t, err)
			assert.Equal(t, u, got)
			assert.Equal(t, []byte("hash"), hash)

			_, _, err = repo.Credentials(ctx, "nobody@example.com")
			assert.ErrorIs(t, err, ErrUserNotFound)

			avatar := "https://cdn.example.com/ada.png"
			updated, err := repo.UpdateUser(ctx, u.ID, api.UpdateUserInput{AvatarURL: &avatar})
			require.NoError(t, err)
			assert.Equal(t, "Ada", updated.Name)
			assert.Equal(t, avatar, updated.AvatarURL)

			again, err := repo.User(ctx, u.ID)
			require.NoError(t, err)
			assert.Equal(t, updated, again)

			_, err = repo.User(ctx, "missing")
			assert.ErrorIs(t, err, ErrUserNotFound)
		})
	}
}

func TestRepositoryPortfolio(t *testing.T) {
	ctx := context.Background()
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			u, err := repo.CreateUser(ctx, api.RegisterInput{Email: "ada@example.com", Username: "ada"}, nil)
			require.NoError(t, err)

			_, err = repo.Portfolio(ctx, u.ID)
			assert.ErrorIs(t, err, ErrNoPortfolio)
			_, err = repo.Publish(ctx, u.ID, true)
			assert.ErrorIs(t, err, ErrNoPortfolio)

			in := api.SavePortfolioInput{
				Slug:       "work",
				TemplateID: "minimal",
				Content:    map[string]any{"headline": "Hello"},
				Theme:      map[string]string{"accent": "#ff0066"},
				SEO:        api.SEO{Title: "Ada"},
			}
			saved, err := repo.SavePortfolio(ctx, u.ID, in)
			require.NoError(t, err)
			assert.Equal(t, "ada", saved.Username)
			assert.False(t, saved.Published)

			_, err = repo.PublicPortfolio(ctx, "ada", "work")
			assert.ErrorIs(t, err, ErrNoPortfolio, "drafts are private")

			_, err = repo.Publish(ctx, u.ID, true)
			require.NoError(t, err)

			public, err := repo.PublicPortfolio(ctx, "ada", "work")
			require.NoError(t, err)
			assert.True(t, public.Published)
			assert.Equal(t, "Hello", public.Content["headline"])
			assert.Equal(t, "#ff0066", public.Theme["accent"])
			assert.Equal(t, "Ada", public.SEO.Title)
			assert.True(t, public.UpdatedAt.Equal(repoNow))

			// 再次保存不改变发布状态
			in.Slug = "portfolio"
			saved, err = repo.SavePortfolio(ctx, u.ID, in)
			require.NoError(t, err)
			assert.True(t, saved.Published)
			_, err = repo.PublicPortfolio(ctx, "ada", "work")
			assert.ErrorIs(t, err, ErrNoPortfolio)

			_, err = repo.SavePortfolio(ctx, "missing", in)
			assert.ErrorIs(t, err, ErrUserNotFound)
		})
	}
}

func TestRepositoryMediaAndBilling(t *testing.T) {
	ctx := context.Background()
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			u, err := repo.CreateUser(ctx, api.RegisterInput{Email: "ada@example.com", Username: "ada"}, nil)
			require.NoError(t, err)

			items, err := repo.ListMedia(ctx, u.ID)
			require.NoError(t, err)
			assert.Empty(t, items)

			for _, f := range []string{"a.png", "b.png", "c.png"} {
				item := newMediaItem(api.MediaItem{Filename: f, ContentType: "image/png", Size: 3}, repoNow)
				assert.Equal(t, "/media/"+item.ID+"/"+f, item.URL)
				saved, err := repo.AddMedia(ctx, u.ID, item)
				require.NoError(t, err)
				assert.Equal(t, item, saved)
			}
			items, err = repo.ListMedia(ctx, u.ID)
			require.NoError(t, err)
			require.Len(t, items, 3)
			assert.Equal(t, []string{"a.png", "b.png", "c.png"}, []string{items[0].Filename, items[1].Filename, items[2].Filename})

			_, err = repo.AddMedia(ctx, "missing", newMediaItem(api.MediaItem{Filename: "x"}, repoNow))
			assert.ErrorIs(t, err, ErrUserNotFound)

			plan, ok := planByID("pro-annual")
			require.True(t, ok)
			sub, err := repo.Subscribe(ctx, u.ID, plan)
			require.NoError(t, err)
			assert.Equal(t, "active", sub.Status)
			assert.True(t, sub.CurrentPeriodEnd.Equal(repoNow.Add(365*24*time.Hour)))

			got, err := repo.User(ctx, u.ID)
			require.NoError(t, err)
			assert.Equal(t, "pro-annual", got.Plan)

			// 续订覆盖原订阅
			plan, _ = planByID("pro")
			_, err = repo.Subscribe(ctx, u.ID, plan)
			require.NoError(t, err)
			got, err = repo.User(ctx, u.ID)
			require.NoError(t, err)
			assert.Equal(t, "pro", got.Plan)
		})
	}
}

func TestServerWithGormRepository(t *testing.T) {
	h := newHarness(t, WithRepository(repositories(t)["gorm"]))

	status, env := h.do(http.MethodPost, "/auth/register", alice)
	require.Equal(t, http.StatusCreated, status)
	id := decode[api.AuthResponse](t, env).User.ID

	status, _ = h.do(http.MethodPost, "/auth/logout", nil)
	require.Equal(t, http.StatusOK, status)

	status, env = h.do(http.MethodPost, "/auth/login", api.Credentials{Email: "ALICE@example.com", Password: alice.Password})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, id, decode[api.AuthResponse](t, env).User.ID)

	status, env = h.do(http.MethodPut, "/portfolios/me", api.SavePortfolioInput{Slug: "work", TemplateID: "nope"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "nope", env.Metadata["templateId"])
}
