package devserver

import (
	"context"
	"maps"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kochabx/portfoliohub/api"
	"github.com/kochabx/portfoliohub/errors"
)

var (
	ErrUsernameTaken  = errors.Conflict("username taken")
	ErrEmailTaken     = errors.Conflict("email already registered")
	ErrUserNotFound   = errors.NotFound("user not found")
	ErrNoPortfolio    = errors.NotFound("portfolio not found")
	ErrPlanNotFound   = errors.NotFound("plan not found")
	ErrTemplateAbsent = errors.New(http.StatusUnprocessableEntity, "unknown template")
)

// Repository 账号数据。返回值均为副本，调用方可以随意修改
type Repository interface {
	CreateUser(ctx context.Context, in api.RegisterInput, hash []byte) (api.User, error)
	// Credentials 按邮箱查找，大小写不敏感
	Credentials(ctx context.Context, email string) (api.User, []byte, error)
	User(ctx context.Context, id string) (api.User, error)
	UpdateUser(ctx context.Context, id string, in api.UpdateUserInput) (api.User, error)

	Portfolio(ctx context.Context, userID string) (api.Portfolio, error)
	SavePortfolio(ctx context.Context, userID string, in api.SavePortfolioInput) (api.Portfolio, error)
	Publish(ctx context.Context, userID string, published bool) (api.Portfolio, error)
	// PublicPortfolio 只返回已发布的作品集
	PublicPortfolio(ctx context.Context, username, slug string) (api.Portfolio, error)

	// AddMedia 保存 newMediaItem 生成的条目
	AddMedia(ctx context.Context, userID string, item api.MediaItem) (api.MediaItem, error)
	ListMedia(ctx context.Context, userID string) ([]api.MediaItem, error)

	Subscribe(ctx context.Context, userID string, plan api.Plan) (api.Subscription, error)
}

type account struct {
	user         api.User
	passwordHash []byte
	portfolio    *api.Portfolio
	media        []api.MediaItem
	subscription *api.Subscription
}

// memoryRepository 进程内实现，重启即丢失
type memoryRepository struct {
	mu         sync.RWMutex
	accounts   map[string]*account
	byEmail    map[string]string
	byUsername map[string]string
	now        func() time.Time
}

func newMemoryRepository(now func() time.Time) *memoryRepository {
	return &memoryRepository{
		accounts:   make(map[string]*account),
		byEmail:    make(map[string]string),
		byUsername: make(map[string]string),
		now:        now,
	}
}

func (r *memoryRepository) CreateUser(_ context.Context, in api.RegisterInput, hash []byte) (api.User, error) {
	email := strings.ToLower(in.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUsername[in.Username]; ok {
		return api.User{}, ErrUsernameTaken
	}
	if _, ok := r.byEmail[email]; ok {
		return api.User{}, ErrEmailTaken
	}

	u := newUser(in)
	r.accounts[u.ID] = &account{user: u, passwordHash: hash}
	r.byEmail[email] = u.ID
	r.byUsername[u.Username] = u.ID
	return u, nil
}

func (r *memoryRepository) Credentials(_ context.Context, email string) (api.User, []byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acc, ok := r.accounts[r.byEmail[strings.ToLower(email)]]
	if !ok {
		return api.User{}, nil, ErrUserNotFound
	}
	return acc.user, acc.passwordHash, nil
}

func (r *memoryRepository) User(_ context.Context, id string) (api.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acc, ok := r.accounts[id]
	if !ok {
		return api.User{}, ErrUserNotFound
	}
	return acc.user, nil
}

func (r *memoryRepository) UpdateUser(_ context.Context, id string, in api.UpdateUserInput) (api.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.accounts[id]
	if !ok {
		return api.User{}, ErrUserNotFound
	}
	applyUserUpdate(&acc.user, in)
	return acc.user, nil
}

func (r *memoryRepository) Portfolio(_ context.Context, userID string) (api.Portfolio, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acc, ok := r.accounts[userID]
	if !ok {
		return api.Portfolio{}, ErrUserNotFound
	}
	if acc.portfolio == nil {
		return api.Portfolio{}, ErrNoPortfolio
	}
	return clonePortfolio(acc.portfolio), nil
}

func (r *memoryRepository) SavePortfolio(_ context.Context, userID string, in api.SavePortfolioInput) (api.Portfolio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.accounts[userID]
	if !ok {
		return api.Portfolio{}, ErrUserNotFound
	}
	p := acc.portfolio
	if p == nil {
		p = &api.Portfolio{Username: acc.user.Username}
		acc.portfolio = p
	}
	p.Slug = in.Slug
	p.TemplateID = in.TemplateID
	p.Content = maps.Clone(in.Content)
	p.Theme = maps.Clone(in.Theme)
	p.SEO = in.SEO
	p.UpdatedAt = r.now()
	return clonePortfolio(p), nil
}

func (r *memoryRepository) Publish(_ context.Context, userID string, published bool) (api.Portfolio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.accounts[userID]
	if !ok {
		return api.Portfolio{}, ErrUserNotFound
	}
	if acc.portfolio == nil {
		return api.Portfolio{}, ErrNoPortfolio
	}
	acc.portfolio.Published = published
	acc.portfolio.UpdatedAt = r.now()
	return clonePortfolio(acc.portfolio), nil
}

func (r *memoryRepository) PublicPortfolio(_ context.Context, username, slug string) (api.Portfolio, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acc, ok := r.accounts[r.byUsername[username]]
	if !ok || acc.portfolio == nil || !acc.portfolio.Published || acc.portfolio.Slug != slug {
		return api.Portfolio{}, ErrNoPortfolio
	}
	return clonePortfolio(acc.portfolio), nil
}

func (r *memoryRepository) AddMedia(_ context.Context, userID string, item api.MediaItem) (api.MediaItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.accounts[userID]
	if !ok {
		return api.MediaItem{}, ErrUserNotFound
	}
	acc.media = append(acc.media, item)
	return item, nil
}

func (r *memoryRepository) ListMedia(_ context.Context, userID string) ([]api.MediaItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acc, ok := r.accounts[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	out := make([]api.MediaItem, len(acc.media))
	copy(out, acc.media)
	return out, nil
}

func (r *memoryRepository) Subscribe(_ context.Context, userID string, plan api.Plan) (api.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.accounts[userID]
	if !ok {
		return api.Subscription{}, ErrUserNotFound
	}
	sub := newSubscription(plan, r.now())
	acc.subscription = &sub
	acc.user.Plan = plan.ID
	return sub, nil
}

func newUser(in api.RegisterInput) api.User {
	return api.User{
		ID:       uuid.NewString(),
		Email:    strings.ToLower(in.Email),
		Username: in.Username,
		Name:     in.Name,
		Role:     "user",
		Plan:     "free",
	}
}

func applyUserUpdate(u *api.User, in api.UpdateUserInput) {
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.AvatarURL != nil {
		u.AvatarURL = *in.AvatarURL
	}
}

func newMediaItem(item api.MediaItem, now time.Time) api.MediaItem {
	item.ID = uuid.NewString()
	item.URL = "/media/" + item.ID + "/" + item.Filename
	item.CreatedAt = now
	return item
}

func newSubscription(plan api.Plan, now time.Time) api.Subscription {
	period := 30 * 24 * time.Hour
	if plan.Interval == "year" {
		period = 365 * 24 * time.Hour
	}
	return api.Subscription{
		PlanID:           plan.ID,
		Status:           "active",
		CurrentPeriodEnd: now.Add(period),
	}
}

func clonePortfolio(p *api.Portfolio) api.Portfolio {
	out := *p
	out.Content = maps.Clone(p.Content)
	out.Theme = maps.Clone(p.Theme)
	return out
}
