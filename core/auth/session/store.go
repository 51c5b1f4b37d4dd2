package session

import (
	"context"
	"sync"
	"time"

	"github.com/kochabx/portfoliohub/api"
	"github.com/kochabx/portfoliohub/core/dedup"
	"github.com/kochabx/portfoliohub/errors"
	"github.com/kochabx/portfoliohub/log"
)

// dedup keys
const (
	KeyCheckAuth   = "checkAuth"
	KeyLogin       = "login"
	KeyLogout      = "logout"
	KeyRefreshUser = "refreshUser"
)

// AuthAPI store 依赖的认证接口，api.Client 实现
type AuthAPI interface {
	Refresh(ctx context.Context) (*api.User, error)
	Login(ctx context.Context, email, password string) (*api.User, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*api.User, error)
	ClearSession()
	AccessTokenExpiry() time.Time
}

// Store 认证状态。所有网络调用按 key 去重，结果提交前校验代数，过期结果直接丢弃
type Store struct {
	api      AuthAPI
	group    *dedup.Group
	gate     *dedup.Gate
	events   *Events
	nav      Navigator
	notifier Notifier
	logger   *log.Logger

	mu         sync.RWMutex
	state      State
	generation uint64

	observers   observers[State]
	unsubscribe func()
}

type Option func(*Store)

func WithGroup(g *dedup.Group) Option {
	return func(s *Store) { s.group = g }
}

// WithGate 与刷新拦截器共享的冷却窗口
func WithGate(g *dedup.Gate) Option {
	return func(s *Store) { s.gate = g }
}

// WithEvents 订阅刷新失败事件
func WithEvents(e *Events) Option {
	return func(s *Store) { s.events = e }
}

func WithNavigator(n Navigator) Option {
	return func(s *Store) { s.nav = n }
}

func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func NewStore(authAPI AuthAPI, opts ...Option) *Store {
	s := &Store{
		api:    authAPI,
		logger: log.G.Component("session"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.group == nil {
		s.group = dedup.New()
	}
	if s.gate == nil {
		s.gate = dedup.NewGate(dedup.DefaultCooldown)
	}
	if s.nav == nil {
		s.nav = logNavigator{logger: s.logger}
	}
	if s.notifier == nil {
		s.notifier = logNotifier{logger: s.logger}
	}
	if s.events != nil {
		s.unsubscribe = s.events.Subscribe(s.onAuthFailure)
	}
	return s
}

// Close 取消事件订阅
func (s *Store) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// State 返回当前快照
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Session 返回当前会话，未登录时返回 nil
func (s *Store) Session() *Session {
	st := s.State()
	if !st.IsAuthenticated || st.User == nil {
		return nil
	}
	return &Session{
		UserID:               st.User.ID,
		AccessTokenExpiry:    s.api.AccessTokenExpiry(),
		RefreshCooldownUntil: s.gate.Until(),
	}
}

// Subscribe 每次状态提交后回调
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	return s.observers.subscribe(fn)
}

// CheckAuth 用 refresh cookie 恢复会话。冷却窗口内（除非 force）直接返回当前状态
func (s *Store) CheckAuth(ctx context.Context, force bool) (State, error) {
	return dedup.Do(ctx, s.group, KeyCheckAuth, func(ctx context.Context) (State, error) {
		if !s.gate.ShouldProceed(force) {
			s.logger.Debug().Time("until", s.gate.Until()).Msg("check auth skipped, cooling down")
			return s.State(), nil
		}

		gen := s.beginLoading()
		user, err := s.api.Refresh(ctx)
		switch {
		case err == nil:
			s.commit(gen, false, func(st *State) {
				st.User = user
				st.IsAuthenticated = true
			})
		case errors.IsUnauthenticated(err):
			s.commit(gen, false, func(st *State) {
				st.User = nil
				st.IsAuthenticated = false
			})
			err = nil
		default:
			// 429、网络或服务端错误：保留原有会话
			s.logger.Warn().Err(err).Str("kind", errors.KindOf(err).String()).Msg("check auth failed")
			s.commit(gen, false, func(*State) {})
		}
		return s.State(), err
	})
}

// Login 登录成功后跳转到 dashboard；失败时重置状态并返回 *LoginError
func (s *Store) Login(ctx context.Context, email, password string) (*api.User, error) {
	return dedup.Do(ctx, s.group, KeyLogin, func(ctx context.Context) (*api.User, error) {
		gen := s.beginLoading()
		user, err := s.api.Login(ctx, email, password)
		if err != nil {
			lerr := classifyLogin(err)
			s.commit(gen, false, func(st *State) {
				st.User = nil
				st.IsAuthenticated = false
			})
			s.logger.Info().Err(err).Str("reason", lerr.Kind.String()).Msg("login failed")
			s.notifier.Notify(LevelError, lerr.Message)
			return nil, lerr
		}

		if !s.commit(gen, true, func(st *State) {
			st.User = user
			st.IsAuthenticated = true
		}) {
			return nil, ErrSuperseded
		}
		s.gate.Reset()
		s.nav.Navigate(PathDashboard)
		return user, nil
	})
}

type logoutOptions struct {
	silent bool
}

type LogoutOption func(*logoutOptions)

// Silent 不提示用户，用于会话失效后的被动登出
func Silent() LogoutOption {
	return func(o *logoutOptions) { o.silent = true }
}

// Logout 通知服务端失效会话（失败只记录），总是清理本地状态和 cookie 并跳转到登录页
func (s *Store) Logout(ctx context.Context, opts ...LogoutOption) error {
	o := &logoutOptions{}
	for _, opt := range opts {
		opt(o)
	}

	_, err := dedup.Do(ctx, s.group, KeyLogout, func(ctx context.Context) (struct{}, error) {
		if err := s.api.Logout(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("server logout failed, clearing local session anyway")
		}

		s.reset()
		s.api.ClearSession()
		if !o.silent {
			s.notifier.Notify(LevelInfo, "You have been signed out.")
		}
		s.nav.Navigate(PathSignIn)
		return struct{}{}, nil
	})
	return err
}

// RefreshUser 重新拉取用户资料。401/403 触发静默登出（每次会话失效只登出一次），其他错误保留旧资料
func (s *Store) RefreshUser(ctx context.Context) (*api.User, error) {
	return dedup.Do(ctx, s.group, KeyRefreshUser, func(ctx context.Context) (*api.User, error) {
		gen := s.currentGeneration()
		user, err := s.api.Me(ctx)
		if err != nil {
			// 刷新失败事件已经重置过状态时不再重复登出
			if errors.IsUnauthenticated(err) && s.currentGeneration() == gen {
				_ = s.Logout(ctx, Silent())
			}
			return nil, err
		}

		if !s.commit(gen, false, func(st *State) {
			st.User = user
		}) {
			return nil, ErrSuperseded
		}
		return user, nil
	})
}

func (s *Store) onAuthFailure(e AuthFailure) {
	s.logger.Info().Err(e.Reason).Bool("redirect", e.ShouldRedirect).Msg("session expired")
	s.reset()
	if e.ShouldRedirect {
		s.nav.Navigate(PathSignIn)
	}
}

func (s *Store) currentGeneration() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

func (s *Store) beginLoading() uint64 {
	s.mu.Lock()
	s.state.Loading = true
	gen := s.generation
	snapshot := s.state.clone()
	s.mu.Unlock()

	s.observers.publish(snapshot)
	return gen
}

// commit 在代数未变时应用 fn，advance 使之前开始的调用结果失效
func (s *Store) commit(gen uint64, advance bool, fn func(*State)) bool {
	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		s.logger.Debug().Uint64("generation", gen).Msg("discarding stale result")
		return false
	}
	fn(&s.state)
	s.state.Loading = false
	s.state.Initialized = true
	if advance {
		s.generation++
	}
	snapshot := s.state.clone()
	s.mu.Unlock()

	s.observers.publish(snapshot)
	return true
}

// reset 清空会话并使所有在途结果失效
func (s *Store) reset() {
	s.mu.Lock()
	s.generation++
	s.state = State{Initialized: true}
	snapshot := s.state
	s.mu.Unlock()

	s.observers.publish(snapshot)
}
