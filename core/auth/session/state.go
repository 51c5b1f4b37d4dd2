package session

import (
	"time"

	"github.com/kochabx/portfoliohub/api"
)

// State store 的快照
type State struct {
	User            *api.User
	IsAuthenticated bool
	Loading         bool
	Initialized     bool
}

// Session 当前登录会话
type Session struct {
	UserID               string
	AccessTokenExpiry    time.Time
	RefreshCooldownUntil time.Time
}

func (s State) clone() State {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}
