package session

import "github.com/kochabx/portfoliohub/log"

const (
	PathDashboard = "/dashboard"
	PathSignIn    = "/signin"
)

// Navigator 页面跳转
type Navigator interface {
	Navigate(path string)
}

type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

type Level int

const (
	LevelInfo Level = iota
	LevelError
)

// Notifier 面向用户的提示
type Notifier interface {
	Notify(level Level, message string)
}

type NotifierFunc func(level Level, message string)

func (f NotifierFunc) Notify(level Level, message string) { f(level, message) }

type logNavigator struct{ logger *log.Logger }

func (n logNavigator) Navigate(path string) {
	n.logger.Info().Str("path", path).Msg("navigate")
}

type logNotifier struct{ logger *log.Logger }

func (n logNotifier) Notify(level Level, message string) {
	if level == LevelError {
		n.logger.Warn().Msg(message)
		return
	}
	n.logger.Info().Msg(message)
}
