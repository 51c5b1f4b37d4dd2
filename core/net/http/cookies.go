package http

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"slices"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// 会话 cookie 名
const (
	CookieAccessToken  = "access_token"
	CookieRefreshToken = "refresh_token"
)

var (
	DefaultCookieNames = []string{CookieAccessToken, CookieRefreshToken}
	DefaultCookiePaths = []string{"/", "/api", "/auth"}
)

// CookieStore 包装 cookie jar，并记录清理会话 cookie 时要覆盖的 domain/path 组合
type CookieStore struct {
	jar     *cookiejar.Jar
	base    *url.URL
	apiPath string

	names   []string
	domains []string
	paths   []string
}

type CookieOption func(*CookieStore)

// WithCookieNames 设置需要清理的 cookie 名
func WithCookieNames(names ...string) CookieOption {
	return func(s *CookieStore) {
		if len(names) > 0 {
			s.names = slices.Clone(names)
		}
	}
}

// WithCookieDomains 设置额外的 cookie domain，例如 example.com 与 .example.com
func WithCookieDomains(domains ...string) CookieOption {
	return func(s *CookieStore) {
		s.domains = slices.Clone(domains)
	}
}

// WithCookiePaths 设置需要覆盖的 cookie path
func WithCookiePaths(paths ...string) CookieOption {
	return func(s *CookieStore) {
		if len(paths) > 0 {
			s.paths = slices.Clone(paths)
		}
	}
}

// NewCookieStore 创建 cookie store，baseURL 为 API 地址
func NewCookieStore(baseURL string, opts ...CookieOption) (*CookieStore, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	s := &CookieStore{
		jar:     jar,
		base:    &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"},
		apiPath: strings.TrimSuffix(u.Path, "/") + "/",
		names:   slices.Clone(DefaultCookieNames),
		paths:   slices.Clone(DefaultCookiePaths),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Jar 返回底层 cookie jar
func (s *CookieStore) Jar() http.CookieJar {
	return s.jar
}

// Get 返回发往 path 的请求会携带的 cookie 值，path 为空时使用 API 路径
func (s *CookieStore) Get(name, path string) (string, bool) {
	if path == "" {
		path = s.apiPath
	}
	u := *s.base
	u.Path = path
	for _, c := range s.jar.Cookies(&u) {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

// Set 写入 cookie，作用于 base URL 的 host
func (s *CookieStore) Set(cookies ...*http.Cookie) {
	s.jar.SetCookies(s.base, cookies)
}

// Clear 让会话 cookie 在所有 domain/path 组合下过期
func (s *CookieStore) Clear() {
	for _, path := range s.paths {
		u := *s.base
		u.Path = path

		expired := make([]*http.Cookie, 0, len(s.names))
		for _, name := range s.names {
			expired = append(expired, &http.Cookie{Name: name, Path: path, MaxAge: -1})
		}
		s.jar.SetCookies(&u, expired)

		for _, domain := range s.domains {
			du := url.URL{Scheme: s.base.Scheme, Host: strings.TrimPrefix(domain, "."), Path: path}
			expired := make([]*http.Cookie, 0, len(s.names))
			for _, name := range s.names {
				expired = append(expired, &http.Cookie{Name: name, Domain: domain, Path: path, MaxAge: -1})
			}
			s.jar.SetCookies(&du, expired)
		}
	}
}

// Targets 返回 Clear 会覆盖的 domain/path 组合，空 domain 表示 host-only cookie
func (s *CookieStore) Targets() [][2]string {
	out := make([][2]string, 0, len(s.paths)*(len(s.domains)+1))
	for _, path := range s.paths {
		out = append(out, [2]string{"", path})
		for _, domain := range s.domains {
			out = append(out, [2]string{domain, path})
		}
	}
	return out
}
