package http

import (
	"maps"
	"net/http"
	"net/url"
)

// Request 是拦截器链上传递的请求描述。Body 在发送前被编码成字节，重放时复用
type Request struct {
	Method string
	// Path 相对 base URL 的路径
	Path   string
	Query  url.Values
	Header http.Header
	// Body 为 nil、[]byte、io.Reader 或可 JSON 编码的值
	Body any
	// Result 非 nil 时把响应 envelope 的 data 解码进去
	Result any

	// Retried 标记刷新后的重放请求，重放请求不会再次触发刷新
	Retried bool
	// SkipRefresh 该请求的 401/403 直接返回给调用方
	SkipRefresh bool

	refresh bool
}

// NewRefreshRequest 构造刷新请求。刷新请求既不触发刷新也不做 429 退避
func NewRefreshRequest(path string) *Request {
	if path == "" {
		path = DefaultRefreshPath
	}
	return &Request{
		Method:      MethodPost,
		Path:        path,
		SkipRefresh: true,
		refresh:     true,
	}
}

// IsRefresh 是否为刷新请求
func (r *Request) IsRefresh() bool {
	return r.refresh
}

// RequestOption 修改单个请求
type RequestOption func(*Request)

// WithHeader 设置请求头
func WithHeader(header map[string]string) RequestOption {
	return func(r *Request) {
		if r.Header == nil {
			r.Header = make(http.Header, len(header))
		}
		for k, v := range header {
			r.Header.Set(k, v)
		}
	}
}

// WithQuery 设置查询参数
func WithQuery(query url.Values) RequestOption {
	return func(r *Request) {
		if r.Query == nil {
			r.Query = make(url.Values, len(query))
		}
		for k, vs := range query {
			r.Query[k] = append(r.Query[k], vs...)
		}
	}
}

// WithoutRefresh 401/403 不触发会话刷新，用于登录、注册等接口
func WithoutRefresh() RequestOption {
	return func(r *Request) {
		r.SkipRefresh = true
	}
}

// Clone 浅拷贝请求，Header 和 Query 深拷贝
func (r *Request) Clone() *Request {
	c := *r
	if r.Header != nil {
		c.Header = r.Header.Clone()
	}
	if r.Query != nil {
		c.Query = make(url.Values, len(r.Query))
		maps.Copy(c.Query, r.Query)
	}
	return &c
}

// Response 原始响应，Body 已读完
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Cookies    []*http.Cookie
}
