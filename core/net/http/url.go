package http

import (
	"fmt"
	"net/url"
	"path"
	"slices"
	"strings"
)

// URLBuilder 提供链式调用API用于构建URL
type URLBuilder struct {
	scheme string
	host   string
	path   string
	query  url.Values
}

// NewURLBuilder 创建新的URL构建器实例
func NewURLBuilder() *URLBuilder {
	return &URLBuilder{query: make(url.Values)}
}

// FromURL 从现有URL字符串创建构建器
func FromURL(rawURL string) (*URLBuilder, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parse url: %q is not absolute", rawURL)
	}

	return &URLBuilder{
		scheme: u.Scheme,
		host:   u.Host,
		path:   u.Path,
		query:  u.Query(),
	}, nil
}

// AppendPath 追加路径段，自动处理斜杠；保留末尾斜杠
func (b *URLBuilder) AppendPath(segments ...string) *URLBuilder {
	if len(segments) == 0 {
		return b
	}

	parts := make([]string, 0, len(segments)+1)
	if b.path != "" {
		parts = append(parts, b.path)
	}
	for _, s := range segments {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return b
	}

	joined := path.Join(parts...)
	if !strings.HasPrefix(joined, "/") {
		joined = "/" + joined
	}
	if last := segments[len(segments)-1]; strings.HasSuffix(last, "/") && joined != "/" {
		joined += "/"
	}
	b.path = joined
	return b
}

// Query 添加查询参数
func (b *URLBuilder) Query(key, value string) *URLBuilder {
	b.query.Add(key, value)
	return b
}

// QueryValues 合并多值查询参数
func (b *URLBuilder) QueryValues(values url.Values) *URLBuilder {
	for k, vs := range values {
		for _, v := range vs {
			b.query.Add(k, v)
		}
	}
	return b
}

// Build 构建最终的URL字符串
func (b *URLBuilder) Build() string {
	u := &url.URL{
		Scheme: b.scheme,
		Host:   b.host,
		Path:   b.path,
	}
	if len(b.query) > 0 {
		u.RawQuery = b.query.Encode()
	}
	return u.String()
}

// Host 返回 host[:port]
func (b *URLBuilder) Host() string {
	return b.host
}

// Clone 深拷贝构建器
func (b *URLBuilder) Clone() *URLBuilder {
	c := &URLBuilder{
		scheme: b.scheme,
		host:   b.host,
		path:   b.path,
		query:  make(url.Values, len(b.query)),
	}
	for k, v := range b.query {
		c.query[k] = slices.Clone(v)
	}
	return c
}
