package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kochabx/portfoliohub/errors"
	"github.com/kochabx/portfoliohub/log"
)

const (
	// Buffer pool constants
	defaultBufferSize = 4096
	maxBufferSize     = 1024 * 1024 // 1MB

	DefaultTimeout = 15 * time.Second
)

// Client 面向 PortfolioHub API 的 HTTP 客户端：base URL、cookie、envelope 解码和拦截器链
type Client struct {
	base    *URLBuilder
	client  *http.Client
	cookies *CookieStore
	logger  *log.Logger

	interceptors []Interceptor
	handler      Handler
}

// Option configures the HTTP client
type Option func(*Client)

// WithClient sets a custom HTTP client. Its Jar is replaced by the client's cookie store.
func WithClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// WithTimeout 设置单次请求超时
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithCookieStore 使用外部 cookie store
func WithCookieStore(store *CookieStore) Option {
	return func(c *Client) {
		c.cookies = store
	}
}

// WithLogger 设置日志
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithInterceptors 追加拦截器，第一个在最外层
func WithInterceptors(interceptors ...Interceptor) Option {
	return func(c *Client) {
		c.interceptors = append(c.interceptors, interceptors...)
	}
}

// New 创建客户端，baseURL 必须是绝对地址
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := FromURL(baseURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		base:   base,
		client: &http.Client{Timeout: DefaultTimeout},
		logger: log.G.Component("http_client"),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.cookies == nil {
		c.cookies, err = NewCookieStore(baseURL)
		if err != nil {
			return nil, err
		}
	}
	c.client.Jar = c.cookies.Jar()
	c.handler = Chain(c.send, c.interceptors...)

	return c, nil
}

// Use 追加拦截器并重建链。只能在并发使用客户端之前调用
func (c *Client) Use(interceptors ...Interceptor) {
	c.interceptors = append(c.interceptors, interceptors...)
	c.handler = Chain(c.send, c.interceptors...)
}

// Cookies 返回客户端的 cookie store
func (c *Client) Cookies() *CookieStore {
	return c.cookies
}

// Do 经过拦截器链发送请求
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if req.Method == "" {
		req.Method = MethodGet
	}
	if err := req.bufferBody(); err != nil {
		return nil, err
	}
	return c.handler(ctx, req)
}

// Request 发送请求并把 envelope 的 data 解码到 result
func (c *Client) Request(ctx context.Context, method, path string, body, result any, opts ...RequestOption) error {
	req := &Request{
		Method: method,
		Path:   path,
		Body:   body,
		Result: result,
	}
	for _, opt := range opts {
		opt(req)
	}

	_, err := c.Do(ctx, req)
	return err
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, path string, result any, opts ...RequestOption) error {
	return c.Request(ctx, MethodGet, path, nil, result, opts...)
}

// Post performs a POST request with JSON body
func (c *Client) Post(ctx context.Context, path string, body, result any, opts ...RequestOption) error {
	return c.Request(ctx, MethodPost, path, body, result, opts...)
}

// Put performs a PUT request with JSON body
func (c *Client) Put(ctx context.Context, path string, body, result any, opts ...RequestOption) error {
	return c.Request(ctx, MethodPut, path, body, result, opts...)
}

// Patch performs a PATCH request with JSON body
func (c *Client) Patch(ctx context.Context, path string, body, result any, opts ...RequestOption) error {
	return c.Request(ctx, MethodPatch, path, body, result, opts...)
}

// Delete performs a DELETE request
func (c *Client) Delete(ctx context.Context, path string, result any, opts ...RequestOption) error {
	return c.Request(ctx, MethodDelete, path, nil, result, opts...)
}

// send 是链的最内层：真正发出 HTTP 请求
func (c *Client) send(ctx context.Context, req *Request) (*Response, error) {
	requestID := uuid.NewString()

	httpReq, err := c.createRequest(ctx, req, requestID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.Network(err, "%s %s failed", req.Method, req.Path)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, errors.Network(err, "read %s %s response", req.Method, req.Path)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       body,
		Cookies:    httpResp.Cookies(),
	}

	c.logger.Debug().
		Str("method", req.Method).
		Str("path", req.Path).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Bool("retried", req.Retried).
		Dur("latency", time.Since(start)).
		Msg("request completed")

	if !isSuccess(resp.StatusCode) {
		return resp, statusError(resp, req, requestID)
	}
	if err := decodeEnvelope(body, req.Result); err != nil {
		return resp, decodeError(err, req)
	}
	return resp, nil
}

func (c *Client) createRequest(ctx context.Context, req *Request, requestID string) (*http.Request, error) {
	u := c.base.Clone().AppendPath(req.Path).QueryValues(req.Query).Build()

	var body io.Reader
	if b, ok := req.Body.([]byte); ok && b != nil {
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeNetwork, "build %s %s request", req.Method, req.Path)
	}

	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if body != nil && httpReq.Header.Get(HeaderContentType) == "" {
		httpReq.Header.Set(HeaderContentType, ContentTypeJSON)
	}
	httpReq.Header.Set(HeaderAccept, ContentTypeJSON)
	httpReq.Header.Set(HeaderRequestID, requestID)

	return httpReq, nil
}

// bufferBody 把 Body 编码成 []byte，使请求可以被重放
func (r *Request) bufferBody() error {
	switch v := r.Body.(type) {
	case nil, []byte:
		return nil
	case io.Reader:
		b, err := io.ReadAll(v)
		if err != nil {
			return errors.Wrap(err, http.StatusBadRequest, "read request body")
		}
		r.Body = b
	default:
		buf := getBuffer()
		defer putBuffer(buf)

		if err := json.NewEncoder(buf).Encode(v); err != nil {
			return errors.Wrap(err, http.StatusBadRequest, "encode request body")
		}
		r.Body = bytes.Clone(buf.Bytes())
	}
	return nil
}

var bufferPool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, defaultBufferSize))
	},
}

// getBuffer retrieves a buffer from the pool
func getBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// putBuffer returns a buffer to the pool, with size check to prevent memory leaks
func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() <= maxBufferSize {
		bufferPool.Put(buf)
	}
}
