package http

import "context"

// Handler 执行一次请求。出错时 Response 可能非 nil（例如非 2xx 响应）
type Handler func(ctx context.Context, req *Request) (*Response, error)

// Interceptor 包装 Handler，在请求前后插入逻辑
type Interceptor func(next Handler) Handler

// Chain 组合拦截器，第一个在最外层
func Chain(h Handler, interceptors ...Interceptor) Handler {
	for i := len(interceptors) - 1; i >= 0; i-- {
		h = interceptors[i](h)
	}
	return h
}
