package session

import (
	"sync"

	khttp "github.com/kochabx/portfoliohub/core/net/http"
)

// AuthFailure 会话刷新最终失败
type AuthFailure = khttp.AuthFailure

type observers[T any] struct {
	mu   sync.RWMutex
	next int
	fns  map[int]func(T)
}

func (o *observers[T]) subscribe(fn func(T)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.fns == nil {
		o.fns = make(map[int]func(T))
	}
	id := o.next
	o.next++
	o.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.fns, id)
			o.mu.Unlock()
		})
	}
}

func (o *observers[T]) publish(v T) {
	o.mu.RLock()
	fns := make([]func(T), 0, len(o.fns))
	for i := range o.next {
		if fn, ok := o.fns[i]; ok {
			fns = append(fns, fn)
		}
	}
	o.mu.RUnlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Events 进程内的 AuthFailure 订阅点，刷新拦截器发布，session store 订阅
type Events struct {
	obs observers[AuthFailure]
}

func NewEvents() *Events {
	return &Events{}
}

// Subscribe 注册回调，返回取消函数
func (e *Events) Subscribe(fn func(AuthFailure)) (unsubscribe func()) {
	return e.obs.subscribe(fn)
}

// Publish 同步调用所有回调，按订阅顺序
func (e *Events) Publish(f AuthFailure) {
	e.obs.publish(f)
}

var _ khttp.Publisher = (*Events)(nil)
