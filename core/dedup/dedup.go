// Package dedup collapses concurrent calls that share a key and throttles repeated
// background checks with a cooldown gate.
package dedup

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"
)

// Group runs at most one call per key at a time. Callers arriving while a call for
// the same key is in flight join it and observe the same result or error. The key
// is released as soon as the call settles, so a failure never poisons later calls.
type Group struct {
	sf       singleflight.Group
	onShared func(key string)
}

// Option configures a Group
type Option func(*Group)

// WithSharedHook is invoked each time a caller receives a result it did not produce
func WithSharedHook(fn func(key string)) Option {
	return func(g *Group) {
		g.onShared = fn
	}
}

// New creates a Group
func New(opts ...Option) *Group {
	g := &Group{}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Do runs fn under key, or joins the call already running under key.
//
// fn receives a context detached from the first caller's cancellation so one caller
// giving up does not fail everyone else. Each caller still stops waiting when its own
// ctx ends.
func Do[T any](ctx context.Context, g *Group, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	v, _, err := DoShared(ctx, g, key, fn)
	return v, err
}

// DoShared is Do and also reports whether the result came from another caller's call.
// A value returned together with an error is passed through unchanged.
func DoShared[T any](ctx context.Context, g *Group, key string, fn func(ctx context.Context) (T, error)) (T, bool, error) {
	var zero T

	// 只有发起调用的 caller 的闭包会被执行
	var ran bool
	callCtx := context.WithoutCancel(ctx)
	ch := g.sf.DoChan(key, func() (any, error) {
		ran = true
		return fn(callCtx)
	})

	select {
	case <-ctx.Done():
		return zero, false, ctx.Err()
	case res := <-ch:
		shared := !ran
		if shared && g.onShared != nil {
			g.onShared(key)
		}
		if res.Val == nil {
			return zero, shared, res.Err
		}
		v, ok := res.Val.(T)
		if !ok {
			return zero, shared, fmt.Errorf("dedup: key %q shared by calls of different result types", key)
		}
		return v, shared, res.Err
	}
}

// Forget drops the in-flight registration for key. The running call continues, but
// the next Do for key starts a new one.
func (g *Group) Forget(key string) {
	g.sf.Forget(key)
}
