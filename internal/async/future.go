// Package async presents synchronous operations as latency-bearing deferred
// results, the shape a remote API call would have.
package async

import (
	"context"
	"fmt"
)

// Result is the outcome of a deferred operation: exactly one of Value or Err
// is meaningful.
type Result[V any] struct {
	Value V
	Err   error
}

func (r Result[V]) OK() bool { return r.Err == nil }

// Future resolves once its operation has run, or once its context ended
// before the operation started.
type Future[V any] struct {
	done chan struct{}
	res  Result[V]
}

// Go waits for lat and then runs fn on its own goroutine. If ctx ends during
// the wait, fn never runs and the future resolves with ctx.Err().
func Go[V any](ctx context.Context, lat Latency, fn func(context.Context) (V, error)) *Future[V] {
	if lat == nil {
		lat = None
	}
	f := &Future[V]{done: make(chan struct{})}

	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				var zero V
				f.res = Result[V]{Value: zero, Err: fmt.Errorf("async: operation panicked: %v", r)}
			}
		}()

		if err := lat.Wait(ctx); err != nil {
			f.res.Err = err
			return
		}
		f.res.Value, f.res.Err = fn(ctx)
	}()

	return f
}

// Resolved returns a future that is already complete.
func Resolved[V any](v V, err error) *Future[V] {
	f := &Future[V]{done: make(chan struct{}), res: Result[V]{Value: v, Err: err}}
	close(f.done)
	return f
}

// Then derives a future from f's value. fn is not called when f failed.
func Then[V, W any](f *Future[V], fn func(V) (W, error)) *Future[W] {
	out := &Future[W]{done: make(chan struct{})}

	go func() {
		defer close(out.done)
		res := f.Result()
		if res.Err != nil {
			out.res.Err = res.Err
			return
		}
		out.res.Value, out.res.Err = fn(res.Value)
	}()

	return out
}

func (f *Future[V]) Done() <-chan struct{} { return f.done }

// Await blocks until the future resolves or ctx ends. Giving up on a future
// does not cancel its operation; cancel the context passed to Go for that.
func (f *Future[V]) Await(ctx context.Context) (V, error) {
	select {
	case <-f.done:
		return f.res.Value, f.res.Err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

// Result blocks until the future resolves.
func (f *Future[V]) Result() Result[V] {
	<-f.done
	return f.res
}
