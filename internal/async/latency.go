package async

import (
	"context"
	"math/rand/v2"
	"time"
)

// Latency delays an operation before it runs. Wait returns ctx.Err() when the
// context ends first.
type Latency interface {
	Wait(ctx context.Context) error
}

type LatencyFunc func(ctx context.Context) error

func (f LatencyFunc) Wait(ctx context.Context) error { return f(ctx) }

// None runs operations immediately, unless ctx is already done.
var None Latency = LatencyFunc(func(ctx context.Context) error { return ctx.Err() })

// Fixed delays every operation by d.
func Fixed(d time.Duration) Latency {
	return LatencyFunc(func(ctx context.Context) error { return sleep(ctx, d) })
}

// Uniform delays every operation by a random duration in [lo, hi].
func Uniform(lo, hi time.Duration) Latency {
	if hi < lo {
		lo, hi = hi, lo
	}
	if hi == lo {
		return Fixed(lo)
	}
	span := int64(hi - lo)
	return LatencyFunc(func(ctx context.Context) error {
		return sleep(ctx, lo+time.Duration(rand.Int64N(span+1)))
	})
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
