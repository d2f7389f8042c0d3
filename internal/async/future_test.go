package async_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"SportHub/internal/async"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestGo_ResolvesAfterLatency(t *testing.T) {
	start := time.Now()
	f := async.Go(context.Background(), async.Fixed(30*time.Millisecond), func(context.Context) (int, error) {
		return 42, nil
	})

	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestGo_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	f := async.Go(context.Background(), async.None, func(context.Context) (string, error) {
		return "", boom
	})

	res := f.Result()
	assert.False(t, res.OK())
	assert.ErrorIs(t, res.Err, boom)
}

func TestGo_CancelBeforeDelaySkipsOperation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var ran atomic.Bool

	f := async.Go(ctx, async.Fixed(time.Hour), func(context.Context) (int, error) {
		ran.Store(true)
		return 1, nil
	})
	cancel()

	_, err := f.Await(context.Background())
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran.Load())
}

func TestAwait_WaiterTimeoutLeavesOperationRunning(t *testing.T) {
	f := async.Go(context.Background(), async.Fixed(40*time.Millisecond), func(context.Context) (int, error) {
		return 7, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	_, err := f.Await(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestGo_CompletionFollowsDelayNotCallOrder(t *testing.T) {
	order := make(chan string, 2)

	slow := async.Go(context.Background(), async.Fixed(60*time.Millisecond), func(context.Context) (string, error) {
		order <- "slow"
		return "slow", nil
	})
	fast := async.Go(context.Background(), async.Fixed(5*time.Millisecond), func(context.Context) (string, error) {
		order <- "fast"
		return "fast", nil
	})

	_ = slow.Result()
	_ = fast.Result()

	assert.Equal(t, "fast", <-order)
	assert.Equal(t, "slow", <-order)
}

func TestGo_RecoversPanic(t *testing.T) {
	f := async.Go(context.Background(), async.None, func(context.Context) (int, error) {
		panic("kaboom")
	})

	_, err := f.Await(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestThen(t *testing.T) {
	f := async.Go(context.Background(), async.None, func(context.Context) ([]int, error) {
		return []int{1, 2, 3}, nil
	})
	n := async.Then(f, func(xs []int) (int, error) { return len(xs), nil })

	v, err := n.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	var called atomic.Bool
	failed := async.Then(async.Resolved(0, errors.New("nope")), func(int) (int, error) {
		called.Store(true)
		return 0, nil
	})
	_, err = failed.Await(context.Background())
	assert.EqualError(t, err, "nope")
	assert.False(t, called.Load())
}

func TestUniform_StaysInRange(t *testing.T) {
	lat := async.Uniform(5*time.Millisecond, 15*time.Millisecond)
	for range 5 {
		start := time.Now()
		require.NoError(t, lat.Wait(context.Background()))
		assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
	}
}

func TestNone_HonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, async.None.Wait(ctx), context.Canceled)
}
