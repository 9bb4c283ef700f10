package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_BoundsConcurrency(t *testing.T) {
	pool := NewPool(2)
	ctx := context.Background()

	var current, peak atomic.Int32
	futures := make([]*Future[int], 0, 10)
	for i := 0; i < 10; i++ {
		i := i
		futures = append(futures, Submit(ctx, pool, func(context.Context) (int, error) {
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			current.Add(-1)
			return i, nil
		}))
	}

	for i, f := range futures {
		v, err := f.Wait(ctx)
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}
	assert.Equal(t, int32(2), peak.Load())

	assert.Eventually(t, func() bool {
		running, queued := pool.Stats()
		return running == 0 && queued == 0
	}, time.Second, 5*time.Millisecond)
}

func TestPool_RunsInSubmissionOrder(t *testing.T) {
	pool := NewPool(1)
	ctx := context.Background()

	var mu sync.Mutex
	var order []int
	futures := make([]*Future[struct{}], 0, 5)
	for i := 0; i < 5; i++ {
		i := i
		futures = append(futures, Submit(ctx, pool, func(context.Context) (struct{}, error) {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
			return struct{}{}, nil
		}))
	}

	for _, f := range futures {
		_, err := f.Wait(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestPool_FailuresFreeSlots(t *testing.T) {
	pool := NewPool(1)
	ctx := context.Background()

	failed := Submit(ctx, pool, func(context.Context) (string, error) {
		return "", errors.New("boom")
	})
	panicked := Submit(ctx, pool, func(context.Context) (string, error) {
		panic("bad job")
	})
	ok := Submit(ctx, pool, func(context.Context) (string, error) {
		return "done", nil
	})

	_, err := failed.Wait(ctx)
	assert.EqualError(t, err, "boom")

	_, err = panicked.Wait(ctx)
	assert.ErrorContains(t, err, "bad job")

	v, err := ok.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "done", v)
}

func TestFuture_WaitHonoursContext(t *testing.T) {
	pool := NewPool(1)
	release := make(chan struct{})
	defer close(release)

	f := Submit(context.Background(), pool, func(context.Context) (int, error) {
		<-release
		return 1, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := f.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewPool_DefaultLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NewPool(0).Limit())
	assert.Equal(t, 3, NewPool(3).Limit())
}
