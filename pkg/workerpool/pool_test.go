package workerpool_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/groupcart/pkg/logger"
	"github.com/shashiranjanraj/groupcart/pkg/workerpool"
)

func TestPool_SubmitAndExecute(t *testing.T) {
	pool := workerpool.New(4, logger.Discard())

	const n = 100
	var count atomic.Int64
	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		err := pool.SubmitWait(context.Background(), "count", func(context.Context) error {
			defer wg.Done()
			count.Add(1)
			return nil
		})
		require.NoError(t, err)
	}

	wg.Wait()
	assert.EqualValues(t, n, count.Load())
	require.NoError(t, pool.Shutdown(context.Background()))
}

func TestPool_ErrPoolFull(t *testing.T) {
	pool := workerpool.New(1, logger.Discard())

	blocker := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, pool.Submit("block", func(context.Context) error {
		close(started)
		<-blocker
		return nil
	}))
	<-started

	// The queue holds 2× the worker count.
	noop := func(context.Context) error { return nil }
	require.NoError(t, pool.Submit("noop", noop))
	require.NoError(t, pool.Submit("noop", noop))

	assert.ErrorIs(t, pool.Submit("noop", noop), workerpool.ErrPoolFull)

	close(blocker)
	require.NoError(t, pool.Shutdown(context.Background()))
}

func TestPool_ErrPoolClosed(t *testing.T) {
	pool := workerpool.New(2, logger.Discard())
	require.NoError(t, pool.Shutdown(context.Background()))
	require.NoError(t, pool.Shutdown(context.Background()))

	err := pool.Submit("late", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, workerpool.ErrPoolClosed)
}

func TestPool_FailuresAndPanicsDoNotKillWorkers(t *testing.T) {
	pool := workerpool.New(1, logger.Discard())

	require.NoError(t, pool.SubmitWait(context.Background(), "fails", func(context.Context) error {
		return errors.New("smtp down")
	}))
	require.NoError(t, pool.SubmitWait(context.Background(), "panics", func(context.Context) error {
		panic("boom")
	}))

	ran := make(chan struct{})
	require.NoError(t, pool.SubmitWait(context.Background(), "after", func(context.Context) error {
		close(ran)
		return nil
	}))

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive a failing job")
	}
	require.NoError(t, pool.Shutdown(context.Background()))
}

func TestPool_ShutdownDeadlineCancelsJobs(t *testing.T) {
	pool := workerpool.New(1, logger.Discard())

	started := make(chan struct{})
	require.NoError(t, pool.Submit("slow", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, pool.Shutdown(ctx), context.DeadlineExceeded)
}
