package future_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"gitlab.com/tozd/go/future"
)

func TestGoExecutorSemaphore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	var running, maxRunning atomic.Int32
	launcher := &future.Launcher[int, int]{
		Callee: &future.Go[int, int]{
			Fun: func(_ context.Context, input int) (int, errors.E) {
				n := running.Add(1)
				for {
					m := maxRunning.Load()
					if n <= m || maxRunning.CompareAndSwap(m, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				running.Add(-1)
				return input * input, nil
			},
		},
		Executor: &future.GoExecutor{
			Semaphore: semaphore.NewWeighted(1),
			Limiter:   nil,
		},
		Policy: future.PolicyAsync,
	}
	errE := launcher.Init(ctx)
	require.NoError(t, errE, "% -+#.1v", errE)

	handles := []*future.Handle[int]{}
	for i := range 5 {
		h, errE := launcher.Launch(ctx, i)
		require.NoError(t, errE, "% -+#.1v", errE)
		handles = append(handles, h)
	}

	for i, h := range handles {
		output, errE := h.Get()
		assert.NoError(t, errE, "% -+#.1v", errE)
		assert.Equal(t, i*i, output)
	}

	assert.Equal(t, int32(1), maxRunning.Load())
}

func TestGoExecutorLimiter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	launcher := &future.Launcher[int, int]{
		Callee: gated(closed()),
		Executor: &future.GoExecutor{
			Semaphore: nil,
			Limiter:   rate.NewLimiter(rate.Inf, 1),
		},
		Policy: future.PolicyAsync,
	}
	errE := launcher.Init(ctx)
	require.NoError(t, errE, "% -+#.1v", errE)

	for i := range 3 {
		h, errE := launcher.Launch(ctx, i)
		require.NoError(t, errE, "% -+#.1v", errE)

		output, errE := h.Get()
		assert.NoError(t, errE, "% -+#.1v", errE)
		assert.Equal(t, i*i, output)
	}
}

func TestGoExecutorAdmissionCanceled(t *testing.T) {
	t.Parallel()

	sem := semaphore.NewWeighted(1)
	require.True(t, sem.TryAcquire(1))

	ctx, cancel := context.WithCancel(future.WithRecorder(context.Background()))

	var started atomic.Bool
	launcher := &future.Launcher[int, int]{
		Callee: &future.Go[int, int]{
			Fun: func(_ context.Context, input int) (int, errors.E) {
				started.Store(true)
				return input, nil
			},
		},
		Executor: &future.GoExecutor{
			Semaphore: sem,
			Limiter:   nil,
		},
		Policy: future.PolicyAsync,
	}
	errE := launcher.Init(ctx)
	require.NoError(t, errE, "% -+#.1v", errE)

	h, errE := launcher.Launch(ctx, 2)
	require.NoError(t, errE, "% -+#.1v", errE)

	cancel()

	output, errE := h.Get()
	assert.Equal(t, 0, output)
	assert.ErrorIs(t, errE, future.ErrComputation)
	assert.ErrorIs(t, errE, context.Canceled)
	assert.False(t, started.Load())
	assert.Equal(t, -1, future.GetRecorder(ctx).Index(h.ID(), future.EventStart))
}

func TestGoExecutorWorkerNotCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	release := make(chan struct{})
	h, errE := future.Async[int, int](ctx, &future.Go[int, int]{
		Fun: func(ctx context.Context, input int) (int, errors.E) {
			<-release
			if ctx.Err() != nil {
				return 0, errors.WithStack(ctx.Err())
			}
			return input * input, nil
		},
	}, 11)
	require.NoError(t, errE, "% -+#.1v", errE)

	cancel()
	close(release)

	output, errE := h.Get()
	assert.NoError(t, errE, "% -+#.1v", errE)
	assert.Equal(t, 121, output)
}
