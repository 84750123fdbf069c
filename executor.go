package future

import (
	"context"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Executor runs tasks concurrently with the caller.
type Executor interface {
	// Execute schedules task and returns without waiting for it.
	//
	// If the task cannot be admitted, it is still called, with a non-nil
	// error, so that it can report the failure.
	Execute(ctx context.Context, task func(ctx context.Context, errE errors.E))
}

var _ Executor = (*GoExecutor)(nil)

// GoExecutor runs every task in its own goroutine.
//
// Admission controls are optional and are waited on inside the spawned
// goroutine, so Execute never blocks.
type GoExecutor struct {
	// Semaphore, if set, bounds the number of tasks running at the same time.
	// Each task acquires a weight of 1.
	Semaphore *semaphore.Weighted

	// Limiter, if set, bounds the rate at which tasks start.
	Limiter *rate.Limiter
}

// Execute implements [Executor] interface.
func (e *GoExecutor) Execute(ctx context.Context, task func(ctx context.Context, errE errors.E)) {
	go func() {
		errE := e.admit(ctx)
		if errE != nil {
			task(ctx, errE)
			return
		}
		if e.Semaphore != nil {
			defer e.Semaphore.Release(1)
		}
		task(ctx, nil)
	}()
}

func (e *GoExecutor) admit(ctx context.Context) errors.E {
	if e.Limiter != nil {
		err := e.Limiter.Wait(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
	}
	if e.Semaphore != nil {
		err := e.Semaphore.Acquire(ctx, 1)
		if err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}
