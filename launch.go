package future

import (
	"context"
	"runtime/debug"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"gitlab.com/tozd/identifier"
)

// Policy controls where and when a launched worker runs.
type Policy string

const (
	// PolicyAsync runs the worker concurrently with the caller, using the executor.
	PolicyAsync Policy = "async"
	// PolicyDeferred runs the worker lazily, only once [Handle.Get] is called.
	// Get waits for it in the same way as for PolicyAsync.
	PolicyDeferred Policy = "deferred"
)

var _ Callee[any, any] = (*Launcher[any, any])(nil)

// Launcher launches its callee and returns a handle to its eventual output.
//
// Launcher implements [Callee] interface as well. Its Call launches the callee
// and waits for the output.
type Launcher[Input, Output any] struct {
	Callee Callee[Input, Output]

	// Executor runs workers with PolicyAsync. Default is a GoExecutor
	// without admission controls.
	Executor Executor

	// Policy is PolicyAsync by default.
	Policy Policy

	initialized bool
}

// Init implements [Callee] interface.
func (l *Launcher[Input, Output]) Init(ctx context.Context) errors.E {
	if l.initialized {
		return errors.WithStack(ErrAlreadyInitialized)
	}

	switch l.Policy {
	case "":
		l.Policy = PolicyAsync
	case PolicyAsync, PolicyDeferred:
	default:
		errE := errors.WithStack(ErrInvalidPolicy)
		errors.Details(errE)["policy"] = string(l.Policy)
		return errE
	}

	if l.Callee == nil {
		return errors.New("callee is missing")
	}
	if l.Executor == nil {
		l.Executor = &GoExecutor{
			Semaphore: nil,
			Limiter:   nil,
		}
	}

	errE := l.Callee.Init(ctx)
	if errE != nil {
		return errE
	}

	l.initialized = true
	return nil
}

// Launch starts the callee with input and returns without waiting for it.
//
// The worker is not canceled when ctx is. Only waiting for admission
// by the executor honors ctx.
func (l *Launcher[Input, Output]) Launch(ctx context.Context, input Input) (*Handle[Output], errors.E) {
	if !l.initialized {
		return nil, errors.WithStack(ErrNotInitialized)
	}

	id := identifier.New().String()
	recorder := GetRecorder(ctx)
	h := newHandle[Output](id, recorder)

	logger := zerolog.Ctx(ctx).With().Str("future", id).Logger()
	ctx = logger.WithContext(ctx)

	work := func(ctx context.Context) {
		var output Output
		var errE errors.E
		returned := false
		defer func() {
			if !returned {
				errE = computationError(errors.New("worker exited without result"))
			}
			if errE != nil {
				logger.Debug().Err(errE).Msg("worker failed")
			} else {
				logger.Debug().Msg("worker completed")
			}
			h.resolve(output, errE)
		}()

		recorder.record(id, EventStart, nil)
		output, errE = call(ctx, l.Callee, input)
		returned = true
	}

	recorder.record(id, EventLaunch, nil)
	logger.Debug().Str("policy", string(l.Policy)).Msg("launched")

	switch l.Policy {
	case PolicyDeferred:
		h.run = func() {
			work(context.WithoutCancel(ctx))
		}
	default:
		l.Executor.Execute(ctx, func(ctx context.Context, errE errors.E) {
			if errE != nil {
				var zero Output
				logger.Debug().Err(errE).Msg("worker not admitted")
				h.resolve(zero, computationError(errE))
				return
			}
			work(context.WithoutCancel(ctx))
		})
	}

	return h, nil
}

// Call implements [Callee] interface.
func (l *Launcher[Input, Output]) Call(ctx context.Context, input Input) (Output, errors.E) {
	h, errE := l.Launch(ctx, input)
	if errE != nil {
		var zero Output
		return zero, errE
	}
	return h.Get()
}

// Async initializes callee and launches it with input using
// the default executor and PolicyAsync.
func Async[Input, Output any](ctx context.Context, callee Callee[Input, Output], input Input) (*Handle[Output], errors.E) {
	l := &Launcher[Input, Output]{
		Callee:      callee,
		Executor:    nil,
		Policy:      PolicyAsync,
		initialized: false,
	}
	errE := l.Init(ctx)
	if errE != nil {
		return nil, errE
	}
	return l.Launch(ctx, input)
}

// call calls the callee and converts any abnormal termination into
// an error wrapping ErrComputation.
func call[Input, Output any](ctx context.Context, callee Callee[Input, Output], input Input) (output Output, errE errors.E) { //nolint:nonamedreturns
	defer func() {
		if v := recover(); v != nil {
			var zero Output
			output = zero
			errE = panicError(v)
		}
	}()

	output, errE = callee.Call(ctx, input)
	if errE != nil {
		var zero Output
		return zero, computationError(errE)
	}
	return output, nil
}

func computationError(err error) errors.E {
	if errors.Is(err, ErrComputation) {
		return errors.WithStack(err)
	}
	return errors.Prefix(err, ErrComputation)
}

func panicError(v any) errors.E {
	err, ok := v.(error)
	if !ok {
		err = errors.Errorf("panic: %v", v)
	}
	return errors.WithDetails(computationError(err), "panic", v, "stack", string(debug.Stack()))
}
