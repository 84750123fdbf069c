package future

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

var _ Callee[int, int] = (*Square)(nil)

// Square implements [Callee] interface by squaring its input after
// a simulated delay.
type Square struct {
	// Delay simulates blocking work. It is not interrupted when
	// the context is canceled.
	Delay time.Duration

	// Fault is called after the delay. If it returns an error,
	// the calculation fails with it.
	Fault func(n int) errors.E

	// Narrator narrates the calculation in the worker context.
	Narrator *Narrator

	initialized bool
}

// Init implements [Callee] interface.
func (s *Square) Init(_ context.Context) errors.E {
	if s.initialized {
		return errors.WithStack(ErrAlreadyInitialized)
	}

	if s.Delay < 0 {
		errE := errors.WithStack(ErrInvalidDelay)
		errors.Details(errE)["delay"] = s.Delay.String()
		return errE
	}

	s.initialized = true
	return nil
}

// Call implements [Callee] interface.
func (s *Square) Call(ctx context.Context, n int) (int, errors.E) {
	if !s.initialized {
		return 0, errors.WithStack(ErrNotInitialized)
	}

	logger := zerolog.Ctx(ctx)

	s.Narrator.Say(WorkerContext, "Starting calculation for %d...", n)
	logger.Debug().Int("input", n).Dur("delay", s.Delay).Msg("calculation started")

	time.Sleep(s.Delay)

	if s.Fault != nil {
		errE := s.Fault(n)
		if errE != nil {
			return 0, errE
		}
	}

	result, ok := square(n)
	if !ok {
		errE := errors.WithStack(ErrOverflow)
		errors.Details(errE)["input"] = n
		return 0, errE
	}
	s.Narrator.Say(WorkerContext, "Calculation for %d finished. Result: %d", n, result)
	logger.Debug().Int("input", n).Int("result", result).Msg("calculation finished")

	return result, nil
}

// FailAlways can be used as [Square] Fault to make every calculation fail.
func FailAlways(n int) errors.E {
	errE := errors.WithStack(ErrSimulatedFault)
	errors.Details(errE)["input"] = n
	return errE
}

// square returns n*n and false if the result does not fit into int.
func square(n int) (int, bool) {
	if n == 0 {
		return 0, true
	}
	if n == math.MinInt {
		return 0, false
	}
	a := n
	if a < 0 {
		a = -a
	}
	if a > math.MaxInt/a {
		return 0, false
	}
	return n * n, true
}
