package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"gitlab.com/tozd/go/x"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"gitlab.com/tozd/go/future"
)

func (a *App) Run(logger zerolog.Logger) errors.E {
	// We stop the process gracefully on ctrl-c and TERM signal.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx = logger.WithContext(ctx)
	if a.Record != "" {
		ctx = future.WithRecorder(ctx)
	}

	narrator := &future.Narrator{
		Out:    os.Stdout,
		Err:    os.Stderr,
		Logger: &logger,
	}

	errE := a.run(ctx, narrator)
	if errE != nil {
		return errE
	}

	if a.Record != "" {
		data, errE := x.MarshalWithoutEscapeHTML(future.GetRecorder(ctx).Events())
		if errE != nil {
			return errE
		}
		return writeFile(a.Record, string(data))
	}

	return nil
}

func (a *App) executor() *future.GoExecutor {
	e := &future.GoExecutor{
		Semaphore: nil,
		Limiter:   nil,
	}
	if a.MaxWorkers > 0 {
		e.Semaphore = semaphore.NewWeighted(a.MaxWorkers)
	}
	if a.Rate > 0 {
		e.Limiter = rate.NewLimiter(rate.Limit(a.Rate), 1)
	}
	return e
}

func (a *App) run(ctx context.Context, narrator *future.Narrator) errors.E {
	narrator.Say(future.CallerContext, "Starting the program.")

	square := &future.Square{
		Delay:    a.Delay,
		Fault:    nil,
		Narrator: narrator,
	}
	if a.Fail {
		square.Fault = future.FailAlways
	}

	launcher := &future.Launcher[int, int]{
		Callee:   square,
		Executor: a.executor(),
		Policy:   future.Policy(a.Policy),
	}
	errE := launcher.Init(ctx)
	if errE != nil {
		return errE
	}

	handle, errE := launcher.Launch(ctx, a.Input)
	if errE != nil {
		return errE
	}

	narrator.Say(future.CallerContext, "Doing other work while the calculation is in progress...")
	errE = sleep(ctx, a.Work)
	if errE != nil {
		// The worker cannot be canceled, so we still retrieve its outcome.
		_, errE2 := handle.Get()
		if errE2 != nil {
			zerolog.Ctx(ctx).Debug().Err(errE2).Str("future", handle.ID()).Msg("calculation failed")
		}
		return errE
	}
	narrator.Say(future.CallerContext, "Finished doing other work.")

	narrator.Say(future.CallerContext, "Waiting for the asynchronous calculation to finish and getting the result.")
	result, errE := handle.Get()
	if errE != nil {
		zerolog.Ctx(ctx).Debug().Err(errE).Str("future", handle.ID()).Msg("calculation failed")
		narrator.Complain(future.CallerContext, "An error occurred during asynchronous execution: %s", errE.Error())
	} else {
		narrator.Say(future.CallerContext, "Asynchronous calculation result: %d", result)
	}

	narrator.Say(future.CallerContext, "Program finished.")
	return nil
}

func sleep(ctx context.Context, d time.Duration) errors.E {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return errors.WithStack(ctx.Err())
	}
}
