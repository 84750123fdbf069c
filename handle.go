package future

import (
	"fmt"
	"sync"
	"sync/atomic"

	"gitlab.com/tozd/go/errors"
)

// State of a [Handle].
type State int

const (
	// StatePending means that the worker has not yet completed.
	StatePending State = iota
	// StateSucceeded means that the worker completed and produced an output.
	StateSucceeded
	// StateFailed means that the worker terminated abnormally.
	StateFailed
	// StateConsumed means that the outcome has been retrieved.
	StateConsumed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateConsumed:
		return "consumed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Handle is a single-assignment cell holding the eventual outcome of a
// launched computation.
//
// The outcome is written exactly once by the worker and can be retrieved
// exactly once with [Handle.Get].
type Handle[Output any] struct {
	id       string
	recorder *Recorder

	done     chan struct{}
	complete sync.Once
	output   Output
	err      errors.E

	// run is set for deferred handles and is started by Get.
	run func()

	claimed  atomic.Bool
	consumed atomic.Bool
}

func newHandle[Output any](id string, recorder *Recorder) *Handle[Output] {
	return &Handle[Output]{ //nolint:exhaustruct
		id:       id,
		recorder: recorder,
		done:     make(chan struct{}),
	}
}

// ID returns the unique identifier of the handle.
func (h *Handle[Output]) ID() string {
	return h.id
}

// Done returns a channel which is closed when the worker completes.
//
// For handles launched with [PolicyDeferred] the channel is closed only
// after the worker has been run by [Handle.Get].
func (h *Handle[Output]) Done() <-chan struct{} {
	return h.done
}

// State returns the current state of the handle without blocking.
func (h *Handle[Output]) State() State {
	if h.consumed.Load() {
		return StateConsumed
	}
	select {
	case <-h.done:
		if h.err != nil {
			return StateFailed
		}
		return StateSucceeded
	default:
		return StatePending
	}
}

// resolve stores the outcome. Only the first call has any effect.
func (h *Handle[Output]) resolve(output Output, errE errors.E) {
	h.complete.Do(func() {
		if errE != nil {
			h.err = errE
		} else {
			h.output = output
		}
		h.recorder.record(h.id, EventFinish, errE)
		close(h.done)
	})
}

// Get blocks until the worker completes and returns its output.
//
// If the worker terminated abnormally, Get returns an error which
// wraps [ErrComputation] and the zero value of Output.
//
// Get can be called only once. Any further call (also a concurrent one)
// returns [ErrAlreadyConsumed] immediately.
func (h *Handle[Output]) Get() (Output, errors.E) {
	if !h.claimed.CompareAndSwap(false, true) {
		var zero Output
		errE := errors.WithStack(ErrAlreadyConsumed)
		errors.Details(errE)["handle"] = h.id
		return zero, errE
	}

	if h.run != nil {
		go h.run()
	}

	<-h.done

	h.recorder.record(h.id, EventRetrieve, h.err)
	h.consumed.Store(true)

	if h.err != nil {
		var zero Output
		return zero, h.err
	}
	return h.output, nil
}
