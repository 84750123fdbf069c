package future

import "gitlab.com/tozd/go/errors"

var (
	ErrAlreadyInitialized = errors.Base("already initialized")
	ErrNotInitialized     = errors.Base("not initialized")
	ErrAlreadyConsumed    = errors.Base("result already retrieved")
	ErrComputation        = errors.Base("computation failed")
	ErrSimulatedFault     = errors.Base("simulated fault")
	ErrOverflow           = errors.Base("result overflows int")
	ErrInvalidDelay       = errors.Base("invalid delay")
	ErrInvalidPolicy      = errors.Base("invalid launch policy")
)
