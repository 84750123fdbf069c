// Package future launches a function asynchronously and retrieves its
// result with a blocking, one-time retrieval.
package future

import (
	"context"

	"gitlab.com/tozd/go/errors"
)

// Callee is a unit of work which can be launched asynchronously.
type Callee[Input, Output any] interface {
	Init(ctx context.Context) errors.E
	Call(ctx context.Context, input Input) (Output, errors.E)
}
