package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	sfcontext "github.com/vnykmshr/stepflow/pkg/common/context"
	sferrors "github.com/vnykmshr/stepflow/pkg/common/errors"
)

// Args holds an operation's arguments in the order of its declared parameters.
type Args []any

// At returns the i-th argument, or nil when i is out of range.
func (a Args) At(i int) any {
	if i < 0 || i >= len(a) {
		return nil
	}
	return a[i]
}

// String returns the i-th argument if it is a string.
func (a Args) String(i int) (string, bool) {
	s, ok := a.At(i).(string)
	return s, ok
}

// Func is the body of an operation. A non-nil error rejects the operation.
type Func func(ctx context.Context, args Args) (Result, error)

// Operation is a named unit of work together with the ordered names of the
// variables it reads. Each parameter is bound from the store by name.
type Operation struct {
	Name   string
	Params []string
	Fn     Func
}

// NewOperation creates an operation reading params from the store.
func NewOperation(name string, fn Func, params ...string) Operation {
	return Operation{
		Name:   name,
		Params: params,
		Fn:     fn,
	}
}

var errNoFunc = errors.New("operation has no function")

// call runs fn, converting a panic into a rejection.
func call(ctx context.Context, op Operation, args Args) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = Empty()
			err = sferrors.NewOperationError("pipeline", op.Name, fmt.Errorf("%w: %v", sferrors.ErrPanic, r))
		}
	}()

	if op.Fn == nil {
		return Empty(), sferrors.NewOperationError("pipeline", op.Name, errNoFunc)
	}
	return op.Fn(ctx, args)
}

// WithTimeout returns a copy of op whose invocations are abandoned after
// timeout. The wrapped function keeps running in the background if it
// ignores its context.
func WithTimeout(op Operation, timeout time.Duration) Operation {
	inner := op
	op.Fn = func(ctx context.Context, args Args) (Result, error) {
		ctx, cancel := sfcontext.WithTimeoutOrCancel(ctx, timeout)
		defer cancel()

		type outcome struct {
			res Result
			err error
		}
		done := make(chan outcome, 1)
		go func() {
			res, err := call(ctx, inner, args)
			done <- outcome{res, err}
		}()

		select {
		case o := <-done:
			if o.err != nil && sfcontext.IsTimedOut(ctx) {
				return Empty(), fmt.Errorf("%s after %v: %w", inner.Name, timeout, sferrors.ErrTimeout)
			}
			return o.res, o.err
		case <-ctx.Done():
			if sfcontext.IsTimedOut(ctx) {
				return Empty(), fmt.Errorf("%s after %v: %w", inner.Name, timeout, sferrors.ErrTimeout)
			}
			return Empty(), ctx.Err()
		}
	}
	return op
}
