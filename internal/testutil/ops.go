package testutil

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vnykmshr/stepflow/pkg/scheduling/pipeline"
)

// Resolve returns an operation that always resolves to res.
func Resolve(name string, res pipeline.Result, params ...string) pipeline.Operation {
	return pipeline.NewOperation(name, func(context.Context, pipeline.Args) (pipeline.Result, error) {
		return res, nil
	}, params...)
}

// Reject returns an operation that always rejects with reason.
func Reject(name string, reason error, params ...string) pipeline.Operation {
	return pipeline.NewOperation(name, func(context.Context, pipeline.Args) (pipeline.Result, error) {
		return pipeline.Empty(), reason
	}, params...)
}

// Delay returns a copy of op that sleeps d before running. A cancelled
// context rejects the invocation early.
func Delay(op pipeline.Operation, d time.Duration) pipeline.Operation {
	inner := op.Fn
	op.Fn = func(ctx context.Context, args pipeline.Args) (pipeline.Result, error) {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return pipeline.Empty(), ctx.Err()
		}
		return inner(ctx, args)
	}
	return op
}

// Counted wraps op and counts its invocations.
func Counted(op pipeline.Operation) (pipeline.Operation, *atomic.Int32) {
	calls := &atomic.Int32{}
	inner := op.Fn
	op.Fn = func(ctx context.Context, args pipeline.Args) (pipeline.Result, error) {
		calls.Add(1)
		return inner(ctx, args)
	}
	return op, calls
}

// Flaky returns an operation that rejects with reason for its first n
// invocations and resolves to res afterwards.
func Flaky(name string, n int32, reason error, res pipeline.Result, params ...string) (pipeline.Operation, *atomic.Int32) {
	calls := &atomic.Int32{}
	op := pipeline.NewOperation(name, func(context.Context, pipeline.Args) (pipeline.Result, error) {
		if calls.Add(1) <= n {
			return pipeline.Empty(), reason
		}
		return res, nil
	}, params...)
	return op, calls
}

// ArgsLog collects the arguments an operation was invoked with.
type ArgsLog struct {
	mu    sync.Mutex
	calls []pipeline.Args
}

// Calls returns the recorded argument lists in invocation order.
func (l *ArgsLog) Calls() []pipeline.Args {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]pipeline.Args(nil), l.calls...)
}

// Capture returns an operation that records its arguments and resolves to res.
func Capture(name string, res pipeline.Result, params ...string) (pipeline.Operation, *ArgsLog) {
	log := &ArgsLog{}
	op := pipeline.NewOperation(name, func(_ context.Context, args pipeline.Args) (pipeline.Result, error) {
		log.mu.Lock()
		log.calls = append(log.calls, append(pipeline.Args(nil), args...))
		log.mu.Unlock()
		return res, nil
	}, params...)
	return op, log
}
