package testutil

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnykmshr/stepflow/pkg/scheduling/pipeline"
)

func TestEventually(t *testing.T) {
	var counter int32
	go func() {
		time.Sleep(30 * time.Millisecond)
		atomic.StoreInt32(&counter, 1)
	}()

	Eventually(t, func() bool {
		return atomic.LoadInt32(&counter) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestWithTimeout(t *testing.T) {
	ctx, cancel := WithTimeout(t)
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.LessOrEqual(t, time.Until(deadline), TestTimeout)
}

func TestFailingWriter(t *testing.T) {
	boom := errors.New("boom")
	n, err := FailingWriter{Err: boom}.Write([]byte("x"))
	assert.Zero(t, n)
	assert.ErrorIs(t, err, boom)
}

func TestFlaky(t *testing.T) {
	boom := errors.New("boom")
	op, calls := Flaky("f", 2, boom, pipeline.Scalar(1))

	for i := 0; i < 2; i++ {
		_, err := op.Fn(context.Background(), nil)
		assert.ErrorIs(t, err, boom)
	}
	res, err := op.Fn(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Value())
	assert.EqualValues(t, 3, calls.Load())
}

func TestDelayHonoursCancellation(t *testing.T) {
	op := Delay(Resolve("slow", pipeline.Empty()), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := op.Fn(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCapture(t *testing.T) {
	op, log := Capture("c", pipeline.Empty(), "a", "b")
	_, err := op.Fn(context.Background(), pipeline.Args{1, "two"})
	require.NoError(t, err)

	calls := log.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, pipeline.Args{1, "two"}, calls[0])
	assert.Equal(t, []string{"a", "b"}, op.Params)
}
