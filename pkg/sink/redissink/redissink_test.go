package redissink

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnykmshr/stepflow/internal/testutil"
	sferrors "github.com/vnykmshr/stepflow/pkg/common/errors"
	"github.com/vnykmshr/stepflow/pkg/scheduling/pipeline"
)

// fakeClient captures XADD calls in memory.
type fakeClient struct {
	mu   sync.Mutex
	adds []*redis.XAddArgs
	err  error
}

func (f *fakeClient) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adds = append(f.adds, a)
	return redis.NewStringResult("0-1", f.err)
}

func (f *fakeClient) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []string
	for _, a := range f.adds {
		out = append(out, a.Values.(map[string]any)["type"].(string))
	}
	return out
}

func TestSinkWritesEvents(t *testing.T) {
	client := &fakeClient{}
	sink, err := New(Config{Redis: client, MaxLen: 1000})
	require.NoError(t, err)

	p, err := pipeline.NewWithConfig(pipeline.Config{Sink: sink})
	require.NoError(t, err)
	p.Add(pipeline.Continue,
		testutil.Resolve("ok", pipeline.Empty()),
		testutil.Reject("bad", errors.New("boom")),
	)
	require.NoError(t, p.Perform(context.Background()))

	assert.Equal(t, []string{
		"run_start",
		"log",    // === Step 1 ===
		"record", // ok
		"log",    // ok completed
		"record", // bad
		"log",    // bad rejected
		"err",
		"run_complete",
	}, client.types())
	assert.EqualValues(t, 8, sink.Written())

	first := client.adds[0]
	assert.Equal(t, DefaultStream, first.Stream)
	assert.EqualValues(t, 1000, first.MaxLen)
	assert.True(t, first.Approx)

	errEntry := client.adds[6].Values.(map[string]any)
	assert.Equal(t, "bad", errEntry["operation"])
	assert.Equal(t, "boom", errEntry["reason"])
	assert.Equal(t, p.RunID(), errEntry["run_id"])

	done := client.adds[7].Values.(map[string]any)
	assert.Equal(t, "completed", done["result"])
}

func TestSinkReportsWriteFailures(t *testing.T) {
	client := &fakeClient{err: errors.New("connection refused")}

	var got []error
	sink, err := New(Config{
		Redis:   client,
		Stream:  "custom",
		OnError: func(err error) { got = append(got, err) },
	})
	require.NoError(t, err)

	sink.OnLog("hello")

	assert.EqualValues(t, 1, sink.Dropped())
	assert.Zero(t, sink.Written())
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Error(), "xadd log event to custom")
	assert.Contains(t, got[0].Error(), "connection refused")
}

func TestNewValidation(t *testing.T) {
	_, err := New(Config{})
	assert.True(t, sferrors.IsValidationError(err))

	_, err = New(Config{Redis: &fakeClient{}, MaxLen: -1})
	assert.True(t, sferrors.IsValidationError(err))
}

func TestSinkAgainstRedis(t *testing.T) {
	addr := os.Getenv("STEPFLOW_TEST_REDIS")
	if addr == "" {
		t.Skip("STEPFLOW_TEST_REDIS not set")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	ctx := context.Background()
	stream := "stepflow:test:" + t.Name()
	defer rdb.Del(ctx, stream)

	sink, err := New(Config{Redis: rdb, Stream: stream})
	require.NoError(t, err)

	p, err := pipeline.NewWithConfig(pipeline.Config{Sink: sink})
	require.NoError(t, err)
	p.Add(pipeline.Continue, testutil.Resolve("ok", pipeline.Scalar(1)))
	require.NoError(t, p.Perform(ctx))

	n, err := rdb.XLen(ctx, stream).Result()
	require.NoError(t, err)
	assert.Equal(t, sink.Written(), n)
}
