// Package redissink appends pipeline events to a Redis stream.
package redissink

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	sferrors "github.com/vnykmshr/stepflow/pkg/common/errors"
	"github.com/vnykmshr/stepflow/pkg/common/validation"
	"github.com/vnykmshr/stepflow/pkg/scheduling/pipeline"
)

// DefaultStream is the stream key used when Config.Stream is empty.
const DefaultStream = "stepflow:events"

// Client is the part of redis.UniversalClient the sink needs.
type Client interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// Config holds configuration for a Redis stream sink.
type Config struct {
	// Redis client used for XADD. Required.
	Redis Client

	// Stream is the stream key. Defaults to DefaultStream.
	Stream string

	// MaxLen approximately caps the stream length. 0 disables trimming.
	MaxLen int64

	// Timeout bounds each XADD. Defaults to 500ms.
	Timeout time.Duration

	// OnError is called when an event cannot be written.
	OnError func(err error)
}

// Sink writes one stream entry per event. Writes are synchronous, so a slow
// Redis slows the pipeline's event delivery but never its operations.
type Sink struct {
	config  Config
	written atomic.Int64
	dropped atomic.Int64
}

// New creates a sink.
func New(cfg Config) (*Sink, error) {
	if err := validation.ValidateNotNil("redissink", "Redis", cfg.Redis); err != nil {
		return nil, err
	}
	if cfg.MaxLen < 0 {
		return nil, sferrors.NewValidationError("redissink", "MaxLen", cfg.MaxLen, "must be non-negative")
	}
	if cfg.Stream == "" {
		cfg.Stream = DefaultStream
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 500 * time.Millisecond
	}
	return &Sink{config: cfg}, nil
}

// Written returns the number of entries added to the stream.
func (s *Sink) Written() int64 {
	return s.written.Load()
}

// Dropped returns the number of events that failed to be written.
func (s *Sink) Dropped() int64 {
	return s.dropped.Load()
}

func (s *Sink) OnLog(line string) {
	s.add("log", map[string]any{"line": line})
}

func (s *Sink) OnRecord(rec pipeline.Record) {
	s.add("record", map[string]any{
		"run_id":      rec.RunID,
		"step":        rec.Step + 1,
		"operation":   rec.Operation,
		"duration_ms": rec.Millis(),
	})
}

func (s *Sink) OnErr(f pipeline.Failure) {
	reason := ""
	if f.Reason != nil {
		reason = f.Reason.Error()
	}
	s.add("err", map[string]any{
		"run_id":    f.RunID,
		"step":      f.Step + 1,
		"operation": f.Operation,
		"reason":    reason,
	})
}

func (s *Sink) OnRunStart(info pipeline.RunInfo) {
	s.add("run_start", map[string]any{
		"run_id":   info.RunID,
		"pipeline": info.Pipeline,
		"steps":    info.Steps,
	})
}

func (s *Sink) OnRunComplete(summary pipeline.RunSummary) {
	values := map[string]any{
		"run_id":      summary.RunID,
		"pipeline":    summary.Pipeline,
		"duration_ms": summary.Duration.Milliseconds(),
		"steps_run":   summary.StepsRun,
		"restarts":    summary.Restarts,
		"retries":     summary.Retries,
		"rejections":  summary.Rejections,
		"result":      "completed",
	}
	if summary.Err != nil {
		values["result"] = "failed"
		values["error"] = summary.Err.Error()
	}
	s.add("run_complete", values)
}

func (s *Sink) add(kind string, values map[string]any) {
	values["type"] = kind
	values["ts"] = strconv.FormatInt(time.Now().UnixMilli(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Timeout)
	defer cancel()

	args := &redis.XAddArgs{
		Stream: s.config.Stream,
		Values: values,
	}
	if s.config.MaxLen > 0 {
		args.MaxLen = s.config.MaxLen
		args.Approx = true
	}

	if err := s.config.Redis.XAdd(ctx, args).Err(); err != nil {
		s.dropped.Add(1)
		if s.config.OnError != nil {
			s.config.OnError(errors.Wrapf(err, "xadd %s event to %s", kind, s.config.Stream))
		}
		return
	}
	s.written.Add(1)
}
