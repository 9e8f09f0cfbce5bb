// Package slogsink writes pipeline events to a slog.Logger.
package slogsink

import (
	"context"
	"log/slog"

	"github.com/vnykmshr/stepflow/pkg/scheduling/pipeline"
)

// Sink adapts a logger to pipeline.Sink and pipeline.RunObserver. Log lines
// go out at Info, timing records at Debug and rejections at Warn.
type Sink struct {
	logger *slog.Logger
}

// New creates a sink. A nil logger uses slog.Default().
func New(logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{logger: logger}
}

func (s *Sink) OnLog(line string) {
	s.logger.Info(line)
}

func (s *Sink) OnRecord(rec pipeline.Record) {
	s.logger.LogAttrs(context.Background(), slog.LevelDebug, "operation settled",
		slog.String("run_id", rec.RunID),
		slog.Int("step", rec.Step+1),
		slog.String("operation", rec.Operation),
		slog.Int64("duration_ms", rec.Millis()),
	)
}

func (s *Sink) OnErr(f pipeline.Failure) {
	s.logger.LogAttrs(context.Background(), slog.LevelWarn, "operation rejected",
		slog.String("run_id", f.RunID),
		slog.Int("step", f.Step+1),
		slog.String("operation", f.Operation),
		slog.Any("error", f.Reason),
	)
}

func (s *Sink) OnRunStart(info pipeline.RunInfo) {
	s.logger.LogAttrs(context.Background(), slog.LevelInfo, "pipeline run started",
		slog.String("run_id", info.RunID),
		slog.String("pipeline", info.Pipeline),
		slog.Int("steps", info.Steps),
	)
}

func (s *Sink) OnRunComplete(summary pipeline.RunSummary) {
	attrs := []slog.Attr{
		slog.String("run_id", summary.RunID),
		slog.String("pipeline", summary.Pipeline),
		slog.Duration("duration", summary.Duration),
		slog.Int("steps_run", summary.StepsRun),
		slog.Int("restarts", summary.Restarts),
		slog.Int("retries", summary.Retries),
		slog.Int("rejections", summary.Rejections),
	}
	if summary.Err != nil {
		attrs = append(attrs, slog.Any("error", summary.Err))
		s.logger.LogAttrs(context.Background(), slog.LevelError, "pipeline run failed", attrs...)
		return
	}
	s.logger.LogAttrs(context.Background(), slog.LevelInfo, "pipeline run completed", attrs...)
}
