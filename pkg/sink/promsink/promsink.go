// Package promsink feeds pipeline events into Prometheus metrics.
package promsink

import (
	"github.com/vnykmshr/stepflow/pkg/metrics"
	"github.com/vnykmshr/stepflow/pkg/scheduling/pipeline"
)

// Sink records operation durations, rejections and run outcomes for one
// pipeline. Log lines are ignored.
type Sink struct {
	registry *metrics.Registry
	pipeline string
}

// New creates a sink that labels every series with name. A nil registry uses
// metrics.Default().
func New(registry *metrics.Registry, name string) *Sink {
	if registry == nil {
		registry = metrics.Default()
	}
	if name == "" {
		name = "default"
	}
	return &Sink{registry: registry, pipeline: name}
}

func (s *Sink) OnLog(string) {}

func (s *Sink) OnRecord(rec pipeline.Record) {
	s.registry.OperationDuration.WithLabelValues(s.pipeline, rec.Operation).Observe(rec.Duration.Seconds())
}

func (s *Sink) OnErr(f pipeline.Failure) {
	s.registry.OperationRejections.WithLabelValues(s.pipeline, f.Operation).Inc()
}

func (s *Sink) OnRunStart(pipeline.RunInfo) {}

func (s *Sink) OnRunComplete(summary pipeline.RunSummary) {
	result := "completed"
	if summary.Err != nil {
		result = "failed"
	}
	s.registry.PipelineRuns.WithLabelValues(s.pipeline, result).Inc()
	s.registry.PipelineRunDuration.WithLabelValues(s.pipeline).Observe(summary.Duration.Seconds())
	s.registry.PipelineVariables.WithLabelValues(s.pipeline).Set(float64(summary.Variables))

	transitions := s.registry.StepTransitions
	transitions.WithLabelValues(s.pipeline, "advance").Add(float64(summary.Advances))
	transitions.WithLabelValues(s.pipeline, "restart").Add(float64(summary.Restarts))
	transitions.WithLabelValues(s.pipeline, "retry").Add(float64(summary.Retries))
}
