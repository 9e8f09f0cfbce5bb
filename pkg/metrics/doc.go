// Package metrics provides Prometheus instrumentation for stepflow components.
//
// # Overview
//
// The metrics package provides instrumentation for:
//   - Pipeline runs (result, duration, cursor transitions)
//   - Operations (duration, rejections)
//   - Worker pools (pool size, active workers, queued tasks, panics)
//   - Scheduler entries (triggers, skipped overlaps, failures)
//
// Pipelines are instrumented through the promsink event sink; worker pools
// and schedulers accept a *Registry in their configuration.
//
// # Quick Start
//
//	registry := metrics.NewRegistry(prometheus.NewRegistry())
//
//	p, _ := pipeline.NewWithConfig(pipeline.Config{
//		ID:   "upload",
//		Sink: promsink.New(registry, "upload"),
//	})
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.Handler())
//
// # Available Metrics
//
//   - stepflow_pipeline_runs_total{pipeline,result}
//   - stepflow_pipeline_run_duration_seconds{pipeline}
//   - stepflow_pipeline_step_transitions_total{pipeline,transition}
//   - stepflow_pipeline_operation_duration_seconds{pipeline,operation}
//   - stepflow_pipeline_operation_rejections_total{pipeline,operation}
//   - stepflow_pipeline_variables{pipeline}
//   - stepflow_workerpool_size{pool_name}
//   - stepflow_workerpool_active_workers{pool_name}
//   - stepflow_workerpool_queued_tasks{pool_name}
//   - stepflow_workerpool_panics_total{pool_name}
//   - stepflow_scheduler_triggers_total{scheduler_name,entry}
//   - stepflow_scheduler_skipped_total{scheduler_name,entry}
//   - stepflow_scheduler_failures_total{scheduler_name,entry}
//
// # Configuration
//
//	config := metrics.Config{
//		Enabled:   true,
//		Registry:  prometheus.NewRegistry(),
//		Namespace: "myapp",
//		Labels:    prometheus.Labels{"version": "1.0"},
//	}
//	registry := metrics.NewRegistryWithConfig(config)
package metrics
