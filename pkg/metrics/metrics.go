// Package metrics provides Prometheus instrumentation for stepflow components.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for stepflow components.
type Registry struct {
	// Pipeline Metrics
	PipelineRuns        *prometheus.CounterVec
	PipelineRunDuration *prometheus.HistogramVec
	StepTransitions     *prometheus.CounterVec
	OperationDuration   *prometheus.HistogramVec
	OperationRejections *prometheus.CounterVec
	PipelineVariables   *prometheus.GaugeVec

	// Worker Pool Metrics
	WorkerPoolSize   *prometheus.GaugeVec
	WorkerPoolActive *prometheus.GaugeVec
	WorkerPoolQueued *prometheus.GaugeVec
	WorkerPoolPanics *prometheus.CounterVec

	// Scheduler Metrics
	SchedulerTriggers *prometheus.CounterVec
	SchedulerSkipped  *prometheus.CounterVec
	SchedulerFailures *prometheus.CounterVec
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry bound to prometheus.DefaultRegisterer,
// creating it on first use.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	return NewRegistryWithConfig(Config{Enabled: true, Registry: reg})
}

// NewRegistryWithConfig creates a registry honoring the namespace and constant labels in cfg.
func NewRegistryWithConfig(cfg Config) *Registry {
	reg := cfg.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if len(cfg.Labels) > 0 {
		reg = prometheus.WrapRegistererWith(cfg.Labels, reg)
	}
	ns := cfg.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}

	factory := promauto.With(reg)

	return &Registry{
		// Pipeline Metrics
		PipelineRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "pipeline",
				Name:      "runs_total",
				Help:      "Total number of pipeline runs by result",
			},
			[]string{"pipeline", "result"},
		),

		PipelineRunDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Subsystem: "pipeline",
				Name:      "run_duration_seconds",
				Help:      "Wall-clock duration of pipeline runs",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"pipeline"},
		),

		StepTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "pipeline",
				Name:      "step_transitions_total",
				Help:      "Step cursor transitions by kind (advance, restart, retry)",
			},
			[]string{"pipeline", "transition"},
		),

		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Subsystem: "pipeline",
				Name:      "operation_duration_seconds",
				Help:      "Time spent executing pipeline operations",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"pipeline", "operation"},
		),

		OperationRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "pipeline",
				Name:      "operation_rejections_total",
				Help:      "Total number of rejected pipeline operations",
			},
			[]string{"pipeline", "operation"},
		),

		PipelineVariables: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: ns,
				Subsystem: "pipeline",
				Name:      "variables",
				Help:      "Number of variables in the store at the end of the last run",
			},
			[]string{"pipeline"},
		),

		// Worker Pool Metrics
		WorkerPoolSize: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: ns,
				Subsystem: "workerpool",
				Name:      "size",
				Help:      "Current worker pool size",
			},
			[]string{"pool_name"},
		),

		WorkerPoolActive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: ns,
				Subsystem: "workerpool",
				Name:      "active_workers",
				Help:      "Number of active workers",
			},
			[]string{"pool_name"},
		),

		WorkerPoolQueued: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: ns,
				Subsystem: "workerpool",
				Name:      "queued_tasks",
				Help:      "Number of queued tasks",
			},
			[]string{"pool_name"},
		),

		WorkerPoolPanics: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "workerpool",
				Name:      "panics_total",
				Help:      "Total number of tasks that panicked",
			},
			[]string{"pool_name"},
		),

		// Scheduler Metrics
		SchedulerTriggers: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "scheduler",
				Name:      "triggers_total",
				Help:      "Total number of scheduled runs started",
			},
			[]string{"scheduler_name", "entry"},
		),

		SchedulerSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "scheduler",
				Name:      "skipped_total",
				Help:      "Total number of triggers skipped because the previous run was still active",
			},
			[]string{"scheduler_name", "entry"},
		),

		SchedulerFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "scheduler",
				Name:      "failures_total",
				Help:      "Total number of scheduled runs that returned an error",
			},
			[]string{"scheduler_name", "entry"},
		),
	}
}
