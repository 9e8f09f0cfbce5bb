package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Example_basicUsage demonstrates basic metrics configuration.
func Example_basicUsage() {
	registry := NewRegistry(prometheus.NewRegistry())

	registry.PipelineRuns.WithLabelValues("upload", "completed").Inc()
	registry.OperationRejections.WithLabelValues("upload", "poll").Add(2)

	fmt.Println(testutil.ToFloat64(registry.PipelineRuns.WithLabelValues("upload", "completed")))
	fmt.Println(testutil.ToFloat64(registry.OperationRejections.WithLabelValues("upload", "poll")))

	// Output:
	// 1
	// 2
}

// Example_customRegistry demonstrates a custom namespace and constant labels.
func Example_customRegistry() {
	reg := prometheus.NewRegistry()
	registry := NewRegistryWithConfig(Config{
		Enabled:   true,
		Registry:  reg,
		Namespace: "myapp",
		Labels:    prometheus.Labels{"env": "test"},
	})

	registry.StepTransitions.WithLabelValues("nightly", "restart").Inc()

	families, err := reg.Gather()
	if err != nil {
		fmt.Println("gather failed:", err)
		return
	}
	for _, mf := range families {
		if mf.GetName() == "myapp_pipeline_step_transitions_total" {
			fmt.Println(mf.GetName(), mf.GetMetric()[0].GetLabel()[0].GetName())
		}
	}

	// Output:
	// myapp_pipeline_step_transitions_total env
}
