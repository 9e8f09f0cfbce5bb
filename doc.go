/*
Package stepflow runs ordered pipelines of steps over a shared variable store.

Each step holds one or more named operations that run concurrently. An
operation declares the variables it reads by name, and what it resolves is
merged back into the store before the next step starts. When an operation
rejects, the step's error policy decides whether the run continues, starts
over from the first step, or retries the same step.

Core (pkg/scheduling):
  - pipeline: Steps, operations, error policies, variables and the time table
  - workerpool: Optional bounded executor for a step's operations
  - scheduler: Cron and interval-based repeated runs

Event sinks (pkg/sink):
  - slogsink: Structured log records
  - promsink: Prometheus metrics
  - redissink: Redis stream entries

Supporting packages:
  - config: File and environment configuration
  - log: slog logger construction
  - metrics: Prometheus registry shared by the pipeline, pool and scheduler
  - drawer: DOT rendering of a pipeline and its last run's timings

Example usage:

	import "github.com/vnykmshr/stepflow/pkg/scheduling/pipeline"

	login := pipeline.NewOperation("login", loginFn, "username")
	upload := pipeline.NewOperation("upload", uploadFn, "cookie")

	p, _ := pipeline.NewWithConfig(pipeline.Config{
		InitialVariables: map[string]any{"username": "alice"},
	})
	p.Add(pipeline.Retry, login).Add(pipeline.StartOver, upload)

	if err := p.Perform(ctx); err != nil {
		log.Fatal(err)
	}
	fmt.Println(p.Variables(), p.TimeTable())

See examples/upload_flow for a program wiring every package together.
*/
package stepflow
