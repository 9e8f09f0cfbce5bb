/*
Package scheduling groups the execution primitives of stepflow:

  - pipeline: ordered steps of concurrent operations over a shared variable store
  - workerpool: fixed worker pool that can execute a step's operations
  - scheduler: interval and cron triggering of repeated pipeline runs

A typical setup builds a pipeline, optionally backs it with a worker pool, and
hands it to a scheduler:

	pool := workerpool.New(8, 64)
	defer func() { <-pool.Shutdown() }()

	p, _ := pipeline.NewWithConfig(pipeline.Config{ID: "sync", WorkerPool: pool})
	p.Add(pipeline.Retry, fetch).
		Add(pipeline.Continue, store, notify)

	sched := scheduler.New()
	_ = sched.ScheduleCron("sync", "@every 1m", p)
	_ = sched.Start()
	defer func() { <-sched.Stop() }()

The scheduler and the pipeline should not share one pool: a scheduled run
occupies a worker while its steps wait for theirs.
*/
package scheduling
