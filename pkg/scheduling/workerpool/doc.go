/*
Package workerpool provides a fixed-size worker pool.

A worker pool manages a fixed number of worker goroutines that execute tasks
concurrently. The pipeline engine can hand a step's operations to a pool
instead of spawning one goroutine per operation, which caps concurrency
across every pipeline sharing the pool.

Basic usage:

	pool := workerpool.New(4, 100) // 4 workers, queue size 100
	defer func() { <-pool.Shutdown() }()

	task := workerpool.TaskFunc(func(ctx context.Context) error {
		// Do work
		return nil
	})

	if err := pool.Submit(task); err != nil {
		log.Printf("Failed to submit: %v", err)
	}

Completion is observed through Config.OnTaskComplete or by the task itself:

	pool, err := workerpool.NewWithConfig(workerpool.Config{
		WorkerCount: 8,
		QueueSize:   32,
		TaskTimeout: 30 * time.Second,
		OnTaskComplete: func(workerID int, r workerpool.Result) {
			log.Printf("worker %d finished in %v: %v", workerID, r.Duration, r.Error)
		},
	})

Panics inside a task are recovered and reported as an error wrapping
errors.ErrPanic. Shutdown stops intake, drains queued tasks, and closes the
returned channel once every worker has exited.

Metrics:

Set Config.Metrics to a *metrics.Registry to publish pool size, active
workers, queue depth and panic counts under Config.Name.
*/
package workerpool
