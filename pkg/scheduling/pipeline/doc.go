/*
Package pipeline runs ordered steps of concurrent operations over a shared
variable store.

Each step starts all of its operations at once, waits for every one of them to
settle, merges the resolved results into the store in declared order, and then
moves a cursor according to the step's error policy.

# Quick Start

	login := pipeline.NewOperation("login", func(ctx context.Context, args pipeline.Args) (pipeline.Result, error) {
		user, _ := args.String(0)
		return pipeline.Merge(map[string]any{"token": "t-" + user}), nil
	}, "username")

	upload := pipeline.NewOperation("upload", func(ctx context.Context, args pipeline.Args) (pipeline.Result, error) {
		token, _ := args.String(0)
		return pipeline.Scalar("uploaded with " + token), nil
	}, "token")

	p, _ := pipeline.NewWithConfig(pipeline.Config{
		InitialVariables: map[string]any{"username": "alice"},
	})
	p.Add(pipeline.Retry, login).
		Add(pipeline.Continue, upload)

	if err := p.Perform(context.Background()); err != nil {
		log.Fatal(err)
	}
	fmt.Println(p.Variables()[pipeline.ReturnValKey])

# Parameters

Operations declare the names of the variables they read. Arguments are bound
by name from a snapshot taken when the step begins, so operations in the same
step never see each other's results. Names missing from the store bind to nil.

# Results

An operation resolves to one of three shapes:

	pipeline.Merge(map[string]any{...}) // keys overlay the store
	pipeline.Scalar(v)                  // stored under "returnVal"
	pipeline.Empty()                    // no change

Returning a non-nil error rejects the operation. Panics are recovered and
treated as rejections.

# Error Policies

When at least one operation of a step is rejected:

	Continue   advance to the next step
	StartOver  jump back to step 1, keeping the variables
	Retry      run the same step again

Restarts are bounded per run by Config.MaxRestarts and consecutive retries of
one step by Config.MaxRetries. Exceeding either ends Perform with a
*errors.LimitError.

# Events

A Sink receives three feeds: human-readable log lines, a timing Record for
every invocation, and a Failure for every rejection. Events are delivered from
the goroutine calling Perform, in declared order, after each step settles.
Sinks that implement RunObserver also see run boundaries.

	p, _ := pipeline.NewWithConfig(pipeline.Config{
		ID: "uploader",
		Sink: pipeline.SinkFuncs{
			Log: func(line string) { fmt.Println(line) },
		},
	})

# Concurrency

By default a step fans out on one goroutine per operation, optionally limited
by Config.MaxConcurrency. Setting Config.WorkerPool routes invocations through
a workerpool.Pool instead. The pool must not be the one running Perform itself
or a step may wait on a worker it occupies.

Perform is not reentrant: a second call on the same pipeline while a run is
active returns errors.ErrRunInProgress.
*/
package pipeline
