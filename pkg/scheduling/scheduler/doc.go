/*
Package scheduler triggers runners such as pipelines on fixed intervals or
cron schedules.

	sched := scheduler.New()
	defer func() { <-sched.Stop() }()

	_ = sched.ScheduleRepeating("sync", p, 30*time.Second)
	_ = sched.ScheduleCron("nightly", "0 0 2 * * *", report)
	_ = sched.Start()

Cron expressions may have five fields, six fields with a leading seconds
field, or be a descriptor such as "@hourly" or "@every 10s".

Each entry runs at most once at a time. A trigger that fires while the
previous run of the same entry is still active is counted as skipped, as is a
run whose pipeline reports errors.ErrRunInProgress because it is shared with
another caller.

Runs execute on a workerpool.Pool. Stop cancels the context passed to active
runs and waits for them to return.
*/
package scheduler
