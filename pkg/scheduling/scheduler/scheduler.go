package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	sfcontext "github.com/vnykmshr/stepflow/pkg/common/context"
	sferrors "github.com/vnykmshr/stepflow/pkg/common/errors"
	"github.com/vnykmshr/stepflow/pkg/common/validation"
	"github.com/vnykmshr/stepflow/pkg/metrics"
	"github.com/vnykmshr/stepflow/pkg/scheduling/workerpool"
)

// Runner is anything that can be performed repeatedly. pipeline.Pipeline
// satisfies it.
type Runner interface {
	Perform(ctx context.Context) error
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context) error

func (f RunnerFunc) Perform(ctx context.Context) error {
	return f(ctx)
}

// Entry describes a scheduled runner.
type Entry struct {
	ID       string
	NextRun  time.Time
	Interval time.Duration // zero for cron entries
	Cron     string        // empty for interval entries
	Created  time.Time
	Runs     int64
	Skipped  int64
	Failures int64
	Running  bool
}

// Scheduler triggers runners on intervals or cron schedules. A trigger that
// fires while the previous run of the same entry is still active is skipped.
type Scheduler interface {
	ScheduleRepeating(id string, runner Runner, interval time.Duration) error
	ScheduleCron(id string, cronExpr string, runner Runner) error

	Cancel(id string) bool
	CancelAll()
	List() []Entry

	Start() error
	Stop() <-chan struct{}
}

// Config holds scheduler configuration.
type Config struct {
	// WorkerPool runs triggered runners. If nil the scheduler owns a pool of
	// four workers and shuts it down on Stop.
	WorkerPool workerpool.Pool

	// Location is used to evaluate cron expressions. Defaults to time.Local.
	Location *time.Location

	// TickInterval is how often due entries are checked. Defaults to 50ms.
	TickInterval time.Duration

	// MaxEntries limits the number of scheduled entries. Defaults to 10000.
	MaxEntries int

	// RunTimeout bounds a single run. 0 means no limit.
	RunTimeout time.Duration

	// OnError is called when a run returns an error or cannot be submitted.
	OnError func(id string, err error)

	// Name labels the scheduler's metrics. Defaults to "default".
	Name string

	// Metrics receives trigger, skip and failure counts. Optional.
	Metrics *metrics.Registry
}

type entry struct {
	id       string
	runner   Runner
	nextRun  time.Time
	interval time.Duration
	cronExpr string
	schedule cron.Schedule
	created  time.Time

	running  atomic.Bool
	runs     atomic.Int64
	skipped  atomic.Int64
	failures atomic.Int64
}

type scheduler struct {
	pool         workerpool.Pool
	ownPool      bool
	location     *time.Location
	tickInterval time.Duration
	maxEntries   int
	config       Config

	mu      sync.RWMutex
	entries map[string]*entry
	running bool
	stopped bool
	done    chan struct{}
	loopEnd chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	runs   sync.WaitGroup

	triggers *prometheus.CounterVec
	skips    *prometheus.CounterVec
	failures *prometheus.CounterVec
}

// New creates a scheduler with default configuration.
func New() Scheduler {
	s, err := NewWithConfig(Config{})
	if err != nil {
		panic(err)
	}
	return s
}

// NewWithConfig creates a scheduler with custom configuration.
func NewWithConfig(cfg Config) (Scheduler, error) {
	if err := validation.ValidateNonNegative("scheduler", "MaxEntries", cfg.MaxEntries); err != nil {
		return nil, err
	}
	if cfg.RunTimeout < 0 {
		return nil, sferrors.NewValidationError("scheduler", "RunTimeout", cfg.RunTimeout, "must be non-negative")
	}

	pool := cfg.WorkerPool
	ownPool := false
	if pool == nil {
		var err error
		pool, err = workerpool.NewWithConfig(workerpool.Config{
			WorkerCount: 4,
			QueueSize:   100,
			Name:        "scheduler",
			Metrics:     cfg.Metrics,
		})
		if err != nil {
			return nil, err
		}
		ownPool = true
	}

	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 50 * time.Millisecond
	}
	if cfg.MaxEntries == 0 {
		cfg.MaxEntries = 10000
	}
	if cfg.Name == "" {
		cfg.Name = "default"
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &scheduler{
		pool:         pool,
		ownPool:      ownPool,
		location:     cfg.Location,
		tickInterval: cfg.TickInterval,
		maxEntries:   cfg.MaxEntries,
		config:       cfg,
		entries:      make(map[string]*entry),
		done:         make(chan struct{}),
		loopEnd:      make(chan struct{}),
		ctx:          ctx,
		cancel:       cancel,
	}
	if m := cfg.Metrics; m != nil {
		s.triggers = m.SchedulerTriggers
		s.skips = m.SchedulerSkipped
		s.failures = m.SchedulerFailures
	}
	return s, nil
}

func validateEntry(id string, runner Runner) error {
	if err := validation.ValidateNotEmpty("scheduler", "id", id); err != nil {
		return err
	}
	if len(id) > 255 {
		return sferrors.NewValidationError("scheduler", "id", id, "too long (max 255 characters)")
	}
	if runner == nil {
		return sferrors.NewValidationError("scheduler", "runner", nil, "cannot be nil")
	}
	return nil
}

func (s *scheduler) add(e *entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return fmt.Errorf("cannot schedule %q: %w", e.id, sferrors.ErrClosed)
	}
	if _, exists := s.entries[e.id]; exists {
		return fmt.Errorf("entry with ID %q already exists, cancel it first", e.id)
	}
	if len(s.entries) >= s.maxEntries {
		return fmt.Errorf("cannot schedule %q: maximum number of entries (%d) reached", e.id, s.maxEntries)
	}

	s.entries[e.id] = e
	return nil
}

// ScheduleRepeating runs runner every interval, starting with the first tick.
func (s *scheduler) ScheduleRepeating(id string, runner Runner, interval time.Duration) error {
	if err := validateEntry(id, runner); err != nil {
		return err
	}
	if interval <= 0 {
		return sferrors.NewValidationError("scheduler", "interval", interval, "must be positive")
	}

	now := time.Now()
	return s.add(&entry{
		id:       id,
		runner:   runner,
		nextRun:  now,
		interval: interval,
		created:  now,
	})
}

// ScheduleCron runs runner whenever cronExpr fires.
func (s *scheduler) ScheduleCron(id string, cronExpr string, runner Runner) error {
	if err := validateEntry(id, runner); err != nil {
		return err
	}
	schedule, err := ParseCron(cronExpr)
	if err != nil {
		return err
	}

	now := time.Now()
	return s.add(&entry{
		id:       id,
		runner:   runner,
		nextRun:  schedule.Next(now.In(s.location)),
		cronExpr: cronExpr,
		schedule: schedule,
		created:  now,
	})
}

// Cancel removes an entry. A run already in progress is not interrupted.
func (s *scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[id]; exists {
		delete(s.entries, id)
		return true
	}
	return false
}

func (s *scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*entry)
}

// List returns the entries sorted by next run time.
func (s *scheduler) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, Entry{
			ID:       e.id,
			NextRun:  e.nextRun,
			Interval: e.interval,
			Cron:     e.cronExpr,
			Created:  e.created,
			Runs:     e.runs.Load(),
			Skipped:  e.skipped.Load(),
			Failures: e.failures.Load(),
			Running:  e.running.Load(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].NextRun.Equal(entries[j].NextRun) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].NextRun.Before(entries[j].NextRun)
	})

	return entries
}

func (s *scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return fmt.Errorf("cannot start scheduler: %w", sferrors.ErrClosed)
	}
	if s.running {
		return fmt.Errorf("scheduler already running, call Stop() first")
	}

	s.running = true
	go s.loop()
	return nil
}

// Stop halts triggering, cancels the context of active runs and waits for
// them to return. The returned channel is closed once everything has
// finished. A stopped scheduler cannot be restarted.
func (s *scheduler) Stop() <-chan struct{} {
	s.mu.Lock()
	wasRunning := s.running
	if !s.stopped {
		s.stopped = true
		s.running = false
		close(s.done)
	}
	s.mu.Unlock()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		if wasRunning {
			<-s.loopEnd
		}
		s.cancel()
		s.runs.Wait()
		if s.ownPool {
			<-s.pool.Shutdown()
		}
	}()

	return stopped
}

func (s *scheduler) loop() {
	defer close(s.loopEnd)

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.processDue(time.Now())
		}
	}
}

// processDue triggers every entry whose next run is at or before now and
// reschedules it.
func (s *scheduler) processDue(now time.Time) {
	s.mu.Lock()
	due := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		if now.Before(e.nextRun) {
			continue
		}
		due = append(due, e)
		if e.schedule != nil {
			e.nextRun = e.schedule.Next(now.In(s.location))
		} else {
			e.nextRun = now.Add(e.interval)
		}
	}
	s.mu.Unlock()

	for _, e := range due {
		s.trigger(e)
	}
}

func (s *scheduler) trigger(e *entry) {
	if !e.running.CompareAndSwap(false, true) {
		e.skipped.Add(1)
		s.inc(s.skips, e.id)
		return
	}

	s.runs.Add(1)
	task := workerpool.TaskFunc(func(context.Context) error {
		defer s.runs.Done()
		defer e.running.Store(false)
		return s.execute(e)
	})

	if err := s.pool.Submit(task); err != nil {
		e.running.Store(false)
		s.runs.Done()
		s.fail(e, fmt.Errorf("submit %q: %w", e.id, err))
	}
}

func (s *scheduler) execute(e *entry) error {
	ctx, cancel := sfcontext.WithTimeoutOrCancel(s.ctx, s.config.RunTimeout)
	defer cancel()

	e.runs.Add(1)
	s.inc(s.triggers, e.id)

	err := e.runner.Perform(ctx)
	switch {
	case err == nil:
		return nil
	case s.ctx.Err() != nil && errors.Is(err, context.Canceled):
		// Stopped mid-run.
		return nil
	case errors.Is(err, sferrors.ErrRunInProgress):
		// The runner is shared with another entry or caller.
		e.skipped.Add(1)
		s.inc(s.skips, e.id)
		return nil
	default:
		s.fail(e, err)
		return err
	}
}

func (s *scheduler) fail(e *entry, err error) {
	e.failures.Add(1)
	s.inc(s.failures, e.id)
	if s.config.OnError != nil {
		s.config.OnError(e.id, err)
	}
}

func (s *scheduler) inc(vec *prometheus.CounterVec, id string) {
	if vec != nil {
		vec.WithLabelValues(s.config.Name, id).Inc()
	}
}
