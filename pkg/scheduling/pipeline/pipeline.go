package pipeline

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	sferrors "github.com/vnykmshr/stepflow/pkg/common/errors"
	"github.com/vnykmshr/stepflow/pkg/common/validation"
	"github.com/vnykmshr/stepflow/pkg/scheduling/workerpool"
)

const (
	// DefaultMaxRestarts bounds how often StartOver steps may rewind one run.
	DefaultMaxRestarts = 10

	// DefaultMaxRetries bounds how often a Retry step may repeat before the
	// cursor moves on.
	DefaultMaxRetries = 3
)

// Pipeline is an ordered list of steps driven over a shared variable store.
type Pipeline interface {
	// Add appends a step and returns the pipeline for chaining.
	Add(policy ErrorPolicy, ops ...Operation) Pipeline

	// Perform runs the pipeline from the first step with a fresh store.
	// Operation rejections are handled by step policies and never returned.
	Perform(ctx context.Context) error

	// Variables returns a copy of the store as left by the last run.
	Variables() map[string]any

	// TimeTable returns a copy of the per-operation durations of the last run.
	TimeTable() TimeTable

	// Steps returns the registered steps.
	Steps() []Step

	// RunID returns the identifier of the last or current run.
	RunID() string

	// Stats returns accumulated execution statistics.
	Stats() Stats
}

// TimeTable maps operation names to the duration of their last invocation.
type TimeTable map[string]time.Duration

// Millis returns the duration recorded for name in whole milliseconds.
func (t TimeTable) Millis(name string) int64 {
	return t[name].Milliseconds()
}

// Config holds pipeline configuration options.
type Config struct {
	// ID prefixes every log line. Defaults to "PID <pid>".
	ID string

	// InitialVariables seeds the store at the start of every run.
	InitialVariables map[string]any

	// Sink receives log, record and err events. Nil discards them.
	Sink Sink

	// WorkerPool runs operations when set. Otherwise each step fans out on
	// its own goroutines.
	WorkerPool workerpool.Pool

	// MaxConcurrency limits concurrent operations within a step when no
	// worker pool is set. 0 means no limit.
	MaxConcurrency int

	// MaxRestarts bounds StartOver rewinds per run. 0 selects DefaultMaxRestarts.
	MaxRestarts int

	// MaxRetries bounds consecutive Retry repeats of one step. 0 selects
	// DefaultMaxRetries.
	MaxRetries int
}

// DefaultConfig returns the configuration used by New.
func DefaultConfig() Config {
	return Config{
		MaxRestarts: DefaultMaxRestarts,
		MaxRetries:  DefaultMaxRetries,
	}
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	if err := validation.ValidateNonNegative("pipeline", "MaxConcurrency", c.MaxConcurrency); err != nil {
		return err
	}
	if err := validation.ValidateNonNegative("pipeline", "MaxRestarts", c.MaxRestarts); err != nil {
		return err
	}
	return validation.ValidateNonNegative("pipeline", "MaxRetries", c.MaxRetries)
}

// pipeline implements the Pipeline interface.
type pipeline struct {
	config Config
	store  *Store

	// runMu is held for the duration of Perform.
	runMu sync.Mutex

	mu        sync.RWMutex
	steps     []Step
	timeTable TimeTable
	runID     string
	stats     Stats
}

// New creates a pipeline with default configuration.
func New() Pipeline {
	p, _ := NewWithConfig(DefaultConfig())
	return p
}

// NewWithConfig creates a pipeline with the specified configuration.
func NewWithConfig(config Config) (Pipeline, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.MaxRestarts == 0 {
		config.MaxRestarts = DefaultMaxRestarts
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = DefaultMaxRetries
	}
	if config.Sink == nil {
		config.Sink = NopSink{}
	}
	config.InitialVariables = maps.Clone(config.InitialVariables)

	return &pipeline{
		config:    config,
		store:     NewStore(config.InitialVariables),
		timeTable: make(TimeTable),
		stats: Stats{
			OperationStats: make(map[string]OperationStats),
		},
	}, nil
}

// Add appends a step. No name validation is performed.
func (p *pipeline) Add(policy ErrorPolicy, ops ...Operation) Pipeline {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.steps = append(p.steps, newStep(policy, ops))
	return p
}

// Perform runs every step in order, applying step policies on rejection.
func (p *pipeline) Perform(ctx context.Context) error {
	if !p.runMu.TryLock() {
		return sferrors.ErrRunInProgress
	}
	defer p.runMu.Unlock()

	runID := uuid.NewString()

	p.mu.Lock()
	steps := p.steps
	p.runID = runID
	p.timeTable = make(TimeTable)
	p.mu.Unlock()

	p.store.Reset(p.config.InitialVariables)

	e := newEmitter(p.config.Sink, p.config.ID, runID)
	e.runStart(RunInfo{RunID: runID, Pipeline: p.config.ID, Steps: len(steps)})

	start := time.Now()
	summary := p.drive(ctx, e, steps)
	summary.RunID = runID
	summary.Pipeline = p.config.ID
	summary.Duration = time.Since(start)
	summary.Variables = p.store.Len()

	p.updateStats(summary, start)
	e.runComplete(summary)

	return summary.Err
}

// drive walks the cursor over steps until it runs off the end or a fatal
// error occurs.
func (p *pipeline) drive(ctx context.Context, e *emitter, steps []Step) RunSummary {
	var summary RunSummary
	cur := cursor{
		maxRestarts: p.config.MaxRestarts,
		maxRetries:  p.config.MaxRetries,
	}

	for cur.index < len(steps) {
		if err := ctx.Err(); err != nil {
			summary.Err = fmt.Errorf("pipeline stopped before step %d: %w", cur.index+1, err)
			return summary
		}

		idx := cur.index
		step := steps[idx]
		e.logf("=== Step %d ===", idx+1)

		outcomes := p.execute(ctx, step, p.store.Snapshot())
		rejected, rejection := p.settle(e, idx, step, outcomes)
		summary.StepsRun++
		summary.Rejections += rejected

		tr, err := cur.next(step.Policy, rejection)
		if err != nil {
			e.logf("%v", err)
			summary.Err = err
			return summary
		}

		switch tr {
		case transitionAdvance:
			summary.Advances++
		case transitionRestart:
			summary.Restarts++
			e.logf("step %d rejected, starting over (%d/%d)", idx+1, cur.restarts, cur.maxRestarts)
		case transitionRetry:
			summary.Retries++
			e.logf("step %d rejected, retrying (%d/%d)", idx+1, cur.retries, cur.maxRetries)
		}
	}

	return summary
}

// outcome is the settled result of one operation invocation.
type outcome struct {
	result   Result
	err      error
	duration time.Duration
}

// execute starts every operation of step against the same snapshot and
// waits for all of them to settle. Outcomes are returned in declared order.
func (p *pipeline) execute(ctx context.Context, step Step, snapshot map[string]any) []outcome {
	outcomes := make([]outcome, len(step.Operations))

	if pool := p.config.WorkerPool; pool != nil {
		var wg sync.WaitGroup
		for i, op := range step.Operations {
			i, op := i, op
			args := bind(op, snapshot)
			wg.Add(1)
			task := workerpool.TaskFunc(func(taskCtx context.Context) error {
				defer wg.Done()
				outcomes[i] = invoke(taskCtx, op, args)
				return outcomes[i].err
			})
			if err := pool.SubmitWithContext(ctx, task); err != nil {
				wg.Done()
				outcomes[i] = outcome{
					err: sferrors.NewOperationError("pipeline", op.Name, err).WithContext("submit to worker pool"),
				}
			}
		}
		wg.Wait()
		return outcomes
	}

	var g errgroup.Group
	if p.config.MaxConcurrency > 0 {
		g.SetLimit(p.config.MaxConcurrency)
	}
	for i, op := range step.Operations {
		i, op := i, op
		args := bind(op, snapshot)
		g.Go(func() error {
			outcomes[i] = invoke(ctx, op, args)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func invoke(ctx context.Context, op Operation, args Args) outcome {
	start := time.Now()
	res, err := call(ctx, op, args)
	return outcome{result: res, err: err, duration: time.Since(start)}
}

// settle records timings, emits per-operation events and merges results, all
// in declared order. It returns the number of rejected operations and the
// first rejection reason.
func (p *pipeline) settle(e *emitter, idx int, step Step, outcomes []outcome) (int, error) {
	var first error
	rejected := 0

	p.mu.Lock()
	for i, op := range step.Operations {
		p.timeTable[op.Name] = outcomes[i].duration
		p.recordOperation(op.Name, outcomes[i])
	}
	p.mu.Unlock()

	for i, op := range step.Operations {
		o := outcomes[i]
		e.record(idx, op.Name, o.duration)
		if o.err != nil {
			if first == nil {
				first = o.err
			}
			rejected++
			e.reject(idx, op.Name, o.err)
			continue
		}
		e.logf("%s completed in %d ms", op.Name, o.duration.Milliseconds())
	}

	merge(p.store, outcomes, e)
	return rejected, first
}

// Variables returns a copy of the store.
func (p *pipeline) Variables() map[string]any {
	return p.store.Snapshot()
}

// TimeTable returns a copy of the time table.
func (p *pipeline) TimeTable() TimeTable {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return maps.Clone(p.timeTable)
}

// Steps returns the registered steps.
func (p *pipeline) Steps() []Step {
	p.mu.RLock()
	defer p.mu.RUnlock()

	steps := make([]Step, len(p.steps))
	for i, step := range p.steps {
		steps[i] = newStep(step.Policy, step.Operations)
	}
	return steps
}

func (p *pipeline) RunID() string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.runID
}
