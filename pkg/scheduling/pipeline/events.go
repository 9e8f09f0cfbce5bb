package pipeline

import (
	"fmt"
	"os"
	"time"
)

// Record reports the measured duration of one operation invocation. Step is
// the zero-based index of the step that ran it.
type Record struct {
	RunID     string
	Step      int
	Operation string
	Duration  time.Duration
}

// Millis returns the duration in whole milliseconds.
func (r Record) Millis() int64 {
	return r.Duration.Milliseconds()
}

// Failure reports a rejected operation.
type Failure struct {
	RunID     string
	Step      int
	Operation string
	Reason    error
}

// Message renders the failure the way it appears on the log feed.
func (f Failure) Message() string {
	reason := "<nil>"
	if f.Reason != nil {
		reason = f.Reason.Error()
	}
	return fmt.Sprintf("%s rejected for reason: %q", f.Operation, reason)
}

// RunInfo describes a run that is about to start.
type RunInfo struct {
	RunID    string
	Pipeline string
	Steps    int
}

// RunSummary describes a finished run.
type RunSummary struct {
	RunID      string
	Pipeline   string
	Duration   time.Duration
	StepsRun   int
	Advances   int
	Restarts   int
	Retries    int
	Rejections int
	Variables  int
	Err        error
}

// Sink receives the three event feeds of a pipeline. Methods are called from
// the goroutine running Perform, never concurrently for one run.
type Sink interface {
	OnLog(line string)
	OnRecord(rec Record)
	OnErr(f Failure)
}

// RunObserver is implemented by sinks that also want run boundaries.
type RunObserver interface {
	OnRunStart(info RunInfo)
	OnRunComplete(summary RunSummary)
}

// SinkFuncs adapts plain functions to Sink. Nil fields are skipped.
type SinkFuncs struct {
	Log    func(line string)
	Record func(rec Record)
	Err    func(f Failure)
}

func (s SinkFuncs) OnLog(line string) {
	if s.Log != nil {
		s.Log(line)
	}
}

func (s SinkFuncs) OnRecord(rec Record) {
	if s.Record != nil {
		s.Record(rec)
	}
}

func (s SinkFuncs) OnErr(f Failure) {
	if s.Err != nil {
		s.Err(f)
	}
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) OnLog(string)    {}
func (NopSink) OnRecord(Record) {}
func (NopSink) OnErr(Failure)   {}

// MultiSink fans every event out to each sink in order. Run boundaries are
// forwarded to the members that implement RunObserver.
type MultiSink []Sink

func (m MultiSink) OnLog(line string) {
	for _, s := range m {
		s.OnLog(line)
	}
}

func (m MultiSink) OnRecord(rec Record) {
	for _, s := range m {
		s.OnRecord(rec)
	}
}

func (m MultiSink) OnErr(f Failure) {
	for _, s := range m {
		s.OnErr(f)
	}
}

func (m MultiSink) OnRunStart(info RunInfo) {
	for _, s := range m {
		if o, ok := s.(RunObserver); ok {
			o.OnRunStart(info)
		}
	}
}

func (m MultiSink) OnRunComplete(summary RunSummary) {
	for _, s := range m {
		if o, ok := s.(RunObserver); ok {
			o.OnRunComplete(summary)
		}
	}
}

// emitter formats and delivers the events of a single run.
type emitter struct {
	sink   Sink
	prefix string
	runID  string
	now    func() time.Time
}

func newEmitter(sink Sink, id, runID string) *emitter {
	if id == "" {
		id = fmt.Sprintf("PID %d", os.Getpid())
	}
	return &emitter{
		sink:   sink,
		prefix: id,
		runID:  runID,
		now:    time.Now,
	}
}

func (e *emitter) logf(format string, args ...any) {
	e.sink.OnLog(fmt.Sprintf("[%s][%s] %s", e.prefix, e.now().Format("15:04:05"), fmt.Sprintf(format, args...)))
}

func (e *emitter) record(step int, op string, d time.Duration) {
	e.sink.OnRecord(Record{RunID: e.runID, Step: step, Operation: op, Duration: d})
}

func (e *emitter) reject(step int, op string, reason error) {
	f := Failure{RunID: e.runID, Step: step, Operation: op, Reason: reason}
	e.logf("%s", f.Message())
	e.sink.OnErr(f)
}

func (e *emitter) runStart(info RunInfo) {
	if o, ok := e.sink.(RunObserver); ok {
		o.OnRunStart(info)
	}
}

func (e *emitter) runComplete(summary RunSummary) {
	if o, ok := e.sink.(RunObserver); ok {
		o.OnRunComplete(summary)
	}
}
