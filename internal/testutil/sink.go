package testutil

import (
	"strings"
	"sync"

	"github.com/vnykmshr/stepflow/pkg/scheduling/pipeline"
)

// RecordingSink keeps every pipeline event it receives.
type RecordingSink struct {
	mu       sync.Mutex
	logs     []string
	records  []pipeline.Record
	failures []pipeline.Failure
	starts   []pipeline.RunInfo
	runs     []pipeline.RunSummary
}

func (s *RecordingSink) OnLog(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, line)
}

func (s *RecordingSink) OnRecord(rec pipeline.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
}

func (s *RecordingSink) OnErr(f pipeline.Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, f)
}

func (s *RecordingSink) OnRunStart(info pipeline.RunInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.starts = append(s.starts, info)
}

func (s *RecordingSink) OnRunComplete(summary pipeline.RunSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, summary)
}

// Logs returns the log lines received so far.
func (s *RecordingSink) Logs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.logs...)
}

// LogsContaining returns the log lines that contain substr.
func (s *RecordingSink) LogsContaining(substr string) []string {
	var out []string
	for _, line := range s.Logs() {
		if strings.Contains(line, substr) {
			out = append(out, line)
		}
	}
	return out
}

// Records returns the timing records received so far.
func (s *RecordingSink) Records() []pipeline.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]pipeline.Record(nil), s.records...)
}

// Failures returns the rejections received so far.
func (s *RecordingSink) Failures() []pipeline.Failure {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]pipeline.Failure(nil), s.failures...)
}

// Starts returns the run starts received so far.
func (s *RecordingSink) Starts() []pipeline.RunInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]pipeline.RunInfo(nil), s.starts...)
}

// Runs returns the completed run summaries received so far.
func (s *RecordingSink) Runs() []pipeline.RunSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]pipeline.RunSummary(nil), s.runs...)
}
