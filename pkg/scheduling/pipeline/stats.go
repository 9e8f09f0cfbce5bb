package pipeline

import (
	"maps"
	"time"
)

// Stats holds pipeline execution statistics accumulated across runs.
type Stats struct {
	TotalRuns       int64
	CompletedRuns   int64
	FailedRuns      int64
	Restarts        int64
	Retries         int64
	TotalDuration   time.Duration
	AverageDuration time.Duration
	LastRunAt       time.Time
	OperationStats  map[string]OperationStats
}

// OperationStats holds statistics for operations sharing one name.
type OperationStats struct {
	Name            string
	Invocations     int64
	Rejections      int64
	TotalDuration   time.Duration
	AverageDuration time.Duration
}

// Stats returns pipeline execution statistics.
func (p *pipeline) Stats() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	statsCopy := p.stats
	statsCopy.OperationStats = maps.Clone(p.stats.OperationStats)

	if statsCopy.TotalRuns > 0 {
		statsCopy.AverageDuration = time.Duration(int64(statsCopy.TotalDuration) / statsCopy.TotalRuns)
	}

	return statsCopy
}

// updateStats folds a finished run into the totals.
func (p *pipeline) updateStats(summary RunSummary, start time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stats.TotalRuns++
	p.stats.TotalDuration += summary.Duration
	p.stats.LastRunAt = start
	p.stats.Restarts += int64(summary.Restarts)
	p.stats.Retries += int64(summary.Retries)

	if summary.Err == nil {
		p.stats.CompletedRuns++
	} else {
		p.stats.FailedRuns++
	}
}

// recordOperation updates per-operation statistics. Callers hold p.mu.
func (p *pipeline) recordOperation(name string, o outcome) {
	stats, exists := p.stats.OperationStats[name]
	if !exists {
		stats = OperationStats{Name: name}
	}

	stats.Invocations++
	stats.TotalDuration += o.duration
	if o.err != nil {
		stats.Rejections++
	}
	stats.AverageDuration = time.Duration(int64(stats.TotalDuration) / stats.Invocations)

	p.stats.OperationStats[name] = stats
}
