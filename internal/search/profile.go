package search

import "sync/atomic"

// SkipReason explains why a neighbor was not considered for the frontier.
type SkipReason int

const (
	SkipOutOfBounds SkipReason = iota
	SkipExplored
	SkipBlocked
	SkipNotCheaper
)

// Profiler captures instrumentation hooks for engine runs. Calls arrive on the
// engine worker goroutine.
type Profiler interface {
	RecordRunStarted()
	RecordRunFinished(state State, pathSteps int)
	RecordReset()
	RecordNodeExpanded()
	RecordHeuristicEvaluation()
	RecordFrontierInsert()
	RecordFrontierReplace()
	RecordNeighborSkipped(reason SkipReason)
}

// Metrics accumulates profiling counters across engine runs.
type Metrics struct {
	runsStarted          atomic.Int64
	runsSucceeded        atomic.Int64
	runsFailed           atomic.Int64
	resets               atomic.Int64
	nodesExpanded        atomic.Int64
	heuristicEvaluations atomic.Int64
	frontierInserts      atomic.Int64
	frontierReplacements atomic.Int64
	skippedBounds        atomic.Int64
	skippedExplored      atomic.Int64
	skippedBlocked       atomic.Int64
	skippedNotCheaper    atomic.Int64
	lastPathSteps        atomic.Int64
}

// MetricsSnapshot captures a point-in-time copy of engine metrics.
type MetricsSnapshot struct {
	RunsStarted          int64
	RunsSucceeded        int64
	RunsFailed           int64
	Resets               int64
	NodesExpanded        int64
	HeuristicEvaluations int64
	FrontierInserts      int64
	FrontierReplacements int64
	SkippedOutOfBounds   int64
	SkippedExplored      int64
	SkippedBlocked       int64
	SkippedNotCheaper    int64
	LastPathSteps        int64
}

// Profiler returns a Profiler backed by this metric set.
func (m *Metrics) Profiler() Profiler {
	if m == nil {
		return nil
	}
	return (*metricsProfiler)(m)
}

// Reset zeroes all counters.
func (m *Metrics) Reset() {
	if m == nil {
		return
	}
	for _, c := range m.counters() {
		c.Store(0)
	}
}

func (m *Metrics) counters() []*atomic.Int64 {
	return []*atomic.Int64{
		&m.runsStarted, &m.runsSucceeded, &m.runsFailed, &m.resets,
		&m.nodesExpanded, &m.heuristicEvaluations,
		&m.frontierInserts, &m.frontierReplacements,
		&m.skippedBounds, &m.skippedExplored, &m.skippedBlocked, &m.skippedNotCheaper,
		&m.lastPathSteps,
	}
}

// Snapshot captures the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		RunsStarted:          m.runsStarted.Load(),
		RunsSucceeded:        m.runsSucceeded.Load(),
		RunsFailed:           m.runsFailed.Load(),
		Resets:               m.resets.Load(),
		NodesExpanded:        m.nodesExpanded.Load(),
		HeuristicEvaluations: m.heuristicEvaluations.Load(),
		FrontierInserts:      m.frontierInserts.Load(),
		FrontierReplacements: m.frontierReplacements.Load(),
		SkippedOutOfBounds:   m.skippedBounds.Load(),
		SkippedExplored:      m.skippedExplored.Load(),
		SkippedBlocked:       m.skippedBlocked.Load(),
		SkippedNotCheaper:    m.skippedNotCheaper.Load(),
		LastPathSteps:        m.lastPathSteps.Load(),
	}
}

// Add folds another snapshot into s.
func (s *MetricsSnapshot) Add(o MetricsSnapshot) {
	s.RunsStarted += o.RunsStarted
	s.RunsSucceeded += o.RunsSucceeded
	s.RunsFailed += o.RunsFailed
	s.Resets += o.Resets
	s.NodesExpanded += o.NodesExpanded
	s.HeuristicEvaluations += o.HeuristicEvaluations
	s.FrontierInserts += o.FrontierInserts
	s.FrontierReplacements += o.FrontierReplacements
	s.SkippedOutOfBounds += o.SkippedOutOfBounds
	s.SkippedExplored += o.SkippedExplored
	s.SkippedBlocked += o.SkippedBlocked
	s.SkippedNotCheaper += o.SkippedNotCheaper
	s.LastPathSteps = o.LastPathSteps
}

// metricsProfiler implements Profiler by mutating the backing metrics set.
type metricsProfiler Metrics

func (m *metricsProfiler) RecordRunStarted() {
	(*Metrics)(m).runsStarted.Add(1)
}

func (m *metricsProfiler) RecordRunFinished(state State, pathSteps int) {
	metrics := (*Metrics)(m)
	switch state {
	case StateSucceeded:
		metrics.runsSucceeded.Add(1)
		metrics.lastPathSteps.Store(int64(pathSteps))
	case StateFailed:
		metrics.runsFailed.Add(1)
	}
}

func (m *metricsProfiler) RecordReset() {
	(*Metrics)(m).resets.Add(1)
}

func (m *metricsProfiler) RecordNodeExpanded() {
	(*Metrics)(m).nodesExpanded.Add(1)
}

func (m *metricsProfiler) RecordHeuristicEvaluation() {
	(*Metrics)(m).heuristicEvaluations.Add(1)
}

func (m *metricsProfiler) RecordFrontierInsert() {
	(*Metrics)(m).frontierInserts.Add(1)
}

func (m *metricsProfiler) RecordFrontierReplace() {
	(*Metrics)(m).frontierReplacements.Add(1)
}

func (m *metricsProfiler) RecordNeighborSkipped(reason SkipReason) {
	metrics := (*Metrics)(m)
	switch reason {
	case SkipOutOfBounds:
		metrics.skippedBounds.Add(1)
	case SkipExplored:
		metrics.skippedExplored.Add(1)
	case SkipBlocked:
		metrics.skippedBlocked.Add(1)
	case SkipNotCheaper:
		metrics.skippedNotCheaper.Add(1)
	}
}

type nopProfiler struct{}

func (nopProfiler) RecordRunStarted()                {}
func (nopProfiler) RecordRunFinished(State, int)     {}
func (nopProfiler) RecordReset()                     {}
func (nopProfiler) RecordNodeExpanded()              {}
func (nopProfiler) RecordHeuristicEvaluation()       {}
func (nopProfiler) RecordFrontierInsert()            {}
func (nopProfiler) RecordFrontierReplace()           {}
func (nopProfiler) RecordNeighborSkipped(SkipReason) {}
