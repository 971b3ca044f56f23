package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"astarviz/internal/search"
)

// RunTimer wraps a Profiler and observes how long each run takes from start
// to its terminal state. A reset during a run records it as interrupted.
type RunTimer struct {
	search.Profiler

	duration *prometheus.HistogramVec
	now      func() time.Time

	mu      sync.Mutex
	started time.Time
}

func NewRunTimer(next search.Profiler) *RunTimer {
	return &RunTimer{
		Profiler: next,
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time from run start to its outcome.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		}, []string{"outcome"}),
		now: time.Now,
	}
}

func (t *RunTimer) RecordRunStarted() {
	t.mu.Lock()
	t.started = t.now()
	t.mu.Unlock()
	t.Profiler.RecordRunStarted()
}

func (t *RunTimer) RecordRunFinished(state search.State, pathSteps int) {
	t.observe(state.String())
	t.Profiler.RecordRunFinished(state, pathSteps)
}

func (t *RunTimer) RecordReset() {
	t.observe("interrupted")
	t.Profiler.RecordReset()
}

func (t *RunTimer) observe(outcome string) {
	t.mu.Lock()
	started := t.started
	t.started = time.Time{}
	t.mu.Unlock()
	if started.IsZero() {
		return
	}
	t.duration.WithLabelValues(outcome).Observe(t.now().Sub(started).Seconds())
}

func (t *RunTimer) Describe(ch chan<- *prometheus.Desc) {
	t.duration.Describe(ch)
}

func (t *RunTimer) Collect(ch chan<- prometheus.Metric) {
	t.duration.Collect(ch)
}
