package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	promcollectors "github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"astarviz/internal/search"
)

const namespace = "astar"

type counterDesc struct {
	desc  *prometheus.Desc
	value func(search.MetricsSnapshot) int64
}

// Collector exposes engine counters to prometheus. Values are read from a
// snapshot function at scrape time so the engine never touches prometheus.
type Collector struct {
	snapshot func() search.MetricsSnapshot
	state    func() search.State

	counters  []counterDesc
	skipped   *prometheus.Desc
	pathSteps *prometheus.Desc
	stateDesc *prometheus.Desc
}

// NewCollector builds a collector over the given sources. state may be nil.
func NewCollector(snapshot func() search.MetricsSnapshot, state func() search.State) *Collector {
	counter := func(name, help string, value func(search.MetricsSnapshot) int64) counterDesc {
		return counterDesc{
			desc:  prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, nil, nil),
			value: value,
		}
	}
	return &Collector{
		snapshot: snapshot,
		state:    state,
		counters: []counterDesc{
			counter("runs_started_total", "Searches started.", func(s search.MetricsSnapshot) int64 { return s.RunsStarted }),
			counter("runs_succeeded_total", "Searches that reached the target.", func(s search.MetricsSnapshot) int64 { return s.RunsSucceeded }),
			counter("runs_failed_total", "Searches that exhausted the frontier.", func(s search.MetricsSnapshot) int64 { return s.RunsFailed }),
			counter("resets_total", "Resets that cleared engine state.", func(s search.MetricsSnapshot) int64 { return s.Resets }),
			counter("nodes_expanded_total", "Cells moved from the frontier to the explored set.", func(s search.MetricsSnapshot) int64 { return s.NodesExpanded }),
			counter("heuristic_evaluations_total", "Heuristic evaluations.", func(s search.MetricsSnapshot) int64 { return s.HeuristicEvaluations }),
			counter("frontier_inserts_total", "New frontier entries.", func(s search.MetricsSnapshot) int64 { return s.FrontierInserts }),
			counter("frontier_replacements_total", "Frontier entries replaced by a cheaper route.", func(s search.MetricsSnapshot) int64 { return s.FrontierReplacements }),
		},
		skipped: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "neighbors_skipped_total"),
			"Neighbors not considered for the frontier, by reason.", []string{"reason"}, nil),
		pathSteps: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "last_path_steps"),
			"Steps in the most recent successful path.", nil, nil),
		stateDesc: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "engine_state"),
			"1 for the engine's current lifecycle state.", []string{"state"}, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, counter := range c.counters {
		ch <- counter.desc
	}
	ch <- c.skipped
	ch <- c.pathSteps
	if c.state != nil {
		ch <- c.stateDesc
	}
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.snapshot()
	for _, counter := range c.counters {
		ch <- prometheus.MustNewConstMetric(counter.desc, prometheus.CounterValue, float64(counter.value(snap)))
	}
	for reason, v := range map[string]int64{
		"out_of_bounds": snap.SkippedOutOfBounds,
		"explored":      snap.SkippedExplored,
		"blocked":       snap.SkippedBlocked,
		"not_cheaper":   snap.SkippedNotCheaper,
	} {
		ch <- prometheus.MustNewConstMetric(c.skipped, prometheus.CounterValue, float64(v), reason)
	}
	ch <- prometheus.MustNewConstMetric(c.pathSteps, prometheus.GaugeValue, float64(snap.LastPathSteps))
	if c.state == nil {
		return
	}
	current := c.state()
	for _, s := range []search.State{search.StateIdle, search.StateRunning, search.StateSucceeded, search.StateFailed} {
		v := 0.0
		if s == current {
			v = 1
		}
		ch <- prometheus.MustNewConstMetric(c.stateDesc, prometheus.GaugeValue, v, s.String())
	}
}

// NewRegistry returns a registry holding the given collectors plus the Go
// runtime and process collectors.
func NewRegistry(collectors ...prometheus.Collector) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(promcollectors.NewGoCollector(), promcollectors.NewProcessCollector(promcollectors.ProcessCollectorOpts{}))
	reg.MustRegister(collectors...)
	return reg
}

// Handler serves the registry in the prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
