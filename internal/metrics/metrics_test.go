package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astarviz/internal/search"
)

func TestCollectorReportsSnapshot(t *testing.T) {
	snap := search.MetricsSnapshot{
		RunsStarted:     3,
		RunsSucceeded:   2,
		NodesExpanded:   120,
		SkippedBlocked:  7,
		LastPathSteps:   68,
		FrontierInserts: 400,
	}
	c := NewCollector(
		func() search.MetricsSnapshot { return snap },
		func() search.State { return search.StateRunning },
	)

	// 8 counters, 4 skip reasons, last path gauge, 4 state gauges.
	assert.Equal(t, 17, testutil.CollectAndCount(c))

	expected := `
# HELP astar_last_path_steps Steps in the most recent successful path.
# TYPE astar_last_path_steps gauge
astar_last_path_steps 68
# HELP astar_runs_started_total Searches started.
# TYPE astar_runs_started_total counter
astar_runs_started_total 3
# HELP astar_engine_state 1 for the engine's current lifecycle state.
# TYPE astar_engine_state gauge
astar_engine_state{state="failed"} 0
astar_engine_state{state="idle"} 0
astar_engine_state{state="running"} 1
astar_engine_state{state="succeeded"} 0
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected),
		"astar_last_path_steps", "astar_runs_started_total", "astar_engine_state"))
}

func TestRunTimerObservesOutcomes(t *testing.T) {
	var m search.Metrics
	timer := NewRunTimer(m.Profiler())
	clock := time.Unix(0, 0)
	timer.now = func() time.Time { return clock }

	timer.RecordRunStarted()
	clock = clock.Add(50 * time.Millisecond)
	timer.RecordRunFinished(search.StateSucceeded, 12)

	// A reset with no run in flight observes nothing.
	timer.RecordReset()

	timer.RecordRunStarted()
	clock = clock.Add(time.Second)
	timer.RecordReset()

	assert.Equal(t, 2, testutil.CollectAndCount(timer))
	stats := m.Snapshot()
	assert.EqualValues(t, 2, stats.RunsStarted)
	assert.EqualValues(t, 1, stats.RunsSucceeded)
	assert.EqualValues(t, 2, stats.Resets)
	assert.EqualValues(t, 12, stats.LastPathSteps)
}

func TestHandlerServesRegistry(t *testing.T) {
	var m search.Metrics
	reg := NewRegistry(NewCollector(m.Snapshot, nil))
	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "astar_nodes_expanded_total 0")
	assert.Contains(t, string(body), "go_goroutines")
}
