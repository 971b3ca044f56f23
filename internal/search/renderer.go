package search

import "astarviz/internal/grid"

// State is the engine's position in the run lifecycle.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends a run.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// ParseState is the inverse of State.String.
func ParseState(v string) (State, bool) {
	for _, s := range []State{StateIdle, StateRunning, StateSucceeded, StateFailed} {
		if s.String() == v {
			return s, true
		}
	}
	return StateIdle, false
}

// Renderer receives per-cell notifications. Calls are made from the engine
// worker, in step order, without any engine lock held, so implementations may
// call back into the engine's query methods.
type Renderer interface {
	CellExplored(pos grid.Position)
	CellFrontier(pos grid.Position)
	CellPath(pos grid.Position)
}

// StateObserver is implemented by renderers that also want lifecycle changes.
// StateChanged(StateIdle) follows every reset.
type StateObserver interface {
	StateChanged(state State)
}

// Renderers fans notifications out to several renderers in order.
type Renderers []Renderer

func (rs Renderers) CellExplored(pos grid.Position) {
	for _, r := range rs {
		r.CellExplored(pos)
	}
}

func (rs Renderers) CellFrontier(pos grid.Position) {
	for _, r := range rs {
		r.CellFrontier(pos)
	}
}

func (rs Renderers) CellPath(pos grid.Position) {
	for _, r := range rs {
		r.CellPath(pos)
	}
}

func (rs Renderers) StateChanged(state State) {
	for _, r := range rs {
		if o, ok := r.(StateObserver); ok {
			o.StateChanged(state)
		}
	}
}

type nopRenderer struct{}

func (nopRenderer) CellExplored(grid.Position) {}
func (nopRenderer) CellFrontier(grid.Position) {}
func (nopRenderer) CellPath(grid.Position)     {}

type eventKind int

const (
	eventExplored eventKind = iota
	eventFrontier
	eventPath
	eventState
)

type event struct {
	kind  eventKind
	pos   grid.Position
	state State
}
