package search

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"astarviz/internal/grid"
)

// DefaultStepDelay paces a run so a renderer can follow it cell by cell.
const DefaultStepDelay = 10 * time.Millisecond

// ErrAlreadyServing is returned when a second worker is started on one engine.
var ErrAlreadyServing = errors.New("search: engine worker already running")

// Snapshot is a consistent copy of the engine state.
type Snapshot struct {
	State    State
	Start    grid.Position
	Target   grid.Position
	Frontier []grid.Position
	Explored []grid.Position
	Blocked  []grid.Position
	Path     []grid.Position
	// Cost is the accumulated cost of Path; zero unless State is StateSucceeded.
	Cost int
}

// Engine runs an incremental A* search over the 8-connected grid.
//
// All mutation happens on the worker started by Serve. Commands are queued and
// applied between steps; queries may be issued from any goroutine.
type Engine struct {
	bounds    grid.Bounds
	renderer  Renderer
	observer  StateObserver
	profiler  Profiler
	logger    *log.Logger
	stepDelay time.Duration
	batch     int

	commands *commandQueue
	// resets counts Reset calls whose command has not been applied yet.
	resets  atomic.Int64
	serving atomic.Bool

	mu       sync.RWMutex
	state    State
	start    grid.Position
	target   grid.Position
	blocked  grid.Set
	explored grid.Set
	frontier *Frontier
	arena    []Node
	path     []grid.Position
	cost     int
	finished chan struct{}

	// events is only touched by the worker.
	events []event
}

// Option customizes an Engine.
type Option func(*Engine)

// WithRenderer sets the notification sink. If r also implements
// StateObserver it receives lifecycle changes.
func WithRenderer(r Renderer) Option {
	return func(e *Engine) {
		if r == nil {
			return
		}
		e.renderer = r
		if o, ok := r.(StateObserver); ok {
			e.observer = o
		}
	}
}

func WithProfiler(p Profiler) Option {
	return func(e *Engine) {
		if p != nil {
			e.profiler = p
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithStepDelay sets the pause after each expanded cell. Zero disables pacing.
func WithStepDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.stepDelay = d
		}
	}
}

// WithCommandBatch limits how many queued commands are applied per step
// boundary. Zero or less applies all pending commands.
func WithCommandBatch(n int) Option {
	return func(e *Engine) { e.batch = n }
}

func WithStart(p grid.Position) Option {
	return func(e *Engine) { e.start = p }
}

func WithTarget(p grid.Position) Option {
	return func(e *Engine) { e.target = p }
}

// New creates an idle engine bounded by b.
func New(b grid.Bounds, opts ...Option) *Engine {
	e := &Engine{
		bounds:    b,
		renderer:  nopRenderer{},
		profiler:  nopProfiler{},
		logger:    log.New(log.Writer(), "astar-engine ", log.LstdFlags|log.Lmicroseconds),
		stepDelay: DefaultStepDelay,
		commands:  newCommandQueue(),
		frontier:  NewFrontier(),
		start:     grid.Pos(40, 500),
		target:    grid.Pos(720, 20),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run asks the engine to begin a search. It is ignored unless the engine is idle.
func (e *Engine) Run() {
	e.commands.Enqueue(command{kind: cmdRun})
}

// Reset halts any run and clears frontier, explored, blocked and path.
// Start and target are kept.
func (e *Engine) Reset() {
	e.resets.Add(1)
	e.commands.Enqueue(command{kind: cmdReset})
}

// SetBlocked marks pos as impassable. The engine does not check it against
// start or target.
func (e *Engine) SetBlocked(pos grid.Position) {
	e.commands.Enqueue(command{kind: cmdBlock, pos: pos})
}

// SetStart relocates the start cell. A running search is unaffected.
func (e *Engine) SetStart(pos grid.Position) {
	e.commands.Enqueue(command{kind: cmdSetStart, pos: pos})
}

// SetTarget relocates the target cell. Nodes created afterwards use the new
// heuristic; existing frontier entries keep theirs.
func (e *Engine) SetTarget(pos grid.Position) {
	e.commands.Enqueue(command{kind: cmdSetTarget, pos: pos})
}

// Flush blocks until every command queued before the call has been applied.
func (e *Engine) Flush(ctx context.Context) error {
	done := make(chan struct{})
	e.commands.Enqueue(command{kind: cmdBarrier, done: done})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait flushes pending commands and then blocks until the engine is no longer
// running. It returns the state at that moment.
func (e *Engine) Wait(ctx context.Context) (State, error) {
	if err := e.Flush(ctx); err != nil {
		return e.State(), err
	}
	e.mu.RLock()
	state, finished := e.state, e.finished
	e.mu.RUnlock()
	if state != StateRunning {
		return state, nil
	}
	select {
	case <-finished:
		return e.State(), nil
	case <-ctx.Done():
		return e.State(), ctx.Err()
	}
}

// Serve runs the engine worker until ctx is cancelled.
func (e *Engine) Serve(ctx context.Context) error {
	if !e.serving.CompareAndSwap(false, true) {
		return ErrAlreadyServing
	}
	defer e.serving.Store(false)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		e.applyCommands()
		if !e.IsRunning() {
			if e.commands.Len() > 0 {
				continue
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-e.commands.Wake():
			}
			continue
		}

		e.step()
		if !e.IsRunning() {
			continue
		}
		if e.stepDelay <= 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			continue
		}
		if err := e.pause(ctx, timer); err != nil {
			return err
		}
	}
}

// pause waits out the step delay while still applying commands, returning
// early once the run stops.
func (e *Engine) pause(ctx context.Context, timer *time.Timer) error {
	timer.Reset(e.stepDelay)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		case <-e.commands.Wake():
			e.applyCommands()
			if !e.IsRunning() {
				return nil
			}
		}
	}
}

func (e *Engine) applyCommands() {
	batch := e.commands.Drain(e.batch)
	if len(batch) == 0 {
		return
	}

	e.mu.Lock()
	for _, cmd := range batch {
		e.applyLocked(cmd)
	}
	e.mu.Unlock()

	e.dispatch()
	for _, cmd := range batch {
		if cmd.done != nil {
			close(cmd.done)
		}
	}
}

func (e *Engine) applyLocked(cmd command) {
	switch cmd.kind {
	case cmdRun:
		if e.state != StateIdle {
			e.logger.Printf("run ignored: engine is %s", e.state)
			return
		}
		h := grid.Heuristic(e.start, e.target)
		e.profiler.RecordHeuristicEvaluation()
		e.frontier.Insert(Node{Pos: e.start, Parent: noParent, G: 0, H: h})
		e.finished = make(chan struct{})
		e.setStateLocked(StateRunning)
		e.profiler.RecordRunStarted()
		e.logger.Printf("run started from %v to %v", e.start, e.target)
	case cmdReset:
		e.resets.Add(-1)
		e.resetLocked()
	case cmdBlock:
		e.blocked.Add(cmd.pos)
	case cmdSetStart:
		e.start = cmd.pos
	case cmdSetTarget:
		e.target = cmd.pos
	case cmdBarrier:
	}
}

func (e *Engine) resetLocked() {
	wasEmpty := e.state == StateIdle && e.frontier.Len() == 0 && e.explored.Len() == 0 &&
		e.blocked.Len() == 0 && len(e.path) == 0
	if wasEmpty {
		return
	}
	e.frontier.Clear()
	e.explored.Clear()
	e.blocked.Clear()
	e.arena = e.arena[:0]
	e.path = nil
	e.cost = 0
	if e.state == StateRunning {
		e.logger.Printf("run interrupted by reset")
	}
	e.setStateLocked(StateIdle)
	e.profiler.RecordReset()
}

func (e *Engine) setStateLocked(s State) {
	if s == e.state {
		return
	}
	if e.state == StateRunning && e.finished != nil {
		close(e.finished)
		e.finished = nil
	}
	e.state = s
	e.events = append(e.events, event{kind: eventState, state: s})
}

// step performs one iteration of the search loop under the write lock.
func (e *Engine) step() {
	e.mu.Lock()
	e.stepLocked()
	e.mu.Unlock()
	e.dispatch()
}

func (e *Engine) stepLocked() {
	if e.state != StateRunning || e.cancelled() {
		return
	}

	current, ok := e.frontier.ExtractMin()
	if !ok {
		e.setStateLocked(StateFailed)
		e.profiler.RecordRunFinished(StateFailed, 0)
		e.logger.Printf("run failed: no path after expanding %d cells", len(e.arena))
		return
	}
	if current.Pos == e.target {
		e.reconstructLocked(current)
		e.setStateLocked(StateSucceeded)
		e.profiler.RecordRunFinished(StateSucceeded, len(e.path)-1)
		e.logger.Printf("run succeeded: %d steps, cost %d, %d cells expanded", len(e.path)-1, e.cost, len(e.arena))
		return
	}

	e.explored.Add(current.Pos)
	ref := len(e.arena)
	e.arena = append(e.arena, current)
	e.events = append(e.events, event{kind: eventExplored, pos: current.Pos})
	e.profiler.RecordNodeExpanded()

	for _, next := range grid.Neighbors(current.Pos) {
		if e.cancelled() {
			return
		}
		if !grid.Contains(e.bounds, next) {
			e.profiler.RecordNeighborSkipped(SkipOutOfBounds)
			continue
		}
		if e.explored.Contains(next) {
			e.profiler.RecordNeighborSkipped(SkipExplored)
			continue
		}
		if e.blocked.Contains(next) {
			e.profiler.RecordNeighborSkipped(SkipBlocked)
			continue
		}

		g := current.G + grid.Distance(current.Pos, next)
		existing, found := e.frontier.Find(next)
		switch {
		case !found:
			e.frontier.Insert(e.newNodeLocked(next, ref, g))
			e.profiler.RecordFrontierInsert()
		case existing.G > g:
			e.frontier.Remove(next)
			e.frontier.Insert(e.newNodeLocked(next, ref, g))
			e.profiler.RecordFrontierReplace()
		default:
			e.profiler.RecordNeighborSkipped(SkipNotCheaper)
			continue
		}
		e.events = append(e.events, event{kind: eventFrontier, pos: next})
	}
}

// cancelled reports whether a reset is waiting to be applied.
func (e *Engine) cancelled() bool {
	return e.resets.Load() > 0
}

// reconstructLocked follows parent links from the goal back to the root node.
// Path cells strictly between start and target are announced goal first.
func (e *Engine) reconstructLocked(goal Node) {
	path := []grid.Position{goal.Pos}
	for ref := goal.Parent; ref != noParent; ref = e.arena[ref].Parent {
		node := e.arena[ref]
		path = append(path, node.Pos)
		if node.HasParent() {
			e.events = append(e.events, event{kind: eventPath, pos: node.Pos})
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	e.path = path
	e.cost = goal.G
}

func (e *Engine) newNodeLocked(pos grid.Position, parent, g int) Node {
	e.profiler.RecordHeuristicEvaluation()
	return Node{Pos: pos, Parent: parent, G: g, H: grid.Heuristic(pos, e.target)}
}

// dispatch delivers buffered events outside the lock.
func (e *Engine) dispatch() {
	if len(e.events) == 0 {
		return
	}
	events := e.events
	e.events = nil
	for _, ev := range events {
		switch ev.kind {
		case eventExplored:
			e.renderer.CellExplored(ev.pos)
		case eventFrontier:
			e.renderer.CellFrontier(ev.pos)
		case eventPath:
			e.renderer.CellPath(ev.pos)
		case eventState:
			if e.observer != nil {
				e.observer.StateChanged(ev.state)
			}
		}
	}
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

func (e *Engine) IsRunning() bool {
	return e.State() == StateRunning
}

func (e *Engine) StartPosition() grid.Position {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.start
}

func (e *Engine) TargetPosition() grid.Position {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.target
}

// IsBlocked reports whether pos is currently marked impassable.
func (e *Engine) IsBlocked(pos grid.Position) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.blocked.Contains(pos)
}

func (e *Engine) FrontierPositions() []grid.Position {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.frontier.Positions()
}

func (e *Engine) ExploredPositions() []grid.Position {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.explored.Positions()
}

func (e *Engine) BlockedPositions() []grid.Position {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.blocked.Positions()
}

// PathPositions returns the reconstructed path from start to target, or nil.
func (e *Engine) PathPositions() []grid.Position {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]grid.Position(nil), e.path...)
}

// Bounds returns the bounds provider the engine expands within.
func (e *Engine) Bounds() grid.Bounds {
	return e.bounds
}

// Snapshot copies the full state under one read lock.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Snapshot{
		State:    e.state,
		Start:    e.start,
		Target:   e.target,
		Frontier: e.frontier.Positions(),
		Explored: e.explored.Positions(),
		Blocked:  e.blocked.Positions(),
		Path:     append([]grid.Position(nil), e.path...),
		Cost:     e.cost,
	}
}
