package search

import (
	"sync"

	"astarviz/internal/grid"
)

type commandKind int

const (
	cmdRun commandKind = iota
	cmdReset
	cmdBlock
	cmdSetStart
	cmdSetTarget
	cmdBarrier
)

func (k commandKind) String() string {
	switch k {
	case cmdRun:
		return "run"
	case cmdReset:
		return "reset"
	case cmdBlock:
		return "block"
	case cmdSetStart:
		return "set-start"
	case cmdSetTarget:
		return "set-target"
	case cmdBarrier:
		return "barrier"
	default:
		return "unknown"
	}
}

type command struct {
	kind commandKind
	pos  grid.Position
	done chan struct{}
}

// commandQueue collects commands from any goroutine for the engine worker to
// drain between steps.
type commandQueue struct {
	mu      sync.Mutex
	pending []command
	wake    chan struct{}
}

func newCommandQueue() *commandQueue {
	return &commandQueue{wake: make(chan struct{}, 1)}
}

func (q *commandQueue) Enqueue(cmd command) {
	q.mu.Lock()
	q.pending = append(q.pending, cmd)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Drain removes up to max commands in FIFO order; max <= 0 drains everything.
func (q *commandQueue) Drain(max int) []command {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	if max <= 0 || max >= len(q.pending) {
		batch := q.pending
		q.pending = nil
		return batch
	}
	batch := append([]command(nil), q.pending[:max]...)
	q.pending = q.pending[max:]
	return batch
}

func (q *commandQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Wake is signalled at least once after every Enqueue.
func (q *commandQueue) Wake() <-chan struct{} {
	return q.wake
}
