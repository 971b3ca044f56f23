package search

import (
	"container/heap"

	"astarviz/internal/grid"
)

// Frontier holds candidate nodes keyed by position and ordered by F. Ties are
// broken by the smaller H, then by insertion order, so equal inputs always
// expand in the same sequence.
type Frontier struct {
	queue frontierQueue
	byPos map[grid.Position]*frontierItem
	seq   uint64
}

func NewFrontier() *Frontier {
	return &Frontier{byPos: make(map[grid.Position]*frontierItem)}
}

// Insert adds n. An existing entry at the same position is replaced.
func (f *Frontier) Insert(n Node) {
	if old, ok := f.byPos[n.Pos]; ok {
		heap.Remove(&f.queue, old.index)
	}
	f.seq++
	item := &frontierItem{node: n, seq: f.seq}
	heap.Push(&f.queue, item)
	f.byPos[n.Pos] = item
}

// ExtractMin removes and returns the node with the lowest F.
func (f *Frontier) ExtractMin() (Node, bool) {
	if f.queue.Len() == 0 {
		return Node{}, false
	}
	item := heap.Pop(&f.queue).(*frontierItem)
	delete(f.byPos, item.node.Pos)
	return item.node, true
}

// Find returns the entry at pos, if any.
func (f *Frontier) Find(pos grid.Position) (Node, bool) {
	item, ok := f.byPos[pos]
	if !ok {
		return Node{}, false
	}
	return item.node, true
}

// Remove drops the entry at pos and reports whether one existed.
func (f *Frontier) Remove(pos grid.Position) bool {
	item, ok := f.byPos[pos]
	if !ok {
		return false
	}
	heap.Remove(&f.queue, item.index)
	delete(f.byPos, pos)
	return true
}

func (f *Frontier) Len() int {
	return f.queue.Len()
}

func (f *Frontier) Clear() {
	for i := range f.queue {
		f.queue[i] = nil
	}
	f.queue = f.queue[:0]
	clear(f.byPos)
	f.seq = 0
}

// Positions returns the frontier cells in row-major order.
func (f *Frontier) Positions() []grid.Position {
	out := make([]grid.Position, 0, len(f.byPos))
	for pos := range f.byPos {
		out = append(out, pos)
	}
	grid.SortPositions(out)
	return out
}

type frontierItem struct {
	node  Node
	seq   uint64
	index int
}

type frontierQueue []*frontierItem

func (q frontierQueue) Len() int { return len(q) }

func (q frontierQueue) Less(i, j int) bool {
	a, b := q[i], q[j]
	if fa, fb := a.node.F(), b.node.F(); fa != fb {
		return fa < fb
	}
	if a.node.H != b.node.H {
		return a.node.H < b.node.H
	}
	return a.seq < b.seq
}

func (q frontierQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *frontierQueue) Push(x any) {
	item := x.(*frontierItem)
	item.index = len(*q)
	*q = append(*q, item)
}

func (q *frontierQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*q = old[:n-1]
	return item
}
