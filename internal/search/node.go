package search

import "astarviz/internal/grid"

// noParent marks the root of the search tree.
const noParent = -1

// Node is one entry of the search tree. Parent indexes the engine's arena of
// expanded nodes; the start node has no parent.
type Node struct {
	Pos    grid.Position
	Parent int
	G      int
	H      int
}

// F is the priority key, G + H.
func (n Node) F() int {
	return n.G + n.H
}

// Same reports whether n and other occupy the same cell. Costs and parent are
// ignored so a bare position probe matches any node at that cell.
func (n Node) Same(other Node) bool {
	return n.Pos == other.Pos
}

// Probe builds a throwaway node used only for position lookups.
func Probe(pos grid.Position) Node {
	return Node{Pos: pos, Parent: noParent}
}

// HasParent reports whether n was expanded from another node.
func (n Node) HasParent() bool {
	return n.Parent != noParent
}
