package grid

import "sort"

// Set is an unordered collection of positions. The zero value is ready to use.
type Set struct {
	members map[Position]struct{}
}

// NewSet returns a set holding the given positions.
func NewSet(positions ...Position) *Set {
	s := &Set{members: make(map[Position]struct{}, len(positions))}
	for _, p := range positions {
		s.members[p] = struct{}{}
	}
	return s
}

// Add inserts p and reports whether it was absent.
func (s *Set) Add(p Position) bool {
	if s.members == nil {
		s.members = make(map[Position]struct{})
	}
	if _, ok := s.members[p]; ok {
		return false
	}
	s.members[p] = struct{}{}
	return true
}

func (s *Set) Contains(p Position) bool {
	_, ok := s.members[p]
	return ok
}

func (s *Set) Remove(p Position) {
	delete(s.members, p)
}

func (s *Set) Len() int {
	return len(s.members)
}

// Clear empties the set, keeping its storage for reuse.
func (s *Set) Clear() {
	for p := range s.members {
		delete(s.members, p)
	}
}

// Positions returns the members in row-major order (Y, then X).
func (s *Set) Positions() []Position {
	out := make([]Position, 0, len(s.members))
	for p := range s.members {
		out = append(out, p)
	}
	SortPositions(out)
	return out
}

// SortPositions orders positions row-major in place.
func SortPositions(positions []Position) {
	sort.Slice(positions, func(i, j int) bool {
		if positions[i].Y != positions[j].Y {
			return positions[i].Y < positions[j].Y
		}
		return positions[i].X < positions[j].X
	})
}
