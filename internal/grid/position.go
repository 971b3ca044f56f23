package grid

import (
	"fmt"
	"math"
)

// CellSize is the side length of one grid cell. Every Position is a multiple of it.
const CellSize = 10

// Position identifies the top-left corner of a grid cell.
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Pos is shorthand for Position{X: x, Y: y}.
func Pos(x, y int) Position {
	return Position{X: x, Y: y}
}

// Offset returns the position dx, dy cells away from p.
func (p Position) Offset(dx, dy int) Position {
	return Position{X: p.X + dx*CellSize, Y: p.Y + dy*CellSize}
}

// Aligned reports whether both coordinates are multiples of CellSize.
func (p Position) Aligned() bool {
	return p.X%CellSize == 0 && p.Y%CellSize == 0
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Snap maps a raw pixel coordinate to the cell containing it.
func Snap(x, y int) Position {
	return Position{X: snapAxis(x), Y: snapAxis(y)}
}

func snapAxis(v int) int {
	if v < 0 {
		// floor division so -1 lands in cell -CellSize rather than 0
		return -((-v + CellSize - 1) / CellSize) * CellSize
	}
	return v / CellSize * CellSize
}

// Distance is the rounded Euclidean distance between a and b.
func Distance(a, b Position) int {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return int(math.Round(math.Sqrt(dx*dx + dy*dy)))
}

// Heuristic estimates the remaining cost from p to target.
func Heuristic(p, target Position) int {
	return Distance(p, target)
}

// Neighborhood lists the eight compass offsets in expansion order: dx outer, dy inner.
var Neighborhood = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Neighbors returns the eight positions adjacent to p, in Neighborhood order.
func Neighbors(p Position) [8]Position {
	var out [8]Position
	for i, d := range Neighborhood {
		out[i] = p.Offset(d[0], d[1])
	}
	return out
}
