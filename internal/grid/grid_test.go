package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceRoundsEuclidean(t *testing.T) {
	tests := []struct {
		name string
		a, b Position
		want int
	}{
		{name: "same cell", a: Pos(40, 40), b: Pos(40, 40), want: 0},
		{name: "orthogonal step", a: Pos(0, 0), b: Pos(10, 0), want: 10},
		{name: "diagonal step", a: Pos(0, 0), b: Pos(10, 10), want: 14},
		{name: "knight offset", a: Pos(0, 0), b: Pos(20, 10), want: 22},
		{name: "symmetric", a: Pos(720, 20), b: Pos(40, 500), want: 832},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Distance(tc.a, tc.b))
			assert.Equal(t, tc.want, Distance(tc.b, tc.a))
			assert.Equal(t, tc.want, Heuristic(tc.a, tc.b))
		})
	}
}

func TestNeighborsOrderAndSpacing(t *testing.T) {
	got := Neighbors(Pos(50, 50))
	want := [8]Position{
		Pos(40, 40), Pos(40, 50), Pos(40, 60),
		Pos(50, 40), Pos(50, 60),
		Pos(60, 40), Pos(60, 50), Pos(60, 60),
	}
	assert.Equal(t, want, got)
	for _, p := range got {
		assert.True(t, p.Aligned(), "neighbor %v not aligned", p)
	}
}

func TestSnap(t *testing.T) {
	assert.Equal(t, Pos(40, 500), Snap(47, 509))
	assert.Equal(t, Pos(0, 0), Snap(0, 9))
	assert.Equal(t, Pos(-10, 0), Snap(-1, 3))
	assert.Equal(t, Pos(-10, -20), Snap(-10, -11))
}

func TestSetMembershipIsByPosition(t *testing.T) {
	var s Set
	require.True(t, s.Add(Pos(10, 20)))
	require.False(t, s.Add(Position{X: 10, Y: 20}))
	assert.True(t, s.Contains(Pos(10, 20)))
	assert.False(t, s.Contains(Pos(20, 10)))

	s.Add(Pos(0, 30))
	s.Add(Pos(30, 0))
	assert.Equal(t, []Position{Pos(30, 0), Pos(10, 20), Pos(0, 30)}, s.Positions())

	s.Remove(Pos(10, 20))
	assert.Equal(t, 2, s.Len())

	s.Clear()
	assert.Zero(t, s.Len())
	assert.Empty(t, s.Positions())
}

func TestBounds(t *testing.T) {
	b := FixedBounds{Width: 800, Height: 600}
	assert.True(t, Contains(b, Pos(0, 0)))
	assert.True(t, Contains(b, Pos(790, 590)))
	assert.False(t, Contains(b, Pos(800, 0)))
	assert.False(t, Contains(b, Pos(0, -10)))

	v := NewViewport(100, 50)
	assert.True(t, Contains(v, Pos(90, 40)))
	v.Resize(80, 40)
	w, h := v.Size()
	assert.Equal(t, 80, w)
	assert.Equal(t, 40, h)
	assert.False(t, Contains(v, Pos(90, 40)))
}
