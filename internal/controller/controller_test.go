package controller

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astarviz/internal/config"
	"astarviz/internal/grid"
	"astarviz/internal/obstacles"
	"astarviz/internal/scenario"
	"astarviz/internal/search"
)

func newHarness(t *testing.T) (*Controller, *search.Engine) {
	t.Helper()
	quiet := log.New(io.Discard, "", 0)
	engine := search.New(grid.FixedBounds{Width: 100, Height: 100},
		search.WithStepDelay(0), search.WithLogger(quiet),
		search.WithStart(grid.Pos(0, 0)), search.WithTarget(grid.Pos(90, 90)))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		engine.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return New(engine, quiet), engine
}

func TestSnapFloorsToCell(t *testing.T) {
	c, _ := newHarness(t)
	assert.Equal(t, grid.Pos(40, 500), c.Snap(47, 509))
	assert.Equal(t, grid.Pos(0, 0), c.Snap(9, 9))
}

func TestPlaceObstacleRefusesEndpointsAndOutside(t *testing.T) {
	c, engine := newHarness(t)
	ctx := context.Background()

	assert.ErrorIs(t, c.PlaceObstacle(ctx, grid.Pos(0, 0)), ErrCellOccupied)
	assert.ErrorIs(t, c.PlaceObstacle(ctx, grid.Pos(90, 90)), ErrCellOccupied)
	assert.ErrorIs(t, c.PlaceObstacle(ctx, grid.Pos(100, 0)), ErrOutOfBounds)
	assert.ErrorIs(t, c.PlaceObstacle(ctx, grid.Pos(15, 0)), ErrOutOfBounds)

	require.NoError(t, c.PlaceObstacle(ctx, grid.Pos(50, 50)))
	require.NoError(t, engine.Flush(ctx))
	assert.Equal(t, []grid.Position{grid.Pos(50, 50)}, engine.BlockedPositions())
}

func TestMoveEndpointsRefuseBlockedCells(t *testing.T) {
	c, engine := newHarness(t)
	ctx := context.Background()
	require.NoError(t, c.PlaceObstacle(ctx, grid.Pos(30, 30)))

	assert.ErrorIs(t, c.MoveStart(ctx, grid.Pos(30, 30)), ErrCellBlocked)
	assert.ErrorIs(t, c.MoveTarget(ctx, grid.Pos(30, 30)), ErrCellBlocked)
	require.NoError(t, c.MoveStart(ctx, grid.Pos(10, 10)))
	require.NoError(t, c.MoveTarget(ctx, grid.Pos(80, 10)))
	require.NoError(t, engine.Flush(ctx))
	assert.Equal(t, grid.Pos(10, 10), engine.StartPosition())
	assert.Equal(t, grid.Pos(80, 10), engine.TargetPosition())
}

func TestGestureDragsStart(t *testing.T) {
	c, engine := newHarness(t)
	ctx := context.Background()

	require.NoError(t, c.Press(ctx, grid.Pos(0, 0)))
	require.NoError(t, c.Drag(ctx, grid.Pos(10, 0)))
	require.NoError(t, c.Drag(ctx, grid.Pos(20, 0)))
	require.NoError(t, c.Release(ctx, grid.Pos(20, 0)))
	require.NoError(t, engine.Flush(ctx))

	assert.Equal(t, grid.Pos(20, 0), engine.StartPosition())
	assert.Empty(t, engine.BlockedPositions(), "dragging a grabbed endpoint must not paint obstacles")
}

func TestGesturePaintsObstacles(t *testing.T) {
	c, engine := newHarness(t)
	ctx := context.Background()

	require.NoError(t, c.Press(ctx, grid.Pos(50, 0)))
	for y := 0; y <= 100; y += grid.CellSize {
		require.NoError(t, c.Drag(ctx, grid.Pos(50, y)))
	}
	require.NoError(t, c.Drag(ctx, grid.Pos(90, 90)))
	require.NoError(t, c.Release(ctx, grid.Pos(50, 90)))
	require.NoError(t, engine.Flush(ctx))

	assert.Len(t, engine.BlockedPositions(), 10)
	assert.False(t, engine.IsBlocked(grid.Pos(90, 90)))
	assert.Equal(t, grid.Pos(0, 0), engine.StartPosition())
}

func TestReleaseOnObstacleKeepsTarget(t *testing.T) {
	c, engine := newHarness(t)
	ctx := context.Background()
	require.NoError(t, c.Click(ctx, grid.Pos(40, 40)))

	require.NoError(t, c.Press(ctx, grid.Pos(90, 90)))
	assert.ErrorIs(t, c.Release(ctx, grid.Pos(40, 40)), ErrCellBlocked)
	assert.Equal(t, grid.Pos(90, 90), engine.TargetPosition())
}

func TestScenarioRoundTrip(t *testing.T) {
	c, engine := newHarness(t)
	ctx := context.Background()

	s := scenario.Scenario{
		Name:    "wall",
		Width:   100,
		Height:  100,
		Start:   grid.Pos(0, 50),
		Target:  grid.Pos(90, 50),
		Blocked: []grid.Position{grid.Pos(50, 40), grid.Pos(50, 50), grid.Pos(50, 60)},
	}
	require.NoError(t, c.PlaceObstacle(ctx, grid.Pos(10, 10)))
	require.NoError(t, c.ApplyScenario(ctx, s))

	got, err := c.CaptureScenario(ctx, "wall")
	require.NoError(t, err)
	assert.Equal(t, s, got)

	c.Run()
	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	state, err := engine.Wait(waitCtx)
	require.NoError(t, err)
	assert.Equal(t, search.StateSucceeded, state)

	_, err = c.CaptureScenario(ctx, "no spaces")
	assert.ErrorIs(t, err, scenario.ErrInvalidName)
}

func TestApplyScenarioRejectsLargerGrid(t *testing.T) {
	c, _ := newHarness(t)
	s := scenario.Scenario{Name: "big", Width: 800, Height: 600, Start: grid.Pos(40, 500), Target: grid.Pos(720, 20)}
	assert.ErrorIs(t, c.ApplyScenario(context.Background(), s), ErrOutOfBounds)
}

func TestGenerateObstaclesSparesEndpoints(t *testing.T) {
	c, engine := newHarness(t)
	ctx := context.Background()
	cfg := config.Default().Obstacles
	cfg.Threshold = 0

	added, err := c.GenerateObstacles(ctx, obstacles.NewGenerator(cfg))
	require.NoError(t, err)
	assert.Greater(t, added, 90)
	assert.Len(t, engine.BlockedPositions(), added)
	assert.False(t, engine.IsBlocked(grid.Pos(0, 0)))
	assert.False(t, engine.IsBlocked(grid.Pos(90, 90)))

	again, err := c.GenerateObstacles(ctx, obstacles.NewGenerator(cfg))
	require.NoError(t, err)
	assert.Zero(t, again)
}
