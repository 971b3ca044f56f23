package controller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"astarviz/internal/grid"
	"astarviz/internal/obstacles"
	"astarviz/internal/scenario"
)

var (
	// ErrCellBlocked is returned when an endpoint is moved onto an obstacle.
	ErrCellBlocked = errors.New("controller: cell is blocked")
	// ErrCellOccupied is returned when an obstacle is placed on an endpoint.
	ErrCellOccupied = errors.New("controller: cell holds the start or target")
	// ErrOutOfBounds is returned for cells outside the grid.
	ErrOutOfBounds = errors.New("controller: cell outside the grid")
)

// Engine is the command and query surface the controller drives.
type Engine interface {
	Run()
	Reset()
	SetBlocked(pos grid.Position)
	SetStart(pos grid.Position)
	SetTarget(pos grid.Position)
	Flush(ctx context.Context) error
	StartPosition() grid.Position
	TargetPosition() grid.Position
	IsBlocked(pos grid.Position) bool
	BlockedPositions() []grid.Position
	Bounds() grid.Bounds
}

type grab int

const (
	grabNone grab = iota
	grabStart
	grabTarget
)

// Controller validates edits before forwarding them to the engine and tracks
// pointer gestures that drag the start or target around.
type Controller struct {
	engine Engine
	logger *log.Logger

	mu   sync.Mutex
	grab grab
}

func New(engine Engine, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.New(log.Writer(), "astar-controller ", log.LstdFlags|log.Lmicroseconds)
	}
	return &Controller{engine: engine, logger: logger}
}

// Snap maps a raw pointer coordinate to its grid cell.
func (c *Controller) Snap(rawX, rawY int) grid.Position {
	return grid.Snap(rawX, rawY)
}

func (c *Controller) Run() {
	c.engine.Run()
}

func (c *Controller) Reset() {
	c.engine.Reset()
}

func (c *Controller) checkBounds(pos grid.Position) error {
	if !pos.Aligned() || !grid.Contains(c.engine.Bounds(), pos) {
		return fmt.Errorf("%w: %v", ErrOutOfBounds, pos)
	}
	return nil
}

// PlaceObstacle blocks pos unless it holds the start or target.
func (c *Controller) PlaceObstacle(ctx context.Context, pos grid.Position) error {
	if err := c.checkBounds(pos); err != nil {
		return err
	}
	if err := c.engine.Flush(ctx); err != nil {
		return err
	}
	if pos == c.engine.StartPosition() || pos == c.engine.TargetPosition() {
		return fmt.Errorf("%w: %v", ErrCellOccupied, pos)
	}
	c.engine.SetBlocked(pos)
	return nil
}

// MoveStart relocates the start unless pos is blocked.
func (c *Controller) MoveStart(ctx context.Context, pos grid.Position) error {
	if err := c.checkEndpoint(ctx, pos); err != nil {
		return err
	}
	c.engine.SetStart(pos)
	return nil
}

// MoveTarget relocates the target unless pos is blocked.
func (c *Controller) MoveTarget(ctx context.Context, pos grid.Position) error {
	if err := c.checkEndpoint(ctx, pos); err != nil {
		return err
	}
	c.engine.SetTarget(pos)
	return nil
}

func (c *Controller) checkEndpoint(ctx context.Context, pos grid.Position) error {
	if err := c.checkBounds(pos); err != nil {
		return err
	}
	if err := c.engine.Flush(ctx); err != nil {
		return err
	}
	if c.engine.IsBlocked(pos) {
		return fmt.Errorf("%w: %v", ErrCellBlocked, pos)
	}
	return nil
}

// Press begins a gesture. Pressing on the start or target grabs it.
func (c *Controller) Press(ctx context.Context, pos grid.Position) error {
	if err := c.engine.Flush(ctx); err != nil {
		return err
	}
	g := grabNone
	switch pos {
	case c.engine.StartPosition():
		g = grabStart
	case c.engine.TargetPosition():
		g = grabTarget
	}
	c.mu.Lock()
	c.grab = g
	c.mu.Unlock()
	return nil
}

// Drag paints an obstacle at pos while nothing is grabbed.
func (c *Controller) Drag(ctx context.Context, pos grid.Position) error {
	if c.grabbed() != grabNone {
		return nil
	}
	return ignoreGestureMiss(c.PlaceObstacle(ctx, pos))
}

// Release ends a gesture, dropping any grabbed endpoint at pos.
func (c *Controller) Release(ctx context.Context, pos grid.Position) error {
	c.mu.Lock()
	g := c.grab
	c.grab = grabNone
	c.mu.Unlock()

	switch g {
	case grabStart:
		return c.MoveStart(ctx, pos)
	case grabTarget:
		return c.MoveTarget(ctx, pos)
	default:
		return nil
	}
}

// Click places a single obstacle and cancels any grab.
func (c *Controller) Click(ctx context.Context, pos grid.Position) error {
	c.mu.Lock()
	c.grab = grabNone
	c.mu.Unlock()
	return ignoreGestureMiss(c.PlaceObstacle(ctx, pos))
}

func (c *Controller) grabbed() grab {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.grab
}

func ignoreGestureMiss(err error) error {
	if errors.Is(err, ErrCellOccupied) || errors.Is(err, ErrOutOfBounds) {
		return nil
	}
	return err
}

// ApplyScenario resets the engine and installs the scenario's layout.
func (c *Controller) ApplyScenario(ctx context.Context, s scenario.Scenario) error {
	if err := s.Validate(); err != nil {
		return err
	}
	bounds := c.engine.Bounds()
	for _, p := range append([]grid.Position{s.Start, s.Target}, s.Blocked...) {
		if !grid.Contains(bounds, p) {
			return fmt.Errorf("%w: scenario %s cell %v", ErrOutOfBounds, s.Name, p)
		}
	}

	c.engine.Reset()
	c.engine.SetStart(s.Start)
	c.engine.SetTarget(s.Target)
	for _, p := range s.Blocked {
		c.engine.SetBlocked(p)
	}
	if err := c.engine.Flush(ctx); err != nil {
		return err
	}
	c.logger.Printf("applied scenario %s: %d obstacles", s.Name, len(s.Blocked))
	return nil
}

// CaptureScenario records the current layout under name.
func (c *Controller) CaptureScenario(ctx context.Context, name string) (scenario.Scenario, error) {
	if !scenario.ValidName(name) {
		return scenario.Scenario{}, fmt.Errorf("%w: %q", scenario.ErrInvalidName, name)
	}
	if err := c.engine.Flush(ctx); err != nil {
		return scenario.Scenario{}, err
	}
	width, height := c.engine.Bounds().Size()
	return scenario.Scenario{
		Name:    name,
		Width:   width,
		Height:  height,
		Start:   c.engine.StartPosition(),
		Target:  c.engine.TargetPosition(),
		Blocked: c.engine.BlockedPositions(),
	}, nil
}

// GenerateObstacles blocks every cell the generator selects, leaving the start
// and target free. It returns the number of newly blocked cells.
func (c *Controller) GenerateObstacles(ctx context.Context, gen *obstacles.Generator) (int, error) {
	if err := c.engine.Flush(ctx); err != nil {
		return 0, err
	}
	field := gen.Field(c.engine.Bounds(), c.engine.StartPosition(), c.engine.TargetPosition())
	added := 0
	for _, p := range field {
		if c.engine.IsBlocked(p) {
			continue
		}
		c.engine.SetBlocked(p)
		added++
	}
	if err := c.engine.Flush(ctx); err != nil {
		return added, err
	}
	c.logger.Printf("generated %d obstacles", added)
	return added, nil
}
