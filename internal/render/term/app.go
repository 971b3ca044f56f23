package term

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"

	"astarviz/internal/controller"
	"astarviz/internal/grid"
	"astarviz/internal/obstacles"
	"astarviz/internal/render/png"
	"astarviz/internal/search"
)

const frameInterval = 33 * time.Millisecond

// App drives an engine from a terminal until the user quits.
type App struct {
	Screen     tcell.Screen
	Engine     *search.Engine
	Controller *controller.Controller
	Canvas     *Canvas
	Generator  *obstacles.Generator
	PNG        png.Options
	PNGPath    string
	Logger     *log.Logger

	// Viewport, when set, is the engine's bounds. It follows the terminal
	// size, capped at MaxWidth x MaxHeight world units.
	Viewport  *grid.Viewport
	MaxWidth  int
	MaxHeight int
}

// fit sizes the viewport to the screen, leaving the last row for the status line.
func (a *App) fit() {
	if a.Viewport == nil {
		return
	}
	cols, rows := a.Screen.Size()
	width := min(a.MaxWidth, cols*grid.CellSize)
	height := min(a.MaxHeight, (rows-1)*grid.CellSize)
	a.Viewport.Resize(max(width, 0), max(height, 0))
}

func (a *App) layout() Layout {
	width, height := a.Engine.Bounds().Size()
	return Layout{
		Width:   width,
		Height:  height,
		Start:   a.Engine.StartPosition(),
		Target:  a.Engine.TargetPosition(),
		Blocked: a.Engine.BlockedPositions(),
	}
}

// Run processes input and repaints until ctx ends or the user quits.
func (a *App) Run(ctx context.Context) error {
	a.Screen.EnableMouse()
	a.Screen.HideCursor()
	mouse := NewMouse(a.Controller)
	a.fit()

	events := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := a.Screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			done, err := a.handle(ctx, mouse, ev)
			if err != nil {
				a.Canvas.SetNote("%v", err)
			}
			if done {
				return nil
			}
		case <-ticker.C:
			if a.Canvas.NeedsDraw() {
				a.Canvas.Draw(a.Screen, a.layout())
				a.Screen.Show()
			}
		}
	}
}

func (a *App) handle(ctx context.Context, mouse *Mouse, ev tcell.Event) (bool, error) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.perform(ctx, KeyAction(ev))
	case *tcell.EventMouse:
		err := mouse.Handle(ctx, ev)
		a.Canvas.Invalidate()
		if errors.Is(err, controller.ErrCellBlocked) {
			return false, errors.New("cannot drop an endpoint on an obstacle")
		}
		return false, err
	case *tcell.EventResize:
		a.fit()
		a.Screen.Clear()
		a.Screen.Sync()
		a.Canvas.Invalidate()
	}
	return false, nil
}

func (a *App) perform(ctx context.Context, action Action) (bool, error) {
	switch action {
	case ActionQuit:
		return true, nil
	case ActionRun:
		if a.Engine.IsRunning() {
			return false, nil
		}
		a.Controller.Run()
		a.Canvas.SetNote("")
	case ActionReset:
		a.Controller.Reset()
		a.Canvas.SetNote("")
	case ActionGenerate:
		added, err := a.Controller.GenerateObstacles(ctx, a.Generator)
		if err != nil {
			return false, err
		}
		a.Canvas.SetNote("%d obstacles added", added)
	case ActionSnapshot:
		width, height := a.Engine.Bounds().Size()
		if err := png.Save(a.PNGPath, a.Engine.Snapshot(), width, height, a.PNG); err != nil {
			return false, err
		}
		a.Logger.Printf("snapshot written to %s", a.PNGPath)
		a.Canvas.SetNote("saved %s", a.PNGPath)
	}
	return false, nil
}
