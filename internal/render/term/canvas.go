// Package term renders a live search in a terminal and turns mouse and key
// input into controller commands.
package term

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"

	"astarviz/internal/grid"
	"astarviz/internal/search"
)

type cellKind uint8

const (
	kindEmpty cellKind = iota
	kindFrontier
	kindExplored
	kindPath
)

var (
	styleEmpty    = tcell.StyleDefault.Background(tcell.ColorWhite)
	styleBlocked  = tcell.StyleDefault.Background(tcell.ColorBlack)
	styleFrontier = tcell.StyleDefault.Background(tcell.ColorRed)
	styleExplored = tcell.StyleDefault.Background(tcell.ColorBlue)
	stylePath     = tcell.StyleDefault.Background(tcell.ColorGreen)
	styleStart    = tcell.StyleDefault.Background(tcell.ColorAqua)
	styleTarget   = tcell.StyleDefault.Background(tcell.ColorOrange)
	styleStatus   = tcell.StyleDefault.Foreground(tcell.ColorSilver)
)

// Layout is the part of the picture the canvas does not learn from
// notifications.
type Layout struct {
	Width, Height int
	Start         grid.Position
	Target        grid.Position
	Blocked       []grid.Position
}

// Canvas accumulates engine notifications into a per-cell picture. It
// implements search.Renderer and search.StateObserver.
type Canvas struct {
	mu    sync.Mutex
	cells map[grid.Position]cellKind
	state search.State
	note  string

	dirty   atomic.Bool
	onState func(search.State)
}

func NewCanvas() *Canvas {
	c := &Canvas{cells: make(map[grid.Position]cellKind)}
	c.dirty.Store(true)
	return c
}

// OnStateChange registers fn to run after each lifecycle change.
func (c *Canvas) OnStateChange(fn func(search.State)) {
	c.mu.Lock()
	c.onState = fn
	c.mu.Unlock()
}

func (c *Canvas) mark(pos grid.Position, kind cellKind) {
	c.mu.Lock()
	c.cells[pos] = kind
	c.mu.Unlock()
	c.dirty.Store(true)
}

func (c *Canvas) CellExplored(pos grid.Position) { c.mark(pos, kindExplored) }
func (c *Canvas) CellFrontier(pos grid.Position) { c.mark(pos, kindFrontier) }
func (c *Canvas) CellPath(pos grid.Position)     { c.mark(pos, kindPath) }

func (c *Canvas) StateChanged(state search.State) {
	c.mu.Lock()
	c.state = state
	if state == search.StateIdle {
		clear(c.cells)
	}
	fn := c.onState
	c.mu.Unlock()
	c.dirty.Store(true)
	if fn != nil {
		fn(state)
	}
}

// SetNote replaces the message shown on the status line.
func (c *Canvas) SetNote(format string, args ...any) {
	c.mu.Lock()
	c.note = fmt.Sprintf(format, args...)
	c.mu.Unlock()
	c.dirty.Store(true)
}

// Invalidate forces the next Draw even without new notifications.
func (c *Canvas) Invalidate() {
	c.dirty.Store(true)
}

// NeedsDraw reports and clears the pending redraw flag.
func (c *Canvas) NeedsDraw() bool {
	return c.dirty.Swap(false)
}

// Draw paints the grid with one terminal cell per grid cell and a status line
// underneath. Cells beyond the screen are clipped.
func (c *Canvas) Draw(screen tcell.Screen, layout Layout) {
	cols, rows := layout.Width/grid.CellSize, layout.Height/grid.CellSize
	blocked := grid.NewSet(layout.Blocked...)

	c.mu.Lock()
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			p := grid.Pos(col*grid.CellSize, row*grid.CellSize)
			style := styleEmpty
			switch {
			case p == layout.Start:
				style = styleStart
			case p == layout.Target:
				style = styleTarget
			case blocked.Contains(p):
				style = styleBlocked
			default:
				switch c.cells[p] {
				case kindFrontier:
					style = styleFrontier
				case kindExplored:
					style = styleExplored
				case kindPath:
					style = stylePath
				}
			}
			screen.SetContent(col, row, ' ', nil, style)
		}
	}
	status := fmt.Sprintf(" %-9s s:start r:reset g:obstacles p:png q:quit  %s", c.state, c.note)
	c.mu.Unlock()

	width, _ := screen.Size()
	for x := 0; x < width; x++ {
		ch := ' '
		if x < len(status) {
			ch = rune(status[x])
		}
		screen.SetContent(x, rows, ch, nil, styleStatus)
	}
}

// CellAt maps a terminal coordinate back to its grid cell.
func CellAt(col, row int) grid.Position {
	return grid.Pos(col*grid.CellSize, row*grid.CellSize)
}
