package term

import (
	"context"

	"github.com/gdamore/tcell/v2"

	"astarviz/internal/grid"
)

// Gestures is the pointer surface of the controller.
type Gestures interface {
	Press(ctx context.Context, pos grid.Position) error
	Drag(ctx context.Context, pos grid.Position) error
	Release(ctx context.Context, pos grid.Position) error
}

// Action is a keyboard command.
type Action int

const (
	ActionNone Action = iota
	ActionRun
	ActionReset
	ActionGenerate
	ActionSnapshot
	ActionQuit
)

// KeyAction maps a key event to its command.
func KeyAction(ev *tcell.EventKey) Action {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return ActionQuit
	case tcell.KeyRune:
	default:
		return ActionNone
	}
	switch ev.Rune() {
	case 's', 'S':
		return ActionRun
	case 'r', 'R':
		return ActionReset
	case 'g', 'G':
		return ActionGenerate
	case 'p', 'P':
		return ActionSnapshot
	case 'q', 'Q':
		return ActionQuit
	default:
		return ActionNone
	}
}

// Mouse turns raw button state changes into press, drag and release gestures.
type Mouse struct {
	gestures Gestures
	down     bool
	last     grid.Position
}

func NewMouse(g Gestures) *Mouse {
	return &Mouse{gestures: g}
}

// Handle feeds one mouse event. Only the primary button is tracked.
func (m *Mouse) Handle(ctx context.Context, ev *tcell.EventMouse) error {
	col, row := ev.Position()
	pos := CellAt(col, row)
	pressed := ev.Buttons()&tcell.Button1 != 0

	switch {
	case pressed && !m.down:
		m.down = true
		m.last = pos
		if err := m.gestures.Press(ctx, pos); err != nil {
			return err
		}
		return m.gestures.Drag(ctx, pos)
	case pressed && pos != m.last:
		m.last = pos
		return m.gestures.Drag(ctx, pos)
	case !pressed && m.down:
		m.down = false
		return m.gestures.Release(ctx, pos)
	}
	return nil
}
