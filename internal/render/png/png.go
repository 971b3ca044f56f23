// Package png draws engine snapshots to raster images.
package png

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/fogleman/gg"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"

	"astarviz/internal/grid"
	"astarviz/internal/search"
)

// Palette picks the fill for each kind of cell.
type Palette struct {
	Background color.Color
	GridLine   color.Color
	Blocked    color.Color
	Explored   color.Color
	Frontier   color.Color
	Path       color.Color
	Start      color.Color
	Target     color.Color
	Caption    color.Color
}

// DefaultPalette matches the classic desktop viewer.
var DefaultPalette = Palette{
	Background: colornames.White,
	GridLine:   colornames.Lightgray,
	Blocked:    colornames.Black,
	Explored:   colornames.Blue,
	Frontier:   colornames.Red,
	Path:       colornames.Lime,
	Start:      colornames.Cyan,
	Target:     colornames.Orange,
	Caption:    colornames.Darkslategray,
}

type Options struct {
	CellPixels int
	ShowGrid   bool
	Caption    bool
	Palette    Palette
}

const captionHeight = 18

// Render paints snap over a width x height world. Each grid cell becomes a
// CellPixels square; with Caption set a status strip is added underneath.
func Render(snap search.Snapshot, width, height int, opts Options) image.Image {
	return draw(snap, width, height, opts).Image()
}

// Encode writes the rendered snapshot as PNG.
func Encode(w io.Writer, snap search.Snapshot, width, height int, opts Options) error {
	if err := draw(snap, width, height, opts).EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Save writes the rendered snapshot to a PNG file.
func Save(path string, snap search.Snapshot, width, height int, opts Options) error {
	if err := draw(snap, width, height, opts).SavePNG(path); err != nil {
		return fmt.Errorf("save png: %w", err)
	}
	return nil
}

func draw(snap search.Snapshot, width, height int, opts Options) *gg.Context {
	if opts.CellPixels <= 0 {
		opts.CellPixels = 1
	}
	if opts.Palette == (Palette{}) {
		opts.Palette = DefaultPalette
	}
	cols := width / grid.CellSize
	rows := height / grid.CellSize
	px := opts.CellPixels
	imgH := rows * px
	if opts.Caption {
		imgH += captionHeight
	}

	dc := gg.NewContext(cols*px, imgH)
	dc.SetColor(opts.Palette.Background)
	dc.Clear()

	fill := func(positions []grid.Position, c color.Color) {
		dc.SetColor(c)
		for _, p := range positions {
			dc.DrawRectangle(float64(p.X/grid.CellSize*px), float64(p.Y/grid.CellSize*px), float64(px), float64(px))
		}
		dc.Fill()
	}

	fill(snap.Blocked, opts.Palette.Blocked)
	fill(snap.Explored, opts.Palette.Explored)
	fill(snap.Frontier, opts.Palette.Frontier)
	if len(snap.Path) > 2 {
		fill(snap.Path[1:len(snap.Path)-1], opts.Palette.Path)
	}
	fill([]grid.Position{snap.Start}, opts.Palette.Start)
	fill([]grid.Position{snap.Target}, opts.Palette.Target)

	if opts.ShowGrid && px >= 4 {
		dc.SetColor(opts.Palette.GridLine)
		dc.SetLineWidth(1)
		for c := 0; c <= cols; c++ {
			dc.DrawLine(float64(c*px), 0, float64(c*px), float64(rows*px))
		}
		for r := 0; r <= rows; r++ {
			dc.DrawLine(0, float64(r*px), float64(cols*px), float64(r*px))
		}
		dc.Stroke()
	}

	if opts.Caption {
		dc.SetFontFace(basicfont.Face7x13)
		dc.SetColor(opts.Palette.Caption)
		dc.DrawStringAnchored(Caption(snap), 4, float64(rows*px)+captionHeight/2, 0, 0.5)
	}
	return dc
}

// Caption summarizes the snapshot in one line.
func Caption(snap search.Snapshot) string {
	switch snap.State {
	case search.StateSucceeded:
		return fmt.Sprintf("%s: %d steps, cost %d, %d explored", snap.State, len(snap.Path)-1, snap.Cost, len(snap.Explored))
	case search.StateFailed:
		return fmt.Sprintf("%s: no path, %d explored", snap.State, len(snap.Explored))
	default:
		return fmt.Sprintf("%s: %d explored, %d in frontier", snap.State, len(snap.Explored), len(snap.Frontier))
	}
}
