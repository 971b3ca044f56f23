package png

import (
	"bytes"
	stdpng "image/png"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/colornames"

	"astarviz/internal/grid"
	"astarviz/internal/search"
)

func sampleSnapshot() search.Snapshot {
	return search.Snapshot{
		State:    search.StateSucceeded,
		Start:    grid.Pos(0, 0),
		Target:   grid.Pos(30, 0),
		Explored: []grid.Position{grid.Pos(0, 0), grid.Pos(10, 0), grid.Pos(20, 0)},
		Frontier: []grid.Position{grid.Pos(10, 10)},
		Blocked:  []grid.Position{grid.Pos(0, 30)},
		Path:     []grid.Position{grid.Pos(0, 0), grid.Pos(10, 0), grid.Pos(20, 0), grid.Pos(30, 0)},
		Cost:     30,
	}
}

func rgba(c interface{ RGBA() (r, g, b, a uint32) }) [4]uint32 {
	r, g, b, a := c.RGBA()
	return [4]uint32{r, g, b, a}
}

func TestRenderColorsCells(t *testing.T) {
	img := Render(sampleSnapshot(), 40, 40, Options{CellPixels: 5})
	require.Equal(t, 20, img.Bounds().Dx())
	require.Equal(t, 20, img.Bounds().Dy())

	center := func(p grid.Position) (int, int) {
		return p.X/grid.CellSize*5 + 2, p.Y/grid.CellSize*5 + 2
	}
	cases := map[grid.Position]interface{ RGBA() (r, g, b, a uint32) }{
		grid.Pos(0, 0):   DefaultPalette.Start,
		grid.Pos(30, 0):  DefaultPalette.Target,
		grid.Pos(10, 0):  DefaultPalette.Path,
		grid.Pos(10, 10): DefaultPalette.Frontier,
		grid.Pos(0, 30):  DefaultPalette.Blocked,
		grid.Pos(30, 30): colornames.White,
	}
	for p, want := range cases {
		x, y := center(p)
		assert.Equal(t, rgba(want), rgba(img.At(x, y)), "cell %v", p)
	}
}

func TestEncodeAndSaveProducePNG(t *testing.T) {
	var buf bytes.Buffer
	opts := Options{CellPixels: 6, ShowGrid: true, Caption: true}
	require.NoError(t, Encode(&buf, sampleSnapshot(), 80, 60, opts))
	img, err := stdpng.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 8*6, img.Bounds().Dx())
	assert.Equal(t, 6*6+captionHeight, img.Bounds().Dy())

	path := filepath.Join(t.TempDir(), "snap.png")
	require.NoError(t, Save(path, sampleSnapshot(), 80, 60, opts))
}

func TestCaption(t *testing.T) {
	assert.Equal(t, "succeeded: 3 steps, cost 30, 3 explored", Caption(sampleSnapshot()))
	assert.Equal(t, "failed: no path, 0 explored", Caption(search.Snapshot{State: search.StateFailed}))
	assert.Equal(t, "idle: 0 explored, 0 in frontier", Caption(search.Snapshot{}))
}
