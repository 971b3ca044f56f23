package obstacles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astarviz/internal/config"
	"astarviz/internal/grid"
)

func testConfig() config.ObstacleConfig {
	return config.Default().Obstacles
}

func TestFieldIsDeterministic(t *testing.T) {
	bounds := grid.FixedBounds{Width: 800, Height: 600}
	cfg := testConfig()
	cfg.Threshold = 0.5
	a := NewGenerator(cfg).Field(bounds)
	b := NewGenerator(cfg).Field(bounds)
	require.NotEmpty(t, a)
	assert.Equal(t, a, b)

	other := NewGenerator(cfg).WithSeed(42).Field(bounds)
	assert.NotEqual(t, a, other)
}

func TestFieldRespectsBoundsAndKeep(t *testing.T) {
	cfg := testConfig()
	cfg.Threshold = 0
	bounds := grid.FixedBounds{Width: 105, Height: 50}
	keep := []grid.Position{grid.Pos(0, 0), grid.Pos(90, 40)}

	field := NewGenerator(cfg).Field(bounds, keep...)
	for _, p := range field {
		assert.True(t, p.Aligned())
		assert.True(t, grid.Contains(bounds, p), "%v outside bounds", p)
		assert.NotContains(t, keep, p)
	}
}

func TestThresholdControlsDensity(t *testing.T) {
	bounds := grid.FixedBounds{Width: 400, Height: 400}
	cfg := testConfig()

	cfg.Threshold = 1
	assert.Empty(t, NewGenerator(cfg).Field(bounds))

	cfg.Threshold = 0.5
	half := len(NewGenerator(cfg).Field(bounds))
	cfg.Threshold = 0.7
	sparse := len(NewGenerator(cfg).Field(bounds))
	assert.Greater(t, half, sparse)
}

func TestDensityRange(t *testing.T) {
	g := NewGenerator(testConfig())
	for y := 0; y < 300; y += grid.CellSize {
		for x := 0; x < 300; x += grid.CellSize {
			d := g.Density(grid.Pos(x, y))
			require.GreaterOrEqual(t, d, 0.0)
			require.Less(t, d, 1.0)
		}
	}
}
