package obstacles

import (
	"math"

	"astarviz/internal/config"
	"astarviz/internal/grid"
)

// Generator lays out obstacle fields from deterministic fractal value noise.
// The same seed and bounds always produce the same field.
type Generator struct {
	cfg  config.ObstacleConfig
	seed int64
}

func NewGenerator(cfg config.ObstacleConfig) *Generator {
	if cfg.Octaves <= 0 {
		cfg.Octaves = 1
	}
	if cfg.Lacunarity == 0 {
		cfg.Lacunarity = 2
	}
	if cfg.Persistence == 0 {
		cfg.Persistence = 0.5
	}
	return &Generator{cfg: cfg, seed: cfg.Seed}
}

// WithSeed returns a copy of g that samples a different noise field.
func (g *Generator) WithSeed(seed int64) *Generator {
	clone := *g
	clone.cfg.Seed = seed
	clone.seed = seed
	return &clone
}

// Field returns every cell inside b whose noise exceeds the threshold, in
// row-major order. Cells listed in keep are never returned.
func (g *Generator) Field(b grid.Bounds, keep ...grid.Position) []grid.Position {
	width, height := b.Size()
	var out []grid.Position
	for y := 0; y+grid.CellSize <= height; y += grid.CellSize {
		for x := 0; x+grid.CellSize <= width; x += grid.CellSize {
			p := grid.Pos(x, y)
			if contains(keep, p) {
				continue
			}
			if g.Density(p) > g.cfg.Threshold {
				out = append(out, p)
			}
		}
	}
	return out
}

// Density samples the field at p, normalised to [0,1].
func (g *Generator) Density(p grid.Position) float64 {
	n := g.fractalNoise(float64(p.X/grid.CellSize), float64(p.Y/grid.CellSize))
	return (n + 1) / 2
}

func contains(list []grid.Position, p grid.Position) bool {
	for _, q := range list {
		if q == p {
			return true
		}
	}
	return false
}

func (g *Generator) fractalNoise(x, y float64) float64 {
	frequency := g.cfg.Frequency
	amplitude := 1.0
	noiseSum := 0.0
	maxAmplitude := 0.0

	for i := 0; i < g.cfg.Octaves; i++ {
		noiseSum += g.valueNoise(x*frequency, y*frequency) * amplitude
		maxAmplitude += amplitude
		amplitude *= g.cfg.Persistence
		frequency *= g.cfg.Lacunarity
	}

	if maxAmplitude == 0 {
		return 0
	}
	return noiseSum / maxAmplitude
}

func (g *Generator) valueNoise(x, y float64) float64 {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))

	sx := smooth(x - float64(x0))
	sy := smooth(y - float64(y0))

	top := lerp(random2D(x0, y0, g.seed), random2D(x0+1, y0, g.seed), sx)
	bottom := lerp(random2D(x0, y0+1, g.seed), random2D(x0+1, y0+1, g.seed), sx)
	return lerp(top, bottom, sy)
}

func smooth(t float64) float64 {
	return t * t * (3 - 2*t)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// random2D yields a lattice value in [-1,1).
func random2D(x, y int, seed int64) float64 {
	return float64(hash3(x, y, int(seed))&0xFFFF)/0x8000 - 1.0
}

func hash3(x, y, z int) uint32 {
	h := uint32(x*374761393 + y*668265263 + z*2147483647)
	h = (h ^ (h >> 13)) * 1274126177
	return h ^ (h >> 16)
}
