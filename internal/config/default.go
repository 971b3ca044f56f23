package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"astarviz/internal/grid"
)

// Default returns the layout of the classic demo: an 800x600 field with the
// start near the bottom left and the target near the top right.
func Default() *Config {
	return &Config{
		Grid: GridConfig{
			Width:  800,
			Height: 600,
		},
		Search: SearchConfig{
			StepDelay: Duration(10 * time.Millisecond),
			Start:     grid.Pos(40, 500),
			Target:    grid.Pos(720, 20),
		},
		Server: ServerConfig{
			ListenAddress:   "127.0.0.1:28080",
			ShutdownTimeout: Duration(5 * time.Second),
			EventBuffer:     256,
		},
		Obstacles: ObstacleConfig{
			Seed:        1337,
			Frequency:   0.08,
			Octaves:     3,
			Persistence: 0.5,
			Lacunarity:  2.0,
			Threshold:   0.62,
		},
		Scenarios: ScenarioConfig{
			Dir: "scenarios",
		},
		Render: RenderConfig{
			CellPixels: 6,
			ShowGrid:   true,
		},
	}
}

// WriteDefault writes the default configuration as YAML to the provided path.
func WriteDefault(path string) error {
	cfg := Default()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}

	return nil
}
