package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"astarviz/internal/grid"
)

// Duration is a time.Duration that reads and writes human readable strings
// such as "10ms" in both JSON and YAML configuration files. Numeric values are
// taken as nanoseconds.
type Duration time.Duration

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalJSON encodes the duration using the canonical string representation.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a duration from either a string (e.g. "250ms") or a
// numeric value representing nanoseconds. Empty strings and null decode to zero.
func (d *Duration) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("duration: empty value")
	}
	if string(b) == "null" {
		*d = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("duration: decode string: %w", err)
		}
		return d.parse(s)
	}
	var n int64
	if err := json.Unmarshal(b, &n); err == nil {
		*d = Duration(n)
		return nil
	}
	return fmt.Errorf("duration: invalid value %s", string(b))
}

func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration: line %d: expected scalar", node.Line)
	}
	if node.Tag == "!!int" {
		var n int64
		if err := node.Decode(&n); err != nil {
			return fmt.Errorf("duration: line %d: %w", node.Line, err)
		}
		*d = Duration(n)
		return nil
	}
	return d.parse(node.Value)
}

func (d *Duration) parse(s string) error {
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration: parse %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config captures everything needed to bootstrap a search server or viewer.
type Config struct {
	Grid      GridConfig     `json:"grid" yaml:"grid"`
	Search    SearchConfig   `json:"search" yaml:"search"`
	Server    ServerConfig   `json:"server" yaml:"server"`
	Obstacles ObstacleConfig `json:"obstacles" yaml:"obstacles"`
	Scenarios ScenarioConfig `json:"scenarios" yaml:"scenarios"`
	Render    RenderConfig   `json:"render" yaml:"render"`
}

// GridConfig sizes the playable area in world units. Cells are grid.CellSize wide.
type GridConfig struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

type SearchConfig struct {
	StepDelay    Duration      `json:"stepDelay" yaml:"stepDelay"`       // pause after each expanded cell
	CommandBatch int           `json:"commandBatch" yaml:"commandBatch"` // 0 applies every queued command per step
	Start        grid.Position `json:"start" yaml:"start"`
	Target       grid.Position `json:"target" yaml:"target"`
}

type ServerConfig struct {
	ListenAddress   string   `json:"listenAddress" yaml:"listenAddress"`
	ShutdownTimeout Duration `json:"shutdownTimeout" yaml:"shutdownTimeout"`
	EventBuffer     int      `json:"eventBuffer" yaml:"eventBuffer"` // per-subscriber envelope backlog
}

type ObstacleConfig struct {
	Seed        int64   `json:"seed" yaml:"seed"`
	Frequency   float64 `json:"frequency" yaml:"frequency"`
	Octaves     int     `json:"octaves" yaml:"octaves"`
	Persistence float64 `json:"persistence" yaml:"persistence"`
	Lacunarity  float64 `json:"lacunarity" yaml:"lacunarity"`
	Threshold   float64 `json:"threshold" yaml:"threshold"`
}

type ScenarioConfig struct {
	Dir string `json:"dir" yaml:"dir"` // empty keeps scenarios in memory
}

type RenderConfig struct {
	CellPixels int  `json:"cellPixels" yaml:"cellPixels"`
	ShowGrid   bool `json:"showGrid" yaml:"showGrid"`
}

// Load reads configuration from path. Files ending in .yaml or .yml are parsed
// as YAML, anything else as JSON. Missing fields keep their defaults and an
// empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Bounds returns the configured grid size as a bounds provider.
func (c *Config) Bounds() grid.FixedBounds {
	return grid.FixedBounds{Width: c.Grid.Width, Height: c.Grid.Height}
}

func (c *Config) Validate() error {
	if c.Grid.Width < grid.CellSize || c.Grid.Height < grid.CellSize {
		return fmt.Errorf("grid dimensions must be at least %d", grid.CellSize)
	}
	if c.Search.StepDelay < 0 {
		return errors.New("search.stepDelay cannot be negative")
	}
	if c.Search.CommandBatch < 0 {
		return errors.New("search.commandBatch cannot be negative")
	}
	bounds := c.Bounds()
	endpoints := []struct {
		name string
		pos  grid.Position
	}{{"start", c.Search.Start}, {"target", c.Search.Target}}
	for _, ep := range endpoints {
		if !ep.pos.Aligned() {
			return fmt.Errorf("search.%s %v is not aligned to the %d unit grid", ep.name, ep.pos, grid.CellSize)
		}
		if !grid.Contains(bounds, ep.pos) {
			return fmt.Errorf("search.%s %v is outside the grid", ep.name, ep.pos)
		}
	}
	if c.Server.ListenAddress == "" {
		return errors.New("server.listenAddress must be set")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("server.shutdownTimeout must be positive")
	}
	if c.Server.EventBuffer <= 0 {
		return errors.New("server.eventBuffer must be positive")
	}
	if c.Obstacles.Octaves <= 0 {
		return errors.New("obstacles.octaves must be positive")
	}
	if c.Obstacles.Threshold < 0 || c.Obstacles.Threshold > 1 {
		return errors.New("obstacles.threshold must be within [0,1]")
	}
	if c.Render.CellPixels <= 0 {
		return errors.New("render.cellPixels must be positive")
	}
	return nil
}
