package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"astarviz/internal/grid"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() returned error: %v", err)
	}
	if got := cfg.Search.StepDelay.Duration(); got != 10*time.Millisecond {
		t.Fatalf("StepDelay = %v, want 10ms", got)
	}
	if cfg.Search.Start != grid.Pos(40, 500) || cfg.Search.Target != grid.Pos(720, 20) {
		t.Fatalf("endpoints = %v -> %v, want (40,500) -> (720,20)", cfg.Search.Start, cfg.Search.Target)
	}
}

func TestValidateRejectsInvalidConfigurations(t *testing.T) {
	tests := map[string]func(*Config){
		"tiny grid":          func(c *Config) { c.Grid.Width = 5 },
		"negative delay":     func(c *Config) { c.Search.StepDelay = Duration(-time.Millisecond) },
		"negative batch":     func(c *Config) { c.Search.CommandBatch = -1 },
		"unaligned start":    func(c *Config) { c.Search.Start = grid.Pos(41, 500) },
		"target outside":     func(c *Config) { c.Search.Target = grid.Pos(800, 20) },
		"missing listen":     func(c *Config) { c.Server.ListenAddress = "" },
		"zero event buffer":  func(c *Config) { c.Server.EventBuffer = 0 },
		"zero shutdown":      func(c *Config) { c.Server.ShutdownTimeout = 0 },
		"zero octaves":       func(c *Config) { c.Obstacles.Octaves = 0 },
		"threshold too high": func(c *Config) { c.Obstacles.Threshold = 1.5 },
		"zero cell pixels":   func(c *Config) { c.Render.CellPixels = 0 },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("Validate() = nil, want error")
			}
		})
	}
}

func TestLoadReadsYAMLOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "astar.yaml")
	if err := os.WriteFile(path, []byte(`
grid:
  width: 400
  height: 300
search:
  stepDelay: 25ms
  start: {x: 0, y: 0}
  target: {x: 390, y: 290}
server:
  shutdownTimeout: 2000000000
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Grid.Width != 400 || cfg.Grid.Height != 300 {
		t.Errorf("Grid = %+v, want 400x300", cfg.Grid)
	}
	if got := cfg.Search.StepDelay.Duration(); got != 25*time.Millisecond {
		t.Errorf("StepDelay = %v, want 25ms", got)
	}
	if got := cfg.Server.ShutdownTimeout.Duration(); got != 2*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 2s", got)
	}
	if cfg.Server.ListenAddress != "127.0.0.1:28080" {
		t.Errorf("ListenAddress = %q, want default", cfg.Server.ListenAddress)
	}
	if cfg.Search.Target != grid.Pos(390, 290) {
		t.Errorf("Target = %v, want (390,290)", cfg.Search.Target)
	}
}

func TestLoadReadsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "astar.json")
	if err := os.WriteFile(path, []byte(`{"search":{"stepDelay":"0s","commandBatch":4}}`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Search.StepDelay != 0 {
		t.Errorf("StepDelay = %v, want 0", cfg.Search.StepDelay)
	}
	if cfg.Search.CommandBatch != 4 {
		t.Errorf("CommandBatch = %d, want 4", cfg.Search.CommandBatch)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "astar.yml")
	if err := os.WriteFile(path, []byte("search:\n  stepDelay: soon\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("Load() = nil error, want parse failure")
	}
	if _, err := Load("/nonexistent/path.yaml"); err == nil {
		t.Fatalf("Load() = nil error, want read failure")
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") returned error: %v", err)
	}
	if cfg.Grid != Default().Grid {
		t.Fatalf("Grid = %+v, want defaults", cfg.Grid)
	}
}

func TestDurationEncodings(t *testing.T) {
	var d Duration
	if err := json.Unmarshal([]byte(`"150ms"`), &d); err != nil || d.Duration() != 150*time.Millisecond {
		t.Fatalf("json string: got %v, %v", d, err)
	}
	if err := json.Unmarshal([]byte(`1000`), &d); err != nil || d.Duration() != time.Microsecond {
		t.Fatalf("json number: got %v, %v", d, err)
	}
	if err := json.Unmarshal([]byte(`null`), &d); err != nil || d != 0 {
		t.Fatalf("json null: got %v, %v", d, err)
	}
	if err := json.Unmarshal([]byte(`true`), &d); err == nil {
		t.Fatalf("json bool: want error")
	}

	out, err := yaml.Marshal(struct {
		D Duration `yaml:"d"`
	}{Duration(3 * time.Second)})
	if err != nil {
		t.Fatalf("yaml marshal: %v", err)
	}
	if !strings.Contains(string(out), "d: 3s") {
		t.Fatalf("yaml output = %q, want d: 3s", out)
	}
}

func TestWriteDefaultRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "astar.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() returned error: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	want := Default()
	if cfg.Search != want.Search || cfg.Server != want.Server || cfg.Obstacles != want.Obstacles {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", cfg, want)
	}
}
