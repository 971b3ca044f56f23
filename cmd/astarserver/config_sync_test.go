package main

import (
	"encoding/base64"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"astarviz/internal/config"
)

func TestWriteConfigFromEnvJSON(t *testing.T) {
	t.Setenv(envConfigYAMLB64, "")

	cfg := config.Default()
	cfg.Server.ListenAddress = "127.0.0.1:39000"
	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	t.Setenv(envConfigJSON, string(data))

	path := filepath.Join(t.TempDir(), "astar.json")
	wrote, err := writeConfigFromEnv(path)
	if err != nil {
		t.Fatalf("writeConfigFromEnv: %v", err)
	}
	if !wrote {
		t.Fatalf("expected config to be written")
	}

	loaded, err := config.Load(path)
	if err != nil {
		t.Fatalf("load written config: %v", err)
	}
	if loaded.Server.ListenAddress != "127.0.0.1:39000" {
		t.Fatalf("unexpected listen address: %q", loaded.Server.ListenAddress)
	}
}

func TestWriteConfigFromEnvYAML(t *testing.T) {
	cfg := config.Default()
	cfg.Search.StepDelay = config.Duration(40 * time.Millisecond)
	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal yaml: %v", err)
	}
	t.Setenv(envConfigJSON, "")
	t.Setenv(envConfigYAMLB64, base64.StdEncoding.EncodeToString(data))

	path := filepath.Join(t.TempDir(), "nested", "astar.yaml")
	wrote, err := writeConfigFromEnv(path)
	if err != nil {
		t.Fatalf("writeConfigFromEnv: %v", err)
	}
	if !wrote {
		t.Fatalf("expected config to be written")
	}

	loaded, err := config.Load(path)
	if err != nil {
		t.Fatalf("load written config: %v", err)
	}
	if got := loaded.Search.StepDelay.Duration(); got != 40*time.Millisecond {
		t.Fatalf("StepDelay = %v, want 40ms", got)
	}
}

func TestWriteConfigFromEnvNoop(t *testing.T) {
	t.Setenv(envConfigJSON, "")
	t.Setenv(envConfigYAMLB64, "")

	wrote, err := writeConfigFromEnv(filepath.Join(t.TempDir(), "astar.yaml"))
	if err != nil {
		t.Fatalf("writeConfigFromEnv: %v", err)
	}
	if wrote {
		t.Fatalf("expected no config to be written")
	}
}

func TestWriteConfigFromEnvRejectsInvalid(t *testing.T) {
	t.Setenv(envConfigYAMLB64, "")
	t.Setenv(envConfigJSON, `{"server":{"eventBuffer":-1}}`)

	if _, err := writeConfigFromEnv(filepath.Join(t.TempDir(), "astar.json")); err == nil {
		t.Fatalf("expected validation error")
	}

	t.Setenv(envConfigJSON, "")
	t.Setenv(envConfigYAMLB64, "%%%")
	if _, err := writeConfigFromEnv(filepath.Join(t.TempDir(), "astar.json")); err == nil {
		t.Fatalf("expected base64 error")
	}
}
