package scenario

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"astarviz/internal/grid"
)

var (
	// ErrNotFound is returned when a named scenario does not exist.
	ErrNotFound = errors.New("scenario: not found")
	// ErrInvalidName is returned for names outside [A-Za-z0-9_-]+.
	ErrInvalidName = errors.New("scenario: invalid name")
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Scenario is a saved grid layout. It carries no search progress.
type Scenario struct {
	Name    string          `json:"name" yaml:"name"`
	Width   int             `json:"width" yaml:"width"`
	Height  int             `json:"height" yaml:"height"`
	Start   grid.Position   `json:"start" yaml:"start"`
	Target  grid.Position   `json:"target" yaml:"target"`
	Blocked []grid.Position `json:"blocked" yaml:"blocked"`
}

// ValidName reports whether name may be used as a scenario key.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// Bounds returns the scenario's grid size.
func (s Scenario) Bounds() grid.FixedBounds {
	return grid.FixedBounds{Width: s.Width, Height: s.Height}
}

// Validate checks that the layout is self consistent.
func (s Scenario) Validate() error {
	if !ValidName(s.Name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, s.Name)
	}
	if s.Width < grid.CellSize || s.Height < grid.CellSize {
		return fmt.Errorf("scenario %s: grid %dx%d too small", s.Name, s.Width, s.Height)
	}
	bounds := s.Bounds()
	for _, p := range []grid.Position{s.Start, s.Target} {
		if !p.Aligned() || !grid.Contains(bounds, p) {
			return fmt.Errorf("scenario %s: endpoint %v outside the grid", s.Name, p)
		}
	}
	for i, p := range s.Blocked {
		if !p.Aligned() || !grid.Contains(bounds, p) {
			return fmt.Errorf("scenario %s: blocked[%d] %v outside the grid", s.Name, i, p)
		}
		if p == s.Start || p == s.Target {
			return fmt.Errorf("scenario %s: blocked[%d] %v covers an endpoint", s.Name, i, p)
		}
	}
	return nil
}

// Clone returns a deep copy.
func (s Scenario) Clone() Scenario {
	s.Blocked = append([]grid.Position(nil), s.Blocked...)
	return s
}

// ReadFile loads a single scenario from a YAML file.
func ReadFile(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Scenario{}, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return Scenario{}, err
	}
	return s, nil
}

// WriteFile stores s as YAML at path, replacing any existing file.
func WriteFile(path string, s Scenario) error {
	if err := s.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode scenario %s: %w", s.Name, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write scenario: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace scenario: %w", err)
	}
	return nil
}
