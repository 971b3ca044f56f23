package scenario

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const fileExt = ".yaml"

// DiskStore keeps one YAML file per scenario beneath a directory.
type DiskStore struct {
	dir string
	mu  sync.RWMutex
}

// NewDiskStore creates dir if needed and returns a store rooted there.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create scenario directory: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

func (d *DiskStore) path(name string) (string, error) {
	if !ValidName(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(d.dir, name+fileExt), nil
}

func (d *DiskStore) Save(s Scenario) error {
	path, err := d.path(s.Name)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return WriteFile(path, s)
}

func (d *DiskStore) Load(name string) (Scenario, error) {
	path, err := d.path(name)
	if err != nil {
		return Scenario{}, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, err := ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Scenario{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return s, err
}

func (d *DiskStore) List() ([]string, error) {
	d.mu.RLock()
	entries, err := os.ReadDir(d.dir)
	d.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), fileExt)
		if !ValidName(name) {
			log.Printf("scenario store: skipping %s", entry.Name())
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (d *DiskStore) Delete(name string) error {
	path, err := d.path(name)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("delete scenario: %w", err)
	}
	return nil
}

func (d *DiskStore) Close() error {
	return nil
}
