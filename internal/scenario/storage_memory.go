package scenario

import (
	"fmt"
	"sort"
	"sync"
)

// MemoryStore keeps scenarios in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]Scenario
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]Scenario)}
}

func (m *MemoryStore) Save(s Scenario) error {
	if err := s.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	m.items[s.Name] = s.Clone()
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Load(name string) (Scenario, error) {
	if !ValidName(name) {
		return Scenario{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	m.mu.RLock()
	s, ok := m.items[name]
	m.mu.RUnlock()
	if !ok {
		return Scenario{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return s.Clone(), nil
}

func (m *MemoryStore) List() ([]string, error) {
	m.mu.RLock()
	names := make([]string, 0, len(m.items))
	for name := range m.items {
		names = append(names, name)
	}
	m.mu.RUnlock()
	sort.Strings(names)
	return names, nil
}

func (m *MemoryStore) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	delete(m.items, name)
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
