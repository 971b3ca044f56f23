package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astarviz/internal/grid"
)

func sample(name string) Scenario {
	return Scenario{
		Name:    name,
		Width:   200,
		Height:  100,
		Start:   grid.Pos(0, 90),
		Target:  grid.Pos(190, 0),
		Blocked: []grid.Position{grid.Pos(100, 0), grid.Pos(100, 10), grid.Pos(100, 20)},
	}
}

func TestStores(t *testing.T) {
	stores := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"disk": func(t *testing.T) Store {
			s, err := NewDiskStore(filepath.Join(t.TempDir(), "scenarios"))
			require.NoError(t, err)
			return s
		},
	}

	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			defer store.Close()

			require.NoError(t, store.Save(sample("wall")))
			require.NoError(t, store.Save(sample("alpha_1")))

			names, err := store.List()
			require.NoError(t, err)
			assert.Equal(t, []string{"alpha_1", "wall"}, names)

			got, err := store.Load("wall")
			require.NoError(t, err)
			assert.Equal(t, sample("wall"), got)

			got.Blocked[0] = grid.Pos(0, 0)
			again, err := store.Load("wall")
			require.NoError(t, err)
			assert.Equal(t, grid.Pos(100, 0), again.Blocked[0], "loaded scenarios must not alias stored state")

			_, err = store.Load("missing")
			assert.ErrorIs(t, err, ErrNotFound)
			_, err = store.Load("../etc")
			assert.ErrorIs(t, err, ErrInvalidName)

			require.NoError(t, store.Delete("wall"))
			assert.ErrorIs(t, store.Delete("wall"), ErrNotFound)
			names, err = store.List()
			require.NoError(t, err)
			assert.Equal(t, []string{"alpha_1"}, names)
		})
	}
}

func TestValidateRejectsBadLayouts(t *testing.T) {
	tests := map[string]func(*Scenario){
		"bad name":          func(s *Scenario) { s.Name = "a b" },
		"tiny grid":         func(s *Scenario) { s.Width = 0 },
		"start outside":     func(s *Scenario) { s.Start = grid.Pos(200, 0) },
		"unaligned target":  func(s *Scenario) { s.Target = grid.Pos(15, 0) },
		"blocked outside":   func(s *Scenario) { s.Blocked = append(s.Blocked, grid.Pos(0, 100)) },
		"blocked on target": func(s *Scenario) { s.Blocked = append(s.Blocked, s.Target) },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			s := sample("x")
			mutate(&s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestDiskStoreSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad name.yaml"), []byte("x"), 0o644))
	require.NoError(t, store.Save(sample("ok")))

	names, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, names)
}

func TestReadFileRejectsCorruptYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("start: [nope"), 0o644))
	_, err := ReadFile(path)
	assert.Error(t, err)
}

func TestOpenPicksBackend(t *testing.T) {
	mem, err := Open("")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, mem)

	disk, err := Open(t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, &DiskStore{}, disk)
}
