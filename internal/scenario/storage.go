package scenario

// Store persists scenarios by name.
type Store interface {
	Save(s Scenario) error
	Load(name string) (Scenario, error)
	// List returns the stored names in lexical order.
	List() ([]string, error)
	Delete(name string) error
	Close() error
}

// Open returns a disk store rooted at dir, or a memory store when dir is empty.
func Open(dir string) (Store, error) {
	if dir == "" {
		return NewMemoryStore(), nil
	}
	return NewDiskStore(dir)
}
