package fixture

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// Store keeps the fixture table in a TOML file under a config
// directory and tracks which fixture is active.
type Store struct {
	mu       sync.RWMutex
	filePath string
	data     fileData
}

type fileData struct {
	ActiveName string    `toml:"active"`
	Fixtures   []Fixture `toml:"fixtures"`
}

var _ Provider = (*Store)(nil)

// NewStore opens (or creates) the fixture table at dir/fixtures.toml.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	s := &Store{filePath: filepath.Join(dir, "fixtures.toml")}

	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	if err = toml.Unmarshal(data, &s.data); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) save() error {
	data, err := toml.Marshal(s.data)
	if err != nil {
		return err
	}
	return os.WriteFile(s.filePath, data, 0644)
}

// Active returns the active fixture, or the zero fixture (machine
// coordinates) when none is set.
func (s *Store) Active() Fixture {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.data.Fixtures {
		if f.Name == s.data.ActiveName {
			return f
		}
	}
	return Fixture{}
}

// List returns all stored fixtures.
func (s *Store) List() []Fixture {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Fixture, len(s.data.Fixtures))
	copy(out, s.data.Fixtures)
	return out
}

// Put inserts or replaces a fixture by name and persists the table.
func (s *Store) Put(f Fixture) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, old := range s.data.Fixtures {
		if old.Name == f.Name {
			s.data.Fixtures[i] = f
			return s.save()
		}
	}
	s.data.Fixtures = append(s.data.Fixtures, f)
	return s.save()
}

// SetActive marks the named fixture as the active one.
func (s *Store) SetActive(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.data.Fixtures {
		if f.Name == name {
			s.data.ActiveName = name
			return s.save()
		}
	}
	return errors.New("no such fixture: " + name)
}
