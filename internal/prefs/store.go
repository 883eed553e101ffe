// Package prefs persists user-assigned group display names. The whole file
// is rewritten on every change; renames are rare and the table is small.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// DefaultFileName is the store file under the config directory
const DefaultFileName = "group_names.toml"

type fileFormat struct {
	Names map[string]string `toml:"names"`
}

// Store coordinates concurrent access to the group name overrides
type Store struct {
	path string

	mu    sync.RWMutex
	names map[string]string
}

// NewStore creates a store backed by the given file. Call Load to pick up
// existing overrides.
func NewStore(path string) *Store {
	return &Store{path: path, names: make(map[string]string)}
}

// Load reads the override table. A missing file is not an error. A file
// that cannot be parsed is reported but leaves the store usable and empty,
// so one corrupt write never locks the user out of renaming.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read group names: %w", err)
	}

	var f fileFormat
	if err := toml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse group names: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if f.Names != nil {
		s.names = f.Names
	}
	return nil
}

// Name returns the override for a group, if one exists
func (s *Store) Name(groupID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.names[groupID]
	return name, ok
}

// SetName stores an override and rewrites the file. An empty name removes
// the override, falling back to the built-in display name.
func (s *Store) SetName(groupID, name string) error {
	s.mu.Lock()
	if name == "" {
		delete(s.names, groupID)
	} else {
		s.names[groupID] = name
	}
	s.mu.Unlock()

	return s.save()
}

// All returns a copy of the override table
func (s *Store) All() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.names))
	for id, name := range s.names {
		out[id] = name
	}
	return out
}

func (s *Store) save() error {
	s.mu.RLock()
	f := fileFormat{Names: make(map[string]string, len(s.names))}
	for id, name := range s.names {
		f.Names[id] = name
	}
	s.mu.RUnlock()

	data, err := toml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode group names: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write group names: %w", err)
	}
	return nil
}
