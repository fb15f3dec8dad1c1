// Package settings persists process-wide dashboard settings across
// sessions. The record is explicit and injected into consumers rather
// than accessed as ambient state.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Settings is the persisted record.
type Settings struct {
	// CollapsedSections lists section names the dashboard renders
	// collapsed.
	CollapsedSections []string `yaml:"collapsed_sections" json:"collapsed_sections"`
}

// Store loads and saves the settings file. Safe for concurrent use.
type Store struct {
	path string

	mu      sync.Mutex
	current Settings
}

// NewStore creates a store backed by the given file path. The file is
// created on first Save.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the settings file into memory. A missing file yields zero
// settings, not an error.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.current = Settings{}
			return nil
		}
		return fmt.Errorf("settings: read: %w", err)
	}
	var loaded Settings
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("settings: parse: %w", err)
	}
	s.current = loaded
	return nil
}

// Get returns a copy of the current settings.
func (s *Store) Get() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.current
	out.CollapsedSections = append([]string(nil), s.current.CollapsedSections...)
	return out
}

// SetCollapsed marks a section collapsed or expanded and saves.
func (s *Store) SetCollapsed(section string, collapsed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := make(map[string]struct{}, len(s.current.CollapsedSections))
	for _, name := range s.current.CollapsedSections {
		set[name] = struct{}{}
	}
	if collapsed {
		set[section] = struct{}{}
	} else {
		delete(set, section)
	}

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	s.current.CollapsedSections = names

	return s.save()
}

// Replace overwrites the whole record and saves.
func (s *Store) Replace(next Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = next
	return s.save()
}

// save writes the current record; callers hold the lock.
func (s *Store) save() error {
	data, err := yaml.Marshal(s.current)
	if err != nil {
		return fmt.Errorf("settings: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("settings: mkdir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("settings: write: %w", err)
	}
	return nil
}
