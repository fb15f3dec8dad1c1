package projects

import (
	"fmt"

	"github.com/bergsten/raido/internal/attrs"
	"github.com/bergsten/raido/internal/storage"
)

// Store reads and writes per-project attribute records stored as YAML
// frontmatter on the project's note. It satisfies the reconciliation
// engine's AttributeStore contract.
type Store struct {
	vault storage.Provider
	paths *PathIndex
}

// NewStore creates a frontmatter-backed attribute store.
func NewStore(vault storage.Provider, paths *PathIndex) *Store {
	return &Store{vault: vault, paths: paths}
}

// Get returns the project's current attribute record, or
// apperr.ErrNotFound when the project note does not exist. A note without
// frontmatter yields a nil record and no error.
func (s *Store) Get(name string) (*attrs.Record, error) {
	_, data, err := s.paths.Resolve(name)
	if err != nil {
		return nil, err
	}
	return attrs.Parse(data), nil
}

// Update merges partial attribute changes into the project's frontmatter.
// A nil change value deletes the key; unrelated keys and the note body
// are preserved.
func (s *Store) Update(name string, changes map[string]any) error {
	path, data, err := s.paths.Resolve(name)
	if err != nil {
		return fmt.Errorf("projects: update %s: %w", name, err)
	}
	out, err := attrs.Apply(data, changes)
	if err != nil {
		return fmt.Errorf("projects: update %s: %w", name, err)
	}
	return s.vault.Write(path, out)
}

// Lookup is an error-swallowing adapter for the document parser: absent
// projects simply have no snapshot.
func (s *Store) Lookup(name string) *attrs.Record {
	rec, err := s.Get(name)
	if err != nil {
		return nil
	}
	return rec
}
