// Package projects resolves project names to vault notes and implements
// the attribute store over their YAML frontmatter.
package projects

import (
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/bergsten/raido/internal/apperr"
	"github.com/bergsten/raido/internal/storage"
)

// PathIndex resolves a project's unique display name to its note inside
// the vault. Projects live under a base directory either as a flat note
// or inside a folder of the same name.
type PathIndex struct {
	vault storage.Provider
	base  string
}

// NewPathIndex creates a resolver rooted at base (relative to the vault
// root; empty means the vault root itself).
func NewPathIndex(vault storage.Provider, base string) *PathIndex {
	return &PathIndex{vault: vault, base: base}
}

// Candidates returns the paths a project note may live at, in probe order.
func (p *PathIndex) Candidates(name string) []string {
	return []string{
		filepath.Join(p.base, name+".md"),
		filepath.Join(p.base, name, name+".md"),
	}
}

// Resolve returns the path and content of the project's note, or
// apperr.ErrNotFound when no candidate exists.
func (p *PathIndex) Resolve(name string) (string, []byte, error) {
	for _, path := range p.Candidates(name) {
		data, err := p.vault.Read(path)
		if err == nil {
			return path, data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", nil, err
		}
	}
	return "", nil, apperr.ErrNotFound
}
