// Package storage defines the vault file-system abstraction.
package storage

import "time"

// FileMeta is lightweight metadata for one vault file.
type FileMeta struct {
	Path      string
	Checksum  string
	UpdatedAt time.Time
}

// Provider is the read/write surface the sync engine and index need
// from the vault. All paths are relative to the vault root. Deleting
// and renaming notes stays with the host application; this service
// only rewrites documents in place.
type Provider interface {
	// List returns metadata for every .md file under dir.
	List(dir string) ([]FileMeta, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the content of the file at path.
	Write(path string, content []byte) error
}
