// Package storage defines the workspace file-system abstraction.
package storage

import "time"

// FileMeta is a lightweight representation returned by list operations.
type FileMeta struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Provider is the interface for workspace file operations. All paths are
// relative to the workspace root and use forward slashes.
type Provider interface {
	// List returns metadata for every .xs file under dir.
	List(dir string) ([]FileMeta, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating directories as needed.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Exists reports whether a regular file exists at path.
	Exists(path string) bool
}
