// Package store persists the mapping of tracked local paths to remote
// object identity and baseline content hash. The on-disk representation is
// an order-preserving JSON array keyed by path.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/starford/raido/internal/object"
)

// Store reads and writes the object store file.
type Store struct {
	file string // absolute path to objects.json
}

// New creates a Store backed by the given file path. The file does not
// have to exist yet; Load on a missing file returns an empty sequence.
func New(file string) *Store {
	return &Store{file: file}
}

// File returns the backing file path.
func (s *Store) File() string {
	return s.file
}

// Load reads the ordered sequence of tracked objects. A missing store file
// is an empty store, not an error.
func (s *Store) Load() ([]object.Tracked, error) {
	data, err := os.ReadFile(s.file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: read: %w", err)
	}
	var entries []object.Tracked
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("store: parse %s: %w", s.file, err)
	}
	return entries, nil
}

// Save writes the full sequence back, preserving order. The write is
// atomic: tmp file → fsync → rename.
func (s *Store) Save(entries []object.Tracked) error {
	if entries == nil {
		entries = []object.Tracked{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.file)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".objects-tmp-*")
	if err != nil {
		return fmt.Errorf("store: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("store: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("store: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close temp: %w", err)
	}
	if err := os.Rename(tmpName, s.file); err != nil {
		return fmt.Errorf("store: rename: %w", err)
	}
	success = true
	return nil
}

// Upsert replaces the entry for entry.Path or appends a new one, then saves.
// Callers must supply the full identity and hash for the new state; partial
// hash state is never merged silently.
func (s *Store) Upsert(entry object.Tracked) ([]object.Tracked, error) {
	entries, err := s.Load()
	if err != nil {
		return nil, err
	}
	entries = UpsertEntry(entries, entry)
	if err := s.Save(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Remove deletes the entry for path, if present, then saves.
func (s *Store) Remove(path string) ([]object.Tracked, error) {
	entries, err := s.Load()
	if err != nil {
		return nil, err
	}
	out := entries[:0]
	for _, e := range entries {
		if e.Path != path {
			out = append(out, e)
		}
	}
	if err := s.Save(out); err != nil {
		return nil, err
	}
	return out, nil
}

// FindByPath returns the tracked object for path, or nil when untracked.
func (s *Store) FindByPath(path string) (*object.Tracked, error) {
	entries, err := s.Load()
	if err != nil {
		return nil, err
	}
	if e := FindEntry(entries, path); e != nil {
		cp := *e
		return &cp, nil
	}
	return nil, nil
}

// UpsertEntry replaces the element with the same path or appends, keeping
// order stable for existing entries.
func UpsertEntry(entries []object.Tracked, entry object.Tracked) []object.Tracked {
	for i, e := range entries {
		if e.Path == entry.Path {
			entries[i] = entry
			return entries
		}
	}
	return append(entries, entry)
}

// FindEntry returns a pointer into entries for the given path, or nil.
func FindEntry(entries []object.Tracked, path string) *object.Tracked {
	for i := range entries {
		if entries[i].Path == path {
			return &entries[i]
		}
	}
	return nil
}
