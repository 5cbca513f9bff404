// Package resolve answers identifier lookups against the object store:
// a precomputed search index holds per-object name variants so the
// five-tier matcher never renormalizes every object at query time.
package resolve

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/starford/raido/internal/object"
	"github.com/starford/raido/internal/pathgen"
	"github.com/starford/raido/internal/storage"
)

// Entry holds the precomputed name variants for one tracked object.
type Entry struct {
	Path          string      `json:"path"`
	Name          string      `json:"name"`
	Type          object.Type `json:"type"`
	Basename      string      `json:"basename"`
	SanitizedBase string      `json:"sanitizedBasename"`
	SnakeBase     string      `json:"snakeBasename"`
	PathNoExt     string      `json:"pathNoExt"`
	SanitizedPath string      `json:"sanitizedPath"`
	SnakePath     string      `json:"snakePath"`
}

// Index is the lookup surface the matcher runs against. Two
// implementations exist: one loaded from the persisted cache file and one
// built on the fly from the object store; both share this interface so the
// tier logic is written once.
type Index interface {
	All() []Entry
	ByBasename(name string) []Entry
	BySanitized(name string) []Entry
	ByPath(path string) (Entry, bool)
	// Tables maps table basenames to their tracked paths.
	Tables() map[string]string
	// Functions lists the tracked paths of all function objects.
	Functions() []string
}

// memIndex backs both implementations.
type memIndex struct {
	entries     []Entry
	byBasename  map[string][]int
	bySanitized map[string][]int
	byPath      map[string]int
	tables      map[string]string
	functions   []string
}

func (m *memIndex) All() []Entry { return m.entries }

func (m *memIndex) ByBasename(name string) []Entry { return m.pick(m.byBasename[name]) }

func (m *memIndex) BySanitized(name string) []Entry { return m.pick(m.bySanitized[name]) }

func (m *memIndex) ByPath(p string) (Entry, bool) {
	i, ok := m.byPath[p]
	if !ok {
		return Entry{}, false
	}
	return m.entries[i], true
}

func (m *memIndex) Tables() map[string]string { return m.tables }

func (m *memIndex) Functions() []string { return m.functions }

func (m *memIndex) pick(idxs []int) []Entry {
	if len(idxs) == 0 {
		return nil
	}
	out := make([]Entry, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, m.entries[i])
	}
	return out
}

// NewEntry computes all name variants for a tracked object.
func NewEntry(t object.Tracked) Entry {
	base := strings.TrimSuffix(path.Base(t.Path), storage.ScriptExt)
	noExt := strings.TrimSuffix(t.Path, storage.ScriptExt)
	return Entry{
		Path:          t.Path,
		Name:          base,
		Type:          t.Type,
		Basename:      base,
		SanitizedBase: pathgen.Sanitize(base),
		SnakeBase:     pathgen.SnakeCase(base),
		PathNoExt:     noExt,
		SanitizedPath: sanitizePath(noExt, pathgen.Sanitize),
		SnakePath:     sanitizePath(noExt, pathgen.SnakeCase),
	}
}

// sanitizePath applies fn to each path segment, keeping separators.
func sanitizePath(p string, fn func(string) string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = fn(s)
	}
	return strings.Join(segs, "/")
}

// Build constructs an in-memory index from tracked objects.
func Build(tracked []object.Tracked) Index {
	m := &memIndex{
		byBasename:  make(map[string][]int),
		bySanitized: make(map[string][]int),
		byPath:      make(map[string]int),
		tables:      make(map[string]string),
	}
	for _, t := range tracked {
		e := NewEntry(t)
		i := len(m.entries)
		m.entries = append(m.entries, e)
		m.byBasename[e.Basename] = append(m.byBasename[e.Basename], i)
		m.addSanitized(e.SanitizedBase, i)
		if e.SnakeBase != e.SanitizedBase {
			m.addSanitized(e.SnakeBase, i)
		}
		m.byPath[e.Path] = i
		switch t.Type {
		case object.TypeTable:
			m.tables[e.Basename] = e.Path
		case object.TypeFunction:
			m.functions = append(m.functions, e.Path)
		}
	}
	return m
}

func (m *memIndex) addSanitized(key string, i int) {
	if key == "" {
		return
	}
	m.bySanitized[key] = append(m.bySanitized[key], i)
}

// cacheFile is the persisted search-index representation.
type cacheFile struct {
	Objects     []Entry           `json:"objects"`
	ByBasename  map[string][]int  `json:"byBasename"`
	BySanitized map[string][]int  `json:"bySanitized"`
	ByPath      map[string]int    `json:"byPath"`
	Tables      map[string]string `json:"tables"`
	Functions   []string          `json:"functions"`
}

// SaveCache builds the index from tracked objects and persists it.
func SaveCache(file string, tracked []object.Tracked) error {
	m := Build(tracked).(*memIndex)
	cf := cacheFile{
		Objects:     m.entries,
		ByBasename:  m.byBasename,
		BySanitized: m.bySanitized,
		ByPath:      m.byPath,
		Tables:      m.tables,
		Functions:   m.functions,
	}
	if cf.Objects == nil {
		cf.Objects = []Entry{}
	}
	if cf.Functions == nil {
		cf.Functions = []string{}
	}
	data, err := json.MarshalIndent(cf, "", "  ")
	if err != nil {
		return fmt.Errorf("resolve: marshal cache: %w", err)
	}
	data = append(data, '\n')
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return fmt.Errorf("resolve: mkdir: %w", err)
	}
	if err := os.WriteFile(file, data, 0o644); err != nil {
		return fmt.Errorf("resolve: write cache: %w", err)
	}
	return nil
}

// LoadCache reads a persisted index. A missing or unreadable cache returns
// an error so the caller can fall back to a live build.
func LoadCache(file string) (Index, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("resolve: read cache: %w", err)
	}
	var cf cacheFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("resolve: parse cache %s: %w", file, err)
	}
	return &memIndex{
		entries:     cf.Objects,
		byBasename:  cf.ByBasename,
		bySanitized: cf.BySanitized,
		byPath:      cf.ByPath,
		tables:      cf.Tables,
		functions:   cf.Functions,
	}, nil
}

// Open prefers the persisted cache and falls back to building from the
// tracked objects when the cache is absent or stale-unreadable.
func Open(cacheFile string, tracked []object.Tracked) Index {
	if idx, err := LoadCache(cacheFile); err == nil {
		return idx
	}
	return Build(tracked)
}
