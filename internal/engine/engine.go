// Package engine implements the sync engines: bulk fetch and diff against
// the object store, push and pull reconciliation, drift status, and the
// local drift watcher. All remote calls are sequential; per-item failures
// are recorded and never abort the batch.
package engine

import (
	"log/slog"

	"github.com/starford/raido/internal/pathgen"
	"github.com/starford/raido/internal/remote"
	"github.com/starford/raido/internal/storage"
	"github.com/starford/raido/internal/store"
)

// Params wires an Engine. All fields are required except the cache file
// paths, which disable cache persistence when empty.
type Params struct {
	Store         *store.Store
	FS            storage.Provider
	Client        remote.Client
	Logger        *slog.Logger
	PathOpts      pathgen.Options
	Root          string // absolute workspace root, used by the watcher
	IndexFile     string // persisted search-index cache
	GroupsFile    string
	EndpointsFile string
}

// Engine coordinates the object store, the workspace filesystem and the
// remote client.
type Engine struct {
	store  *store.Store
	fs     storage.Provider
	client remote.Client
	log    *slog.Logger
	paths  pathgen.Options

	root          string
	indexFile     string
	groupsFile    string
	endpointsFile string
}

// New creates an Engine. A nil logger falls back to slog.Default.
func New(p Params) *Engine {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:         p.Store,
		fs:            p.FS,
		client:        p.Client,
		log:           logger,
		paths:         p.PathOpts,
		root:          p.Root,
		indexFile:     p.IndexFile,
		groupsFile:    p.GroupsFile,
		endpointsFile: p.EndpointsFile,
	}
}

// Store exposes the underlying object store (used by the read-only
// surfaces).
func (e *Engine) Store() *store.Store { return e.store }

// FS exposes the workspace filesystem provider.
func (e *Engine) FS() storage.Provider { return e.fs }

// IndexFile returns the search-index cache path ("" when disabled).
func (e *Engine) IndexFile() string { return e.indexFile }

// ItemError is a per-file failure recorded during a batch.
type ItemError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}
