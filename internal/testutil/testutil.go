// Package testutil provides shared test helpers: temp workspaces, object
// stores and an in-memory fake of the remote Metadata API client.
package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/object"
	"github.com/starford/raido/internal/remote"
	"github.com/starford/raido/internal/storage"
	"github.com/starford/raido/internal/store"
)

// Workspace creates a temporary workspace directory with a storage
// provider and an object store rooted under .raido.
func Workspace(t *testing.T) (string, *storage.FS, *store.Store) {
	t.Helper()
	root := t.TempDir()
	fs, err := storage.NewFS(root)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	st := store.New(filepath.Join(root, ".raido", "objects.json"))
	return root, fs, st
}

// Logger returns a discard logger for quiet tests.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// FakeClient is an in-memory remote.Client. It is deliberately sequential
// like the real collaborator; no locking.
type FakeClient struct {
	Objects map[object.Type][]remote.Object
	NextID  int64

	// ConflictKeys makes Update on "type:id" fail with a uniqueness
	// conflict, simulating the remote's rejection.
	ConflictKeys map[string]bool
	// FailCreate makes Create fail for the given type.
	FailCreate map[object.Type]error

	ListCalls   int
	CreateCalls int
	UpdateCalls int
	DeleteCalls int
	Deleted     []string // "type:id" in call order
}

// NewFakeClient returns an empty fake with ids starting at 100.
func NewFakeClient() *FakeClient {
	return &FakeClient{
		Objects:      make(map[object.Type][]remote.Object),
		NextID:       100,
		ConflictKeys: make(map[string]bool),
		FailCreate:   make(map[object.Type]error),
	}
}

// Add seeds a remote object and returns it.
func (c *FakeClient) Add(typ object.Type, o remote.Object) remote.Object {
	if o.ID == 0 {
		o.ID = c.NextID
		c.NextID++
	}
	o.HasScript = o.HasScript || o.Script != ""
	c.Objects[typ] = append(c.Objects[typ], o)
	return o
}

func key(typ object.Type, id int64) string {
	return fmt.Sprintf("%s:%d", typ, id)
}

// List implements remote.Client with single-page results.
func (c *FakeClient) List(_ context.Context, typ object.Type, page, perPage int, opts remote.Options) ([]remote.Object, bool, error) {
	c.ListCalls++
	if page > 1 {
		return nil, false, nil
	}
	var out []remote.Object
	for _, o := range c.Objects[typ] {
		if typ == object.TypeAPIEndpoint && opts.GroupID != 0 && o.GroupID != opts.GroupID {
			continue
		}
		out = append(out, o)
	}
	return out, false, nil
}

// Get implements remote.Client.
func (c *FakeClient) Get(_ context.Context, typ object.Type, id int64, _ remote.Options) (remote.Object, error) {
	for _, o := range c.Objects[typ] {
		if o.ID == id {
			return o, nil
		}
	}
	return remote.Object{}, fmt.Errorf("fake: get %s: %w", key(typ, id), apperr.ErrNotFound)
}

// Create implements remote.Client.
func (c *FakeClient) Create(_ context.Context, typ object.Type, script string, opts remote.Options) (int64, error) {
	c.CreateCalls++
	if err := c.FailCreate[typ]; err != nil {
		return 0, err
	}
	o := remote.Object{ID: c.NextID, Script: script, HasScript: true, GroupID: opts.GroupID}
	c.NextID++
	c.Objects[typ] = append(c.Objects[typ], o)
	return o.ID, nil
}

// Update implements remote.Client.
func (c *FakeClient) Update(_ context.Context, typ object.Type, id int64, script string, _ remote.Options) error {
	c.UpdateCalls++
	if c.ConflictKeys[key(typ, id)] {
		return fmt.Errorf("fake: update %s: name already in use: %w", key(typ, id), apperr.ErrConflict)
	}
	for i, o := range c.Objects[typ] {
		if o.ID == id {
			c.Objects[typ][i].Script = script
			c.Objects[typ][i].HasScript = true
			return nil
		}
	}
	return fmt.Errorf("fake: update %s: %w", key(typ, id), apperr.ErrNotFound)
}

// Delete implements remote.Client.
func (c *FakeClient) Delete(_ context.Context, typ object.Type, id int64, _ remote.Options) error {
	c.DeleteCalls++
	c.Deleted = append(c.Deleted, key(typ, id))
	objs := c.Objects[typ]
	for i, o := range objs {
		if o.ID == id {
			c.Objects[typ] = append(objs[:i], objs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("fake: delete %s: %w", key(typ, id), apperr.ErrNotFound)
}

// Verify *FakeClient satisfies remote.Client at compile time.
var _ remote.Client = (*FakeClient)(nil)
