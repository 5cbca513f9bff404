// Package remote defines the Metadata API collaborator the sync engines
// consume, and its HTTP implementation. Transport detail stays behind the
// Client interface; the engines never see URLs or headers.
package remote

import (
	"context"

	"github.com/starford/raido/internal/object"
)

// Object is a raw remote record after wire decoding. Script holds the
// decoded XanoScript source; HasScript distinguishes an empty script from
// an entry with no extractable source at all.
type Object struct {
	ID        int64
	GUID      string
	Name      string
	Verb      string
	HTTPPath  string
	GroupID   int64
	Script    string
	HasScript bool
}

// Options carries per-call context the resource path may need. GroupID is
// required for endpoint operations (endpoints live under their api group).
type Options struct {
	GroupID int64
}

// Client is the remote workspace collaborator. All batch engines issue
// calls one at a time and await each before the next; implementations do
// not need to be safe for concurrent use.
type Client interface {
	// List returns one page of objects of the given type, plus whether
	// another page follows.
	List(ctx context.Context, typ object.Type, page, perPage int, opts Options) ([]Object, bool, error)
	// Get refetches a single object, including its script source.
	Get(ctx context.Context, typ object.Type, id int64, opts Options) (Object, error)
	// Create uploads a new object from script source and returns its id.
	Create(ctx context.Context, typ object.Type, script string, opts Options) (int64, error)
	// Update replaces the script source of an existing object.
	Update(ctx context.Context, typ object.Type, id int64, script string, opts Options) error
	// Delete removes a remote object.
	Delete(ctx context.Context, typ object.Type, id int64, opts Options) error
}
