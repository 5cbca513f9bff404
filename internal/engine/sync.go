package engine

import (
	"context"
	"log/slog"

	"github.com/starford/raido/internal/pathgen"
)

// SyncOptions configures a full sync. Clean purges entries (and their
// local files) for objects removed remotely; this is the only way tracked
// entries disappear during sync.
type SyncOptions struct {
	Force bool
	Clean bool
}

// SyncResult reports the diff classification plus what was materialized.
type SyncResult struct {
	New     int         `json:"new"`
	Updated int         `json:"updated"`
	Removed int         `json:"removed"`
	Written int         `json:"written"`
	Skipped int         `json:"skipped"`
	Purged  int         `json:"purged"`
	Errors  []ItemError `json:"errors"`
}

// Sync performs the full fetch → diff → materialize cycle and refreshes
// the persisted search index and group/endpoint caches. Running it twice
// against an unchanged remote and store yields an all-zero diff.
func (e *Engine) Sync(ctx context.Context, opts SyncOptions) (*SyncResult, error) {
	fetch, err := e.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := e.store.Load()
	if err != nil {
		return nil, err
	}

	diff := DiffObjects(entries, fetch.Objects)
	result := &SyncResult{
		New:     len(diff.New),
		Updated: len(diff.Updated),
		Removed: len(diff.Removed),
	}

	pull := &PullResult{}
	for _, f := range append(diff.New, diff.Updated...) {
		p, err := pathgen.Generate(f, e.paths)
		if err != nil {
			result.Errors = append(result.Errors, ItemError{Path: f.Name, Message: err.Error()})
			continue
		}
		e.writeFetched(&entries, f, p, opts.Force, pull)
	}
	result.Written = pull.Pulled
	result.Skipped = pull.Skipped
	result.Errors = append(result.Errors, pull.Errors...)

	if opts.Clean {
		for _, t := range diff.Removed {
			if e.fs.Exists(t.Path) {
				if err := e.fs.Delete(t.Path); err != nil {
					result.Errors = append(result.Errors, ItemError{Path: t.Path, Message: err.Error()})
					continue
				}
			}
			entries = removeEntry(entries, t.Path)
			result.Purged++
			e.log.Info("sync: purged removed object", slog.String("path", t.Path))
		}
	}

	if err := e.store.Save(entries); err != nil {
		return nil, err
	}
	e.writeCaches(fetch, entries)

	e.log.Info("sync: complete",
		slog.Int("new", result.New),
		slog.Int("updated", result.Updated),
		slog.Int("removed", result.Removed),
		slog.Int("written", result.Written),
		slog.Int("skipped", result.Skipped))
	return result, nil
}
