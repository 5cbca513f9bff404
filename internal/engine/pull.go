package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/object"
	"github.com/starford/raido/internal/pathgen"
	"github.com/starford/raido/internal/remote"
	"github.com/starford/raido/internal/store"
)

// PullOptions selects what to pull. Force overwrites local edits;
// CleanLocal deletes tracked local files absent from the remote fetch.
type PullOptions struct {
	Paths      []string
	Force      bool
	CleanLocal bool
}

// PullResult aggregates a pull batch. Skipped counts conflict-avoidance
// skips, which are actionable but not errors.
type PullResult struct {
	Pulled  int         `json:"pulled"`
	Skipped int         `json:"skipped"`
	Deleted int         `json:"deleted"`
	Errors  []ItemError `json:"errors"`
}

// Pull writes remote content to disk. Local edits (live hash differing
// from the stored baseline) are never overwritten unless forced. Without
// explicit paths a single bulk fetch populates all files, avoiding
// one-request-per-object overhead.
func (e *Engine) Pull(ctx context.Context, opts PullOptions) (*PullResult, error) {
	entries, err := e.store.Load()
	if err != nil {
		return nil, err
	}
	result := &PullResult{}

	if len(opts.Paths) > 0 {
		for _, p := range opts.Paths {
			if err := e.pullOne(ctx, &entries, p, opts.Force, result); err != nil {
				e.log.Warn("pull: failed", slog.String("path", p), slog.String("error", err.Error()))
				result.Errors = append(result.Errors, ItemError{Path: p, Message: err.Error()})
			}
		}
		if err := e.store.Save(entries); err != nil {
			return nil, err
		}
		e.writeCaches(nil, entries)
		return result, nil
	}

	fetch, err := e.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	remotePaths := make(map[string]struct{}, len(fetch.Objects))
	for _, f := range fetch.Objects {
		p, err := pathgen.Generate(f, e.paths)
		if err != nil {
			result.Errors = append(result.Errors, ItemError{Path: f.Name, Message: err.Error()})
			continue
		}
		remotePaths[p] = struct{}{}
		e.writeFetched(&entries, f, p, opts.Force, result)
	}

	if opts.CleanLocal {
		for _, t := range snapshot(entries) {
			if _, ok := remotePaths[t.Path]; ok {
				continue
			}
			if e.fs.Exists(t.Path) {
				if err := e.fs.Delete(t.Path); err != nil {
					result.Errors = append(result.Errors, ItemError{Path: t.Path, Message: err.Error()})
					continue
				}
			}
			entries = removeEntry(entries, t.Path)
			result.Deleted++
			e.log.Info("pull: removed local", slog.String("path", t.Path))
		}
	}

	if err := e.store.Save(entries); err != nil {
		return nil, err
	}
	e.writeCaches(fetch, entries)
	return result, nil
}

// pullOne refetches a single tracked object by path.
func (e *Engine) pullOne(ctx context.Context, entries *[]object.Tracked, p string, force bool, result *PullResult) error {
	prev := store.FindEntry(*entries, p)
	if prev == nil {
		return fmt.Errorf("not tracked: %s", p)
	}
	opts := remote.Options{}
	if prev.Type == object.TypeAPIEndpoint {
		groupID, err := e.siblingGroupID(*entries, p)
		if err != nil {
			return err
		}
		opts.GroupID = groupID
	}
	obj, err := e.client.Get(ctx, prev.Type, prev.ID, opts)
	if err != nil {
		return err
	}
	if !obj.HasScript {
		return fmt.Errorf("remote object has no script source")
	}
	f := toFetched(prev.Type, obj, "")
	e.writeFetched(entries, f, p, force, result)
	return nil
}

// writeFetched writes one object to disk unless conflict protection
// skips it, then records the new baseline hash in the store.
func (e *Engine) writeFetched(entries *[]object.Tracked, f object.Fetched, p string, force bool, result *PullResult) {
	content := []byte(f.Script)
	if !force && e.fs.Exists(p) {
		live, err := e.fs.Read(p)
		if err != nil {
			result.Errors = append(result.Errors, ItemError{Path: p, Message: err.Error()})
			return
		}
		stored := ""
		if prev := store.FindEntry(*entries, p); prev != nil {
			stored = prev.SHA256
		}
		// Identical content is not a conflict; anything else is an
		// unsynced local edit and must survive the pull.
		if !checksum.Matches(live, stored) && checksum.Sum(live) != checksum.Sum(content) {
			result.Skipped++
			e.log.Info("pull: skipped (local edits, use --force)", slog.String("path", p))
			return
		}
	}

	if err := e.fs.Write(p, content); err != nil {
		result.Errors = append(result.Errors, ItemError{Path: p, Message: err.Error()})
		return
	}
	*entries = store.UpsertEntry(*entries, syncedEntry(f.ID, f.Type, p, f.Script))
	result.Pulled++
	e.log.Debug("pull: wrote", slog.String("path", p))
}
