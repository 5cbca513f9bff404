package engine

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/object"
	"github.com/starford/raido/internal/remote"
	"github.com/starford/raido/internal/script"
	"github.com/starford/raido/internal/storage"
	"github.com/starford/raido/internal/store"
)

// PushOptions selects what to push. With no explicit paths, all drifted
// tracked files plus untracked discoveries under the type directories are
// candidates. Clean deletes remote objects whose local file is gone.
type PushOptions struct {
	Paths []string
	Clean bool
}

// PushResult aggregates a push batch.
type PushResult struct {
	Pushed  int         `json:"pushed"`
	Created int         `json:"created"`
	Orphans []string    `json:"orphans"`
	Cleaned int         `json:"cleaned"`
	Errors  []ItemError `json:"errors"`
}

// recoverableConflict lists the object types whose update calls can reject
// with a uniqueness conflict even when the name did not change; the
// workaround is delete-then-recreate under a new remote id.
var recoverableConflict = map[object.Type]bool{
	object.TypeAgent:            true,
	object.TypeAgentTrigger:     true,
	object.TypeTool:             true,
	object.TypeMCPServer:        true,
	object.TypeMCPServerTrigger: true,
}

// Push uploads local changes. Failures are isolated per file; the batch
// always runs to completion and the store reflects every success.
func (e *Engine) Push(ctx context.Context, opts PushOptions) (*PushResult, error) {
	entries, err := e.store.Load()
	if err != nil {
		return nil, err
	}

	candidates, err := e.pushCandidates(entries, opts.Paths)
	if err != nil {
		return nil, err
	}

	result := &PushResult{}
	for _, p := range candidates {
		if err := e.pushOne(ctx, &entries, p, result); err != nil {
			e.log.Warn("push: failed", slog.String("path", p), slog.String("error", err.Error()))
			result.Errors = append(result.Errors, ItemError{Path: p, Message: err.Error()})
		}
	}

	// Orphan pass: tracked entries whose file no longer exists.
	for _, t := range snapshot(entries) {
		if e.fs.Exists(t.Path) {
			continue
		}
		result.Orphans = append(result.Orphans, t.Path)
		if !opts.Clean {
			continue
		}
		if err := e.deleteRemote(ctx, entries, t); err != nil {
			result.Errors = append(result.Errors, ItemError{Path: t.Path, Message: err.Error()})
			continue
		}
		entries = removeEntry(entries, t.Path)
		result.Cleaned++
		e.log.Info("push: cleaned orphan", slog.String("path", t.Path))
	}

	if err := e.store.Save(entries); err != nil {
		return nil, err
	}
	e.writeCaches(nil, entries)
	return result, nil
}

// pushCandidates expands explicit paths (directories expand to their .xs
// files) or, without paths, collects hash-drifted tracked files plus
// untracked discoveries.
func (e *Engine) pushCandidates(entries []object.Tracked, paths []string) ([]string, error) {
	if len(paths) > 0 {
		var out []string
		for _, p := range paths {
			p = strings.TrimPrefix(path.Clean(p), "./")
			if strings.HasSuffix(p, storage.ScriptExt) {
				out = append(out, p)
				continue
			}
			metas, err := e.fs.List(p)
			if err != nil {
				return nil, fmt.Errorf("engine: expand %s: %w", p, err)
			}
			for _, m := range metas {
				out = append(out, m.Path)
			}
		}
		return out, nil
	}

	var out []string
	for _, t := range entries {
		if !e.fs.Exists(t.Path) {
			continue // handled by the orphan pass
		}
		data, err := e.fs.Read(t.Path)
		if err != nil {
			continue
		}
		if !checksum.Matches(data, t.SHA256) {
			out = append(out, t.Path)
		}
	}
	for _, p := range e.discoverUntracked(entries) {
		out = append(out, p)
	}
	return out, nil
}

// discoverUntracked walks the configured type directories for .xs files
// with no store entry.
func (e *Engine) discoverUntracked(entries []object.Tracked) []string {
	var out []string
	for _, dir := range e.paths.Dirs.Roots() {
		metas, err := e.fs.List(dir)
		if err != nil {
			e.log.Warn("push: discovery failed", slog.String("dir", dir), slog.String("error", err.Error()))
			continue
		}
		for _, m := range metas {
			if store.FindEntry(entries, m.Path) == nil {
				out = append(out, m.Path)
			}
		}
	}
	return out
}

func (e *Engine) pushOne(ctx context.Context, entries *[]object.Tracked, p string, result *PushResult) error {
	data, err := e.fs.Read(p)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	content := string(data)

	if prev := store.FindEntry(*entries, p); prev != nil {
		return e.pushTracked(ctx, entries, *prev, p, content, result)
	}
	return e.pushUntracked(ctx, entries, p, content, result)
}

// pushTracked updates an existing remote object. The stored type is
// authoritative: edited content may no longer self-declare its type
// unambiguously.
func (e *Engine) pushTracked(ctx context.Context, entries *[]object.Tracked, prev object.Tracked, p, content string, result *PushResult) error {
	opts := remote.Options{}
	if prev.Type == object.TypeAPIEndpoint {
		groupID, err := e.siblingGroupID(*entries, p)
		if err != nil {
			return err
		}
		opts.GroupID = groupID
	}

	id := prev.ID
	err := e.client.Update(ctx, prev.Type, id, content, opts)
	if err != nil && errors.Is(err, apperr.ErrConflict) && recoverableConflict[prev.Type] {
		id, err = e.recreate(ctx, prev, content, opts, entries)
	}
	if err != nil {
		return err
	}

	*entries = store.UpsertEntry(*entries, syncedEntry(id, prev.Type, p, content))
	result.Pushed++
	e.log.Info("push: updated", slog.String("path", p), slog.Int64("id", id))
	return nil
}

// recreate works around uniqueness-conflict rejections: delete the remote
// object, then create it again from the same source. The delete is
// at-most-once; a recreate failure afterwards is surfaced as its own error
// and the store entry is dropped because the remote object is gone.
func (e *Engine) recreate(ctx context.Context, prev object.Tracked, content string, opts remote.Options, entries *[]object.Tracked) (int64, error) {
	e.log.Info("push: uniqueness conflict, recreating",
		slog.String("path", prev.Path), slog.String("type", string(prev.Type)))
	if err := e.client.Delete(ctx, prev.Type, prev.ID, opts); err != nil {
		return 0, fmt.Errorf("conflict recovery delete: %w", err)
	}
	id, err := e.client.Create(ctx, prev.Type, content, opts)
	if err != nil {
		*entries = removeEntry(*entries, prev.Path)
		return 0, fmt.Errorf("deleted remote object but failed to recreate: %w", err)
	}
	return id, nil
}

// pushUntracked sniffs the object type from the leading keyword and
// creates the remote object.
func (e *Engine) pushUntracked(ctx context.Context, entries *[]object.Tracked, p, content string, result *PushResult) error {
	typ := script.Sniff([]byte(content))
	if typ == object.TypeUnknown {
		return fmt.Errorf("%w: cannot sniff type from leading keyword", apperr.ErrUnknownType)
	}

	opts := remote.Options{}
	if typ == object.TypeAPIEndpoint {
		groupID, err := e.siblingGroupID(*entries, p)
		if err != nil {
			return err
		}
		opts.GroupID = groupID
	}

	id, err := e.client.Create(ctx, typ, content, opts)
	if err != nil {
		return err
	}
	*entries = store.UpsertEntry(*entries, syncedEntry(id, typ, p, content))
	result.Pushed++
	result.Created++
	e.log.Info("push: created", slog.String("path", p), slog.String("type", string(typ)), slog.Int64("id", id))
	return nil
}

// siblingGroupID resolves an endpoint's owning api group by walking the
// store for an api_group entry in the same directory. Its absence is a
// hard per-file error: an endpoint cannot be pushed without a group.
func (e *Engine) siblingGroupID(entries []object.Tracked, p string) (int64, error) {
	dir := path.Dir(p)
	for _, t := range entries {
		if t.Type == object.TypeAPIGroup && path.Dir(t.Path) == dir {
			return t.ID, nil
		}
	}
	return 0, fmt.Errorf("no tracked api_group found in %s: cannot push endpoint without its group", dir)
}

func (e *Engine) deleteRemote(ctx context.Context, entries []object.Tracked, t object.Tracked) error {
	opts := remote.Options{}
	if t.Type == object.TypeAPIEndpoint {
		groupID, err := e.siblingGroupID(entries, t.Path)
		if err != nil {
			return err
		}
		opts.GroupID = groupID
	}
	return e.client.Delete(ctx, t.Type, t.ID, opts)
}

// syncedEntry builds the store record for freshly synced content.
func syncedEntry(id int64, typ object.Type, p, content string) object.Tracked {
	return object.Tracked{
		ID:       id,
		Type:     typ,
		Path:     p,
		SHA256:   checksum.Sum([]byte(content)),
		Original: base64.StdEncoding.EncodeToString([]byte(content)),
		Status:   object.StateSynced,
	}
}

func removeEntry(entries []object.Tracked, p string) []object.Tracked {
	out := entries[:0]
	for _, t := range entries {
		if t.Path != p {
			out = append(out, t)
		}
	}
	return out
}

// snapshot copies the slice so callers can mutate the original while
// ranging.
func snapshot(entries []object.Tracked) []object.Tracked {
	out := make([]object.Tracked, len(entries))
	copy(out, entries)
	return out
}
