package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/object"
	"github.com/starford/raido/internal/remote"
	"github.com/starford/raido/internal/resolve"
)

// fetchPerPage caps page size on bulk listing. The remote accepts up to
// 1000 items per page.
const fetchPerPage = 1000

// FetchResult is the output of one bulk remote fetch.
type FetchResult struct {
	Objects []object.Fetched
	// Groups maps api-group display names to their canonical identifiers.
	Groups map[string]string
	// Endpoints maps "VERB path" signatures to canonical identifiers.
	Endpoints map[string]string
}

// FetchAll retrieves every remote object collection. API groups are
// resolved first so endpoint paths can embed the owning group's display
// name. Entries with no extractable script source are skipped.
func (e *Engine) FetchAll(ctx context.Context) (*FetchResult, error) {
	result := &FetchResult{
		Groups:    make(map[string]string),
		Endpoints: make(map[string]string),
	}

	groups, err := e.listAll(ctx, object.TypeAPIGroup, remote.Options{})
	if err != nil {
		return nil, fmt.Errorf("engine: fetch api groups: %w", err)
	}
	groupNames := make(map[int64]string, len(groups))
	for _, g := range groups {
		groupNames[g.ID] = g.Name
		result.Groups[g.Name] = g.GUID
		if g.HasScript {
			result.Objects = append(result.Objects, toFetched(object.TypeAPIGroup, g, ""))
		}
	}

	for _, g := range groups {
		endpoints, err := e.listAll(ctx, object.TypeAPIEndpoint, remote.Options{GroupID: g.ID})
		if err != nil {
			return nil, fmt.Errorf("engine: fetch endpoints of group %q: %w", g.Name, err)
		}
		for _, ep := range endpoints {
			result.Endpoints[ep.Verb+" "+ep.HTTPPath] = ep.GUID
			if !ep.HasScript {
				e.log.Debug("fetch: skipping endpoint without source",
					slog.String("name", ep.Name), slog.Int64("id", ep.ID))
				continue
			}
			f := toFetched(object.TypeAPIEndpoint, ep, groupNames[g.ID])
			f.GroupID = g.ID
			result.Objects = append(result.Objects, f)
		}
	}

	for _, typ := range object.Types {
		if typ == object.TypeAPIGroup || typ == object.TypeAPIEndpoint {
			continue
		}
		objs, err := e.listAll(ctx, typ, remote.Options{})
		if err != nil {
			return nil, fmt.Errorf("engine: fetch %s: %w", typ, err)
		}
		for _, o := range objs {
			if !o.HasScript {
				e.log.Debug("fetch: skipping object without source",
					slog.String("type", string(typ)), slog.Int64("id", o.ID))
				continue
			}
			result.Objects = append(result.Objects, toFetched(typ, o, ""))
		}
	}

	return result, nil
}

// listAll paginates one collection until the remote reports no next page.
func (e *Engine) listAll(ctx context.Context, typ object.Type, opts remote.Options) ([]remote.Object, error) {
	var out []remote.Object
	for page := 1; ; page++ {
		objs, more, err := e.client.List(ctx, typ, page, fetchPerPage, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, objs...)
		if !more {
			return out, nil
		}
	}
}

func toFetched(typ object.Type, o remote.Object, groupName string) object.Fetched {
	return object.Fetched{
		Type:      typ,
		ID:        o.ID,
		GUID:      o.GUID,
		Name:      o.Name,
		Script:    o.Script,
		Verb:      o.Verb,
		HTTPPath:  o.HTTPPath,
		GroupID:   o.GroupID,
		GroupName: groupName,
	}
}

// Diff classifies fetched objects against the tracked set, keyed by
// (type, id). It touches neither network nor filesystem and is idempotent.
type Diff struct {
	New     []object.Fetched
	Updated []object.Fetched
	Removed []object.Tracked
}

// DiffObjects computes the classification. An object is updated when its
// freshly hashed source differs from the stored baseline hash.
func DiffObjects(existing []object.Tracked, fetched []object.Fetched) Diff {
	byKey := make(map[string]object.Tracked, len(existing))
	for _, t := range existing {
		byKey[t.Key()] = t
	}

	var d Diff
	seen := make(map[string]struct{}, len(fetched))
	for _, f := range fetched {
		seen[f.Key()] = struct{}{}
		prev, ok := byKey[f.Key()]
		if !ok {
			d.New = append(d.New, f)
			continue
		}
		if checksum.Sum([]byte(f.Script)) != prev.SHA256 {
			d.Updated = append(d.Updated, f)
		}
	}
	for _, t := range existing {
		if _, ok := seen[t.Key()]; !ok {
			d.Removed = append(d.Removed, t)
		}
	}
	return d
}

// writeCaches persists the search index and the group/endpoint caches so
// later lookups and live API calls avoid refetching metadata.
func (e *Engine) writeCaches(fetch *FetchResult, tracked []object.Tracked) {
	if e.indexFile != "" {
		if err := resolve.SaveCache(e.indexFile, tracked); err != nil {
			e.log.Warn("cache: search index write failed", slog.String("error", err.Error()))
		}
	}
	if fetch == nil {
		return
	}
	if e.groupsFile != "" {
		if err := writeJSONFile(e.groupsFile, fetch.Groups); err != nil {
			e.log.Warn("cache: groups write failed", slog.String("error", err.Error()))
		}
	}
	if e.endpointsFile != "" {
		if err := writeJSONFile(e.endpointsFile, fetch.Endpoints); err != nil {
			e.log.Warn("cache: endpoints write failed", slog.String("error", err.Error()))
		}
	}
}

func writeJSONFile(file string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return err
	}
	return os.WriteFile(file, data, 0o644)
}
