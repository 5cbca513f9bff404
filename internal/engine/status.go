package engine

import (
	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/object"
	"github.com/starford/raido/internal/store"
)

// FileStatus is the recomputed live state of one workspace file.
type FileStatus struct {
	Path  string      `json:"path"`
	Type  object.Type `json:"type,omitempty"`
	ID    int64       `json:"id,omitempty"`
	State string      `json:"state"`
}

// StatusResult summarizes workspace drift.
type StatusResult struct {
	Files     []FileStatus `json:"files"`
	Synced    int          `json:"synced"`
	Modified  int          `json:"modified"`
	Untracked int          `json:"untracked"`
	Orphans   int          `json:"orphans"`
}

// Status recomputes drift for every tracked entry and discovers untracked
// .xs files under the type directories. The persisted status field is
// ignored: live hashes are authoritative.
func (e *Engine) Status() (*StatusResult, error) {
	entries, err := e.store.Load()
	if err != nil {
		return nil, err
	}

	result := &StatusResult{}
	for _, t := range entries {
		fs := FileStatus{Path: t.Path, Type: t.Type, ID: t.ID}
		switch {
		case !e.fs.Exists(t.Path):
			fs.State = object.StateOrphan
			result.Orphans++
		default:
			data, err := e.fs.Read(t.Path)
			if err != nil || !checksum.Matches(data, t.SHA256) {
				fs.State = object.StateModified
				result.Modified++
			} else {
				fs.State = object.StateSynced
				result.Synced++
			}
		}
		result.Files = append(result.Files, fs)
	}

	for _, dir := range e.paths.Dirs.Roots() {
		metas, err := e.fs.List(dir)
		if err != nil {
			continue
		}
		for _, m := range metas {
			if store.FindEntry(entries, m.Path) != nil {
				continue
			}
			result.Files = append(result.Files, FileStatus{Path: m.Path, State: object.StateUntracked})
			result.Untracked++
		}
	}

	return result, nil
}
