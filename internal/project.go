package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/starford/raido/internal/apperr"
)

// MetaDir is the workspace metadata directory created by init and looked
// up by project discovery.
const MetaDir = ".raido"

// Metadata file names inside MetaDir.
const (
	ConfigFile    = "config.yaml"
	ObjectsFile   = "objects.json"
	IndexFile     = "search-index.json"
	GroupsFile    = "groups.json"
	EndpointsFile = "endpoints.json"
)

// Project locates a workspace and derives its metadata file paths.
type Project struct {
	Root string
}

// FindProject walks from dir toward the filesystem root looking for a
// directory containing .raido/config.yaml. Not finding one is a hard
// error: every command except init requires a workspace.
func FindProject(dir string) (*Project, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("project: resolve %s: %w", dir, err)
	}
	for {
		marker := filepath.Join(dir, MetaDir, ConfigFile)
		if info, err := os.Stat(marker); err == nil && !info.IsDir() {
			return &Project{Root: dir}, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, fmt.Errorf("project: no %s/%s in %s or any parent: %w",
				MetaDir, ConfigFile, dir, apperr.ErrNoProject)
		}
		dir = parent
	}
}

// ConfigPath returns the workspace configuration file path.
func (p *Project) ConfigPath() string { return p.metaPath(ConfigFile) }

// ObjectsPath returns the tracked-object store path.
func (p *Project) ObjectsPath() string { return p.metaPath(ObjectsFile) }

// IndexPath returns the persisted search-index path.
func (p *Project) IndexPath() string { return p.metaPath(IndexFile) }

// GroupsPath returns the api-group name cache path.
func (p *Project) GroupsPath() string { return p.metaPath(GroupsFile) }

// EndpointsPath returns the endpoint signature cache path.
func (p *Project) EndpointsPath() string { return p.metaPath(EndpointsFile) }

func (p *Project) metaPath(name string) string {
	return filepath.Join(p.Root, MetaDir, name)
}
