package internal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/raido/internal/apperr"
)

func writeMarker(t *testing.T, root string) {
	t.Helper()
	dir := filepath.Join(root, MetaDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), []byte("app:\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFindProject_WalksUp(t *testing.T) {
	root := t.TempDir()
	writeMarker(t, root)
	nested := filepath.Join(root, "apis", "auth")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	p, err := FindProject(nested)
	if err != nil {
		t.Fatalf("FindProject: %v", err)
	}
	if p.Root != root {
		t.Errorf("root = %q, want %q", p.Root, root)
	}
	if p.ObjectsPath() != filepath.Join(root, MetaDir, ObjectsFile) {
		t.Errorf("objects path = %q", p.ObjectsPath())
	}
}

func TestFindProject_NotFound(t *testing.T) {
	_, err := FindProject(t.TempDir())
	if !errors.Is(err, apperr.ErrNoProject) {
		t.Fatalf("err = %v, want ErrNoProject", err)
	}
}
