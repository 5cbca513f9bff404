package resolve

import (
	"path/filepath"
	"testing"

	"github.com/starford/raido/internal/object"
)

func TestNewEntry_Variants(t *testing.T) {
	e := NewEntry(object.Tracked{Type: object.TypeAPIEndpoint, Path: "apis/auth/login_POST.xs"})
	if e.Basename != "login_POST" {
		t.Errorf("Basename = %q", e.Basename)
	}
	if e.SanitizedBase != "login_POST" || e.SnakeBase != "login_post" {
		t.Errorf("sanitized = %q, snake = %q", e.SanitizedBase, e.SnakeBase)
	}
	if e.PathNoExt != "apis/auth/login_POST" || e.SnakePath != "apis/auth/login_post" {
		t.Errorf("pathNoExt = %q, snakePath = %q", e.PathNoExt, e.SnakePath)
	}
}

func TestBuild_Lookups(t *testing.T) {
	idx := Build([]object.Tracked{
		{Type: object.TypeFunction, Path: "functions/calc.xs"},
		{Type: object.TypeTable, Path: "tables/users.xs"},
	})

	if _, ok := idx.ByPath("functions/calc.xs"); !ok {
		t.Error("ByPath miss for tracked path")
	}
	if got := idx.ByBasename("calc"); len(got) != 1 {
		t.Errorf("ByBasename(calc) = %+v", got)
	}
	if got := idx.BySanitized("calc"); len(got) != 1 {
		t.Errorf("BySanitized(calc) = %+v", got)
	}
	if p := idx.Tables()["users"]; p != "tables/users.xs" {
		t.Errorf("Tables() = %v", idx.Tables())
	}
	if fns := idx.Functions(); len(fns) != 1 || fns[0] != "functions/calc.xs" {
		t.Errorf("Functions() = %v", fns)
	}
}

func TestCache_RoundTrip(t *testing.T) {
	tracked := []object.Tracked{
		{ID: 20, Type: object.TypeFunction, Path: "functions/login.xs"},
		{ID: 10, Type: object.TypeAPIEndpoint, Path: "apis/auth/login_POST.xs"},
		{ID: 30, Type: object.TypeTable, Path: "tables/users.xs"},
	}
	file := filepath.Join(t.TempDir(), ".raido", "search-index.json")

	if err := SaveCache(file, tracked); err != nil {
		t.Fatalf("SaveCache: %v", err)
	}
	loaded, err := LoadCache(file)
	if err != nil {
		t.Fatalf("LoadCache: %v", err)
	}

	// Loaded index answers exactly like a live build.
	live := Build(tracked)
	for _, q := range []string{"login", "login_POST", "apis/auth/login_POST.xs", "auth/login_POST"} {
		want := Resolve(live, q)
		got := Resolve(loaded, q)
		if len(got) != len(want) {
			t.Fatalf("Resolve(%q): cache %+v, live %+v", q, got, want)
		}
		for i := range got {
			if got[i] != want[i] {
				t.Errorf("Resolve(%q)[%d]: cache %+v, live %+v", q, i, got[i], want[i])
			}
		}
	}
	if p, ok := ResolveTable(loaded, "users"); !ok || p != "tables/users.xs" {
		t.Errorf("ResolveTable over cache = %q, %v", p, ok)
	}
}

func TestLoadCache_Missing(t *testing.T) {
	if _, err := LoadCache(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("LoadCache on a missing file should error")
	}
}

func TestOpen_FallsBackToBuild(t *testing.T) {
	tracked := []object.Tracked{{Type: object.TypeFunction, Path: "functions/calc.xs"}}
	idx := Open(filepath.Join(t.TempDir(), "absent.json"), tracked)
	if _, ok := idx.ByPath("functions/calc.xs"); !ok {
		t.Error("fallback index missing tracked entry")
	}
}
