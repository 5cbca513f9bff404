package resolve

import (
	"testing"

	"github.com/starford/raido/internal/object"
)

func testIndex() Index {
	return Build([]object.Tracked{
		{ID: 20, Type: object.TypeFunction, Path: "functions/login.xs"},
		{ID: 21, Type: object.TypeTask, Path: "tasks/login.xs"},
		{ID: 3, Type: object.TypeAPIGroup, Path: "apis/auth/group.xs"},
		{ID: 10, Type: object.TypeAPIEndpoint, Path: "apis/auth/login_POST.xs"},
		{ID: 11, Type: object.TypeAPIEndpoint, Path: "apis/main/root_GET.xs"},
		{ID: 30, Type: object.TypeTable, Path: "tables/users.xs"},
		{ID: 22, Type: object.TypeFunction, Path: "functions/helpers/calc_total.xs"},
	})
}

func TestResolve_ExactPathShortCircuits(t *testing.T) {
	idx := testIndex()

	// "login" as a bare name is ambiguous (function and task)...
	if got := Resolve(idx, "login"); len(got) != 2 {
		t.Fatalf("Resolve(login) = %+v, want 2 basename matches", got)
	}

	// ...but an exact path returns exactly that file, nothing else.
	got := Resolve(idx, "functions/login.xs")
	if len(got) != 1 || got[0].Path != "functions/login.xs" || got[0].MatchType != MatchExactPath {
		t.Fatalf("Resolve(functions/login.xs) = %+v", got)
	}

	// The extension is optional for exact-path queries.
	got = Resolve(idx, "functions/login")
	if len(got) != 1 || got[0].MatchType != MatchExactPath {
		t.Fatalf("Resolve(functions/login) = %+v", got)
	}
}

func TestResolve_EndpointByBareSignature(t *testing.T) {
	idx := testIndex()

	got := Resolve(idx, "login_POST")
	if len(got) != 1 {
		t.Fatalf("Resolve(login_POST) = %+v, want exactly the endpoint", got)
	}
	if got[0].Path != "apis/auth/login_POST.xs" || got[0].Type != object.TypeAPIEndpoint {
		t.Errorf("match = %+v", got[0])
	}
}

func TestResolve_SanitizedBasename(t *testing.T) {
	idx := testIndex()

	// Case-normalized lookup lands in the sanitized tier.
	got := Resolve(idx, "Login")
	if len(got) != 2 {
		t.Fatalf("Resolve(Login) = %+v, want both login files", got)
	}
	for _, m := range got {
		if m.MatchType != MatchSanitized {
			t.Errorf("match type = %s, want %s", m.MatchType, MatchSanitized)
		}
	}

	got = Resolve(idx, "calc-total")
	if len(got) != 1 || got[0].Path != "functions/helpers/calc_total.xs" {
		t.Errorf("Resolve(calc-total) = %+v", got)
	}
}

func TestResolve_EndpointSignatureTier(t *testing.T) {
	idx := testIndex()

	// "/_GET" normalizes to the root endpoint's signature root_GET; no
	// earlier tier can produce it.
	got := Resolve(idx, "/_GET")
	if len(got) != 1 || got[0].Path != "apis/main/root_GET.xs" {
		t.Fatalf("Resolve(/_GET) = %+v", got)
	}
	if got[0].MatchType != MatchEndpoint {
		t.Errorf("match type = %s, want %s", got[0].MatchType, MatchEndpoint)
	}
}

func TestResolve_PathSuffix(t *testing.T) {
	idx := testIndex()

	got := Resolve(idx, "auth/login_POST")
	if len(got) != 1 || got[0].Path != "apis/auth/login_POST.xs" {
		t.Fatalf("Resolve(auth/login_POST) = %+v", got)
	}
	if got[0].MatchType != MatchPathSuffix {
		t.Errorf("match type = %s, want %s", got[0].MatchType, MatchPathSuffix)
	}

	got = Resolve(idx, "helpers/calc_total")
	if len(got) != 1 || got[0].Path != "functions/helpers/calc_total.xs" {
		t.Errorf("Resolve(helpers/calc_total) = %+v", got)
	}

	// Suffix matching is whole-segment: a partial segment never matches.
	if got := Resolve(idx, "ons/login"); len(got) != 0 {
		t.Errorf("Resolve(ons/login) = %+v, want none", got)
	}
}

func TestResolve_NoMatchAndEmpty(t *testing.T) {
	idx := testIndex()
	if got := Resolve(idx, "does_not_exist"); len(got) != 0 {
		t.Errorf("Resolve(does_not_exist) = %+v", got)
	}
	if got := Resolve(idx, "  "); got != nil {
		t.Errorf("Resolve(blank) = %+v", got)
	}
}

func TestResolveTable(t *testing.T) {
	idx := testIndex()

	if p, ok := ResolveTable(idx, "users"); !ok || p != "tables/users.xs" {
		t.Errorf("ResolveTable(users) = %q, %v", p, ok)
	}
	// Loose match through snake-case normalization.
	if p, ok := ResolveTable(idx, "Users"); !ok || p != "tables/users.xs" {
		t.Errorf("ResolveTable(Users) = %q, %v", p, ok)
	}
	if _, ok := ResolveTable(idx, "orders"); ok {
		t.Error("ResolveTable(orders) should miss")
	}
}

func TestResolveFunction(t *testing.T) {
	idx := testIndex()

	if p, ok := ResolveFunction(idx, "login"); !ok || p != "functions/login.xs" {
		t.Errorf("ResolveFunction(login) = %q, %v", p, ok)
	}
	if p, ok := ResolveFunction(idx, "helpers/calc_total"); !ok || p != "functions/helpers/calc_total.xs" {
		t.Errorf("ResolveFunction(helpers/calc_total) = %q, %v", p, ok)
	}
	// A bare name matches the trailing path segment of a nested function.
	if p, ok := ResolveFunction(idx, "calc_total"); !ok || p != "functions/helpers/calc_total.xs" {
		t.Errorf("ResolveFunction(calc_total) = %q, %v", p, ok)
	}
	if _, ok := ResolveFunction(idx, "missing"); ok {
		t.Error("ResolveFunction(missing) should miss")
	}
}
