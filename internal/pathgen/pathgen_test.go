package pathgen

import (
	"strings"
	"testing"

	"github.com/starford/raido/internal/object"
)

func TestGenerate_SimpleTypes(t *testing.T) {
	cases := []struct {
		obj  object.Fetched
		want string
	}{
		{object.Fetched{Type: object.TypeFunction, ID: 5, Name: "calc_total"}, "functions/calc_total.xs"},
		{object.Fetched{Type: object.TypeTable, ID: 2, Name: "users"}, "tables/users.xs"},
		{object.Fetched{Type: object.TypeTask, ID: 3, Name: "nightly cleanup"}, "tasks/nightly_cleanup.xs"},
		{object.Fetched{Type: object.TypeTableTrigger, ID: 4, Name: "on_insert"}, "tables/triggers/on_insert.xs"},
		{object.Fetched{Type: object.TypeAgent, ID: 6, Name: "support-bot"}, "agents/support_bot.xs"},
		{object.Fetched{Type: object.TypeMCPServer, ID: 7, Name: "docs"}, "mcp_servers/docs.xs"},
	}
	for _, c := range cases {
		got, err := Generate(c.obj, Options{Mode: NamingClean})
		if err != nil {
			t.Fatalf("Generate(%v): %v", c.obj.Type, err)
		}
		if got != c.want {
			t.Errorf("Generate(%s %q) = %q, want %q", c.obj.Type, c.obj.Name, got, c.want)
		}
	}
}

func TestGenerate_Endpoint(t *testing.T) {
	obj := object.Fetched{
		Type: object.TypeAPIEndpoint, ID: 10, Name: "login",
		Verb: "post", HTTPPath: "/auth/login", GroupName: "Auth API",
	}
	got, err := Generate(obj, Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "apis/Auth_API/auth_login_POST.xs" {
		t.Errorf("path = %q", got)
	}
}

func TestGenerate_EndpointWithoutGroupFails(t *testing.T) {
	obj := object.Fetched{Type: object.TypeAPIEndpoint, ID: 10, Name: "login", Verb: "GET"}
	if _, err := Generate(obj, Options{}); err == nil {
		t.Fatal("expected error for endpoint without group")
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	obj := object.Fetched{Type: object.TypeFunction, ID: 5, Name: "calc_total"}
	opts := Options{Mode: NamingClean}
	a, _ := Generate(obj, opts)
	b, _ := Generate(obj, opts)
	if a != b {
		t.Errorf("non-deterministic: %q vs %q", a, b)
	}
}

func TestGenerate_LegacyModePrefixesID(t *testing.T) {
	obj := object.Fetched{Type: object.TypeFunction, ID: 5, Name: "calc_total"}
	clean, _ := Generate(obj, Options{Mode: NamingClean})
	legacy, _ := Generate(obj, Options{Mode: NamingLegacy})
	if legacy != "functions/5_calc_total.xs" {
		t.Errorf("legacy path = %q", legacy)
	}
	if clean == legacy {
		t.Error("naming mode must change the output")
	}
	// Unrelated object unaffected by the mode of another call.
	other, _ := Generate(object.Fetched{Type: object.TypeTable, ID: 9, Name: "users"}, Options{Mode: NamingClean})
	if other != "tables/users.xs" {
		t.Errorf("unrelated path = %q", other)
	}
}

type upperResolver struct{}

func (upperResolver) ResolvePath(obj object.Fetched, def string) string {
	if obj.Type == object.TypeFunction {
		return "custom/" + strings.ToUpper(obj.Name) + ".xs"
	}
	return "" // defer
}

func TestGenerate_ResolverHook(t *testing.T) {
	opts := Options{Resolver: upperResolver{}}
	got, _ := Generate(object.Fetched{Type: object.TypeFunction, ID: 1, Name: "calc"}, opts)
	if got != "custom/CALC.xs" {
		t.Errorf("resolver override = %q", got)
	}
	// Deferred case falls back to the default rule.
	got, _ = Generate(object.Fetched{Type: object.TypeTable, ID: 2, Name: "users"}, opts)
	if got != "tables/users.xs" {
		t.Errorf("deferred path = %q", got)
	}
}

type dashSanitizer struct{}

func (dashSanitizer) SanitizeName(name string) string {
	return strings.ReplaceAll(name, " ", "-")
}

func TestGenerate_SanitizerHook(t *testing.T) {
	got, _ := Generate(object.Fetched{Type: object.TypeTask, ID: 1, Name: "nightly cleanup"},
		Options{Sanitizer: dashSanitizer{}})
	if got != "tasks/nightly-cleanup.xs" {
		t.Errorf("sanitizer override = %q", got)
	}
}

func TestEndpointSignature(t *testing.T) {
	cases := []struct {
		verb, path, want string
	}{
		{"get", "/users/{user_id}", "users_user_id_GET"},
		{"POST", "auth/login", "auth_login_POST"},
		{"DELETE", "/", "root_DELETE"},
	}
	for _, c := range cases {
		if got := EndpointSignature(c.verb, c.path, nil); got != c.want {
			t.Errorf("EndpointSignature(%q, %q) = %q, want %q", c.verb, c.path, got, c.want)
		}
	}
}

func TestSanitizeAndSnakeCase(t *testing.T) {
	if got := Sanitize("My API v2!"); got != "My_API_v2_" {
		t.Errorf("Sanitize = %q", got)
	}
	if got := SnakeCase("My API -- v2!"); got != "my_api_v2" {
		t.Errorf("SnakeCase = %q", got)
	}
}

func TestDirsRootsDeduplicated(t *testing.T) {
	roots := Dirs{}.Roots()
	seen := map[string]bool{}
	for _, r := range roots {
		if seen[r] {
			t.Errorf("duplicate root %q", r)
		}
		seen[r] = true
	}
	if !seen["functions"] || !seen["apis"] || !seen["tables"] || !seen["tasks"] {
		t.Errorf("missing conventional roots: %v", roots)
	}
}
