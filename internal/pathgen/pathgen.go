// Package pathgen maps remote objects to canonical relative file paths.
// Generation is deterministic for a given (object, options) pair so repeated
// syncs never silently relocate unchanged files.
package pathgen

import (
	"fmt"
	"strings"

	"github.com/starford/raido/internal/object"
)

// NamingMode selects the file naming scheme.
type NamingMode string

const (
	// NamingClean names files after the sanitized object name only.
	NamingClean NamingMode = "clean"
	// NamingLegacy prefixes the basename with the remote id.
	NamingLegacy NamingMode = "legacy"
)

// Resolver is an optional hook that can override the generated path for any
// object. Returning the empty string defers to the default rule.
type Resolver interface {
	ResolvePath(obj object.Fetched, defaultPath string) string
}

// Sanitizer is an optional hook that overrides the default name
// sanitization. Returning the empty string defers to the default.
type Sanitizer interface {
	SanitizeName(name string) string
}

// Dirs holds the configurable type directories, relative to the workspace
// root. Zero values fall back to the conventional layout.
type Dirs struct {
	Functions string
	APIs      string
	Tables    string
	Tasks     string
}

func (d Dirs) functions() string { return orDefault(d.Functions, "functions") }
func (d Dirs) apis() string      { return orDefault(d.APIs, "apis") }
func (d Dirs) tables() string    { return orDefault(d.Tables, "tables") }
func (d Dirs) tasks() string     { return orDefault(d.Tasks, "tasks") }

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// For returns the directory that holds objects of the given type.
func (d Dirs) For(t object.Type) string {
	switch t {
	case object.TypeFunction:
		return d.functions()
	case object.TypeAPIEndpoint, object.TypeAPIGroup:
		return d.apis()
	case object.TypeTable:
		return d.tables()
	case object.TypeTableTrigger:
		return d.tables() + "/triggers"
	case object.TypeTask:
		return d.tasks()
	case object.TypeMiddleware:
		return "middleware"
	case object.TypeAddon:
		return "addons"
	case object.TypeAgent:
		return "agents"
	case object.TypeAgentTrigger:
		return "agents/triggers"
	case object.TypeTool:
		return "tools"
	case object.TypeMCPServer:
		return "mcp_servers"
	case object.TypeMCPServerTrigger:
		return "mcp_servers/triggers"
	case object.TypeRealtimeChannel:
		return "realtime"
	case object.TypeRealtimeTrigger:
		return "realtime/triggers"
	default:
		return string(t)
	}
}

// Roots returns the top-level directories that discovery walks for
// untracked files, deduplicated.
func (d Dirs) Roots() []string {
	dirs := []string{
		d.functions(), d.apis(), d.tables(), d.tasks(),
		"middleware", "addons", "agents", "tools", "mcp_servers", "realtime",
	}
	seen := make(map[string]struct{}, len(dirs))
	var out []string
	for _, dir := range dirs {
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		out = append(out, dir)
	}
	return out
}

// Options configures path generation.
type Options struct {
	Dirs      Dirs
	Mode      NamingMode
	Resolver  Resolver  // optional override hook, checked first
	Sanitizer Sanitizer // optional sanitizer hook
}

// Generate returns the canonical relative path for a fetched object.
// An endpoint without a resolved owning group name is an error: its path
// embeds the group's display name.
func Generate(obj object.Fetched, opts Options) (string, error) {
	def, err := defaultPath(obj, opts)
	if err != nil {
		return "", err
	}
	if opts.Resolver != nil {
		if p := opts.Resolver.ResolvePath(obj, def); p != "" {
			return p, nil
		}
	}
	return def, nil
}

func defaultPath(obj object.Fetched, opts Options) (string, error) {
	sanitize := Sanitize
	if opts.Sanitizer != nil {
		sanitize = func(s string) string {
			if out := opts.Sanitizer.SanitizeName(s); out != "" {
				return out
			}
			return Sanitize(s)
		}
	}

	var dir, base string
	switch obj.Type {
	case object.TypeAPIEndpoint:
		if obj.GroupName == "" {
			return "", fmt.Errorf("pathgen: endpoint %q (id %d) has no resolved api group", obj.Name, obj.ID)
		}
		httpPath := obj.HTTPPath
		if httpPath == "" {
			httpPath = obj.Name
		}
		dir = opts.Dirs.For(obj.Type) + "/" + sanitize(obj.GroupName)
		base = EndpointSignature(obj.Verb, httpPath, sanitize)
	case object.TypeAPIGroup:
		dir = opts.Dirs.For(obj.Type) + "/" + sanitize(obj.Name)
		base = "group"
	default:
		dir = opts.Dirs.For(obj.Type)
		base = sanitize(obj.Name)
	}

	if opts.Mode == NamingLegacy {
		base = fmt.Sprintf("%d_%s", obj.ID, base)
	}
	return dir + "/" + base + ".xs", nil
}

// EndpointSignature builds the endpoint basename from an HTTP verb and path:
// placeholder braces are stripped, each segment is sanitized, and the
// uppercased verb is appended. "POST /auth/{user_id}/login" becomes
// "auth_user_id_login_POST".
func EndpointSignature(verb, httpPath string, sanitize func(string) string) string {
	if sanitize == nil {
		sanitize = Sanitize
	}
	var parts []string
	for _, seg := range strings.Split(httpPath, "/") {
		seg = strings.Trim(seg, "{}")
		if seg == "" {
			continue
		}
		parts = append(parts, sanitize(seg))
	}
	sig := strings.Join(parts, "_")
	if sig == "" {
		sig = "root"
	}
	return sig + "_" + strings.ToUpper(verb)
}

// Sanitize is the default name sanitizer: every non-alphanumeric rune
// becomes an underscore.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// SnakeCase lowercases, sanitizes, collapses underscore runs and trims
// leading/trailing underscores. Used for the loosest search-index variants.
func SnakeCase(s string) string {
	sanitized := Sanitize(strings.ToLower(s))
	var b strings.Builder
	b.Grow(len(sanitized))
	prev := false
	for _, r := range sanitized {
		if r == '_' {
			if prev {
				continue
			}
			prev = true
		} else {
			prev = false
		}
		b.WriteRune(r)
	}
	return strings.Trim(b.String(), "_")
}
