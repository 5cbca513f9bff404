package resolve

import (
	"path"
	"regexp"
	"strings"

	"github.com/starford/raido/internal/object"
	"github.com/starford/raido/internal/pathgen"
	"github.com/starford/raido/internal/storage"
)

// Match types, in tier order.
const (
	MatchExactPath  = "exact_path"
	MatchBasename   = "basename"
	MatchSanitized  = "sanitized_basename"
	MatchEndpoint   = "endpoint_signature"
	MatchPathSuffix = "path_suffix"
)

// Match is one resolution hit.
type Match struct {
	Path      string      `json:"path"`
	MatchType string      `json:"match_type"`
	Name      string      `json:"name"`
	Type      object.Type `json:"type"`
}

var endpointQueryRe = regexp.MustCompile(`^(.+)_(?i:GET|POST|PUT|DELETE|PATCH)$`)

// Resolve runs the layered matching strategy: the first tier that produces
// results wins and lower tiers are not attempted. Results are deduplicated
// by path.
func Resolve(idx Index, query string) []Match {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	// Tier 1: exact tracked path, with or without the extension.
	if e, ok := idx.ByPath(query); ok {
		return []Match{toMatch(e, MatchExactPath)}
	}
	if !strings.HasSuffix(query, storage.ScriptExt) {
		if e, ok := idx.ByPath(query + storage.ScriptExt); ok {
			return []Match{toMatch(e, MatchExactPath)}
		}
	}

	// Tier 2: exact basename (extension stripped).
	base := strings.TrimSuffix(query, storage.ScriptExt)
	if out := toMatches(idx.ByBasename(base), MatchBasename); len(out) > 0 {
		return out
	}

	// Tier 3: sanitized / snake-cased basename.
	var hits []Entry
	hits = append(hits, idx.BySanitized(pathgen.Sanitize(base))...)
	if snake := pathgen.SnakeCase(base); snake != pathgen.Sanitize(base) {
		hits = append(hits, idx.BySanitized(snake)...)
	}
	if out := toMatches(hits, MatchSanitized); len(out) > 0 {
		return out
	}

	// Tier 4: endpoint-signature pattern {path}_{VERB}.
	if m := endpointQueryRe.FindStringSubmatch(base); m != nil {
		verb := base[strings.LastIndex(base, "_")+1:]
		sig := pathgen.EndpointSignature(verb, m[1], nil)
		hits = idx.ByBasename(sig)
		hits = append(hits, idx.BySanitized(pathgen.Sanitize(sig))...)
		hits = append(hits, idx.BySanitized(pathgen.SnakeCase(sig))...)
		if out := toMatches(hits, MatchEndpoint); len(out) > 0 {
			return out
		}
	}

	// Tier 5: path-suffix, only for queries that look like paths.
	if strings.Contains(query, "/") {
		plain := base
		sanitized := sanitizePath(base, pathgen.Sanitize)
		snake := sanitizePath(base, pathgen.SnakeCase)
		var out []Match
		for _, e := range idx.All() {
			if hasPathSuffix(e.PathNoExt, plain) ||
				hasPathSuffix(e.SanitizedPath, sanitized) ||
				hasPathSuffix(e.SnakePath, snake) {
				out = append(out, toMatch(e, MatchPathSuffix))
			}
		}
		return dedup(out)
	}

	return nil
}

// hasPathSuffix matches whole trailing segments: "s/login" must not match
// "apis/login".
func hasPathSuffix(p, suffix string) bool {
	if suffix == "" {
		return false
	}
	if p == suffix {
		return true
	}
	return strings.HasSuffix(p, "/"+suffix)
}

// ResolveTable maps a db.<op> table reference to a tracked table file:
// exact basename first, then sanitized comparison.
func ResolveTable(idx Index, name string) (string, bool) {
	tables := idx.Tables()
	if p, ok := tables[name]; ok {
		return p, true
	}
	want := pathgen.SnakeCase(name)
	for base, p := range tables {
		if pathgen.SnakeCase(base) == want {
			return p, true
		}
	}
	return "", false
}

// ResolveFunction maps a function.run reference to a tracked function file:
// path-suffix match first, then basename-only fallback.
func ResolveFunction(idx Index, name string) (string, bool) {
	ref := strings.TrimSuffix(name, storage.ScriptExt)
	sanitized := sanitizePath(ref, pathgen.Sanitize)
	snake := sanitizePath(ref, pathgen.SnakeCase)
	for _, p := range idx.Functions() {
		noExt := strings.TrimSuffix(p, storage.ScriptExt)
		if hasPathSuffix(noExt, ref) ||
			hasPathSuffix(sanitizePath(noExt, pathgen.Sanitize), sanitized) ||
			hasPathSuffix(sanitizePath(noExt, pathgen.SnakeCase), snake) {
			return p, true
		}
	}
	// Basename-only fallback.
	base := path.Base(ref)
	want := pathgen.SnakeCase(base)
	for _, p := range idx.Functions() {
		fnBase := strings.TrimSuffix(path.Base(p), storage.ScriptExt)
		if fnBase == base || pathgen.SnakeCase(fnBase) == want {
			return p, true
		}
	}
	return "", false
}

func toMatch(e Entry, matchType string) Match {
	return Match{Path: e.Path, MatchType: matchType, Name: e.Name, Type: e.Type}
}

func toMatches(entries []Entry, matchType string) []Match {
	var out []Match
	for _, e := range entries {
		out = append(out, toMatch(e, matchType))
	}
	return dedup(out)
}

func dedup(matches []Match) []Match {
	seen := make(map[string]struct{}, len(matches))
	out := matches[:0]
	for _, m := range matches {
		if _, ok := seen[m.Path]; ok {
			continue
		}
		seen[m.Path] = struct{}{}
		out = append(out, m)
	}
	return out
}
