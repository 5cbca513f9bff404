// Package script provides lightweight keyword matching over raw XanoScript
// source: sniffing the declared object type from the leading token, and
// extracting in-source table/function references. It deliberately does not
// parse the language; full parsing belongs to the external toolchain.
package script

import (
	"regexp"
	"strings"

	"github.com/starford/raido/internal/object"
)

// sniffRule maps a leading declaration keyword to an object type.
// Rules are evaluated top to bottom; longer keywords sort before their
// prefixes so "table_trigger" never matches as "table".
type sniffRule struct {
	keyword string
	typ     object.Type
}

var sniffRules = []sniffRule{
	{"query", object.TypeAPIEndpoint},
	{"api_group", object.TypeAPIGroup},
	{"function", object.TypeFunction},
	{"table_trigger", object.TypeTableTrigger},
	{"table", object.TypeTable},
	{"task", object.TypeTask},
	{"middleware", object.TypeMiddleware},
	{"addon", object.TypeAddon},
	{"agent_trigger", object.TypeAgentTrigger},
	{"agent", object.TypeAgent},
	{"tool", object.TypeTool},
	{"mcp_server_trigger", object.TypeMCPServerTrigger},
	{"mcp_server", object.TypeMCPServer},
	{"channel", object.TypeRealtimeChannel},
	{"realtime_trigger", object.TypeRealtimeTrigger},
	{"trigger", object.TypeTableTrigger},
}

// Sniff infers the object type from the first keyword token of the first
// non-comment, non-blank line. It returns object.TypeUnknown when no rule
// matches so callers must handle the miss explicitly.
func Sniff(data []byte) object.Type {
	line := firstSignificantLine(string(data))
	if line == "" {
		return object.TypeUnknown
	}
	token := line
	if i := strings.IndexAny(line, " \t({"); i >= 0 {
		token = line[:i]
	}
	for _, r := range sniffRules {
		if token == r.keyword {
			return r.typ
		}
	}
	return object.TypeUnknown
}

func firstSignificantLine(src string) string {
	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "#") {
			continue
		}
		return trimmed
	}
	return ""
}

var (
	tableRefRe = regexp.MustCompile(`\bdb\.(?:get|query|add|edit|del|delete|has|patch)\s+([A-Za-z_][A-Za-z0-9_]*)`)
	funcRefRe  = regexp.MustCompile(`\bfunction\.run\s+"([^"]+)"`)
)

// Refs holds the in-source references extracted from one script.
type Refs struct {
	Tables    []string
	Functions []string
}

// ExtractRefs returns deduplicated table and function references from raw
// script bytes, in order of first appearance.
func ExtractRefs(data []byte) Refs {
	src := string(data)
	return Refs{
		Tables:    dedupMatches(tableRefRe.FindAllStringSubmatch(src, -1)),
		Functions: dedupMatches(funcRefRe.FindAllStringSubmatch(src, -1)),
	}
}

func dedupMatches(matches [][]string) []string {
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		ref := strings.TrimSpace(m[1])
		if ref == "" {
			continue
		}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	}
	return out
}
