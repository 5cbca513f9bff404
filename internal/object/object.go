// Package object defines the domain types for Raido: the fixed set of
// remote object kinds, the ephemeral fetched-object record, and the
// tracked-object record persisted in the object store.
package object

import "fmt"

// Type identifies the kind of a remote workspace object.
type Type string

// All object types the remote workspace can expose.
const (
	TypeFunction         Type = "function"
	TypeAPIEndpoint      Type = "api_endpoint"
	TypeAPIGroup         Type = "api_group"
	TypeTable            Type = "table"
	TypeTableTrigger     Type = "table_trigger"
	TypeTask             Type = "task"
	TypeMiddleware       Type = "middleware"
	TypeAddon            Type = "addon"
	TypeAgent            Type = "agent"
	TypeAgentTrigger     Type = "agent_trigger"
	TypeTool             Type = "tool"
	TypeMCPServer        Type = "mcp_server"
	TypeMCPServerTrigger Type = "mcp_server_trigger"
	TypeRealtimeChannel  Type = "realtime_channel"
	TypeRealtimeTrigger  Type = "realtime_trigger"
	TypeUnknown          Type = ""
)

// Types lists every known object type in a stable order. Fetch and
// discovery loops iterate this slice so behaviour is deterministic.
var Types = []Type{
	TypeAPIGroup,
	TypeAPIEndpoint,
	TypeFunction,
	TypeTable,
	TypeTableTrigger,
	TypeTask,
	TypeMiddleware,
	TypeAddon,
	TypeAgent,
	TypeAgentTrigger,
	TypeTool,
	TypeMCPServer,
	TypeMCPServerTrigger,
	TypeRealtimeChannel,
	TypeRealtimeTrigger,
}

// Valid reports whether t is one of the known object types.
func (t Type) Valid() bool {
	for _, k := range Types {
		if t == k {
			return true
		}
	}
	return false
}

// Sync states recorded on tracked objects. These are informational only;
// authoritative state is always recomputed from live file hashes.
const (
	StateSynced    = "synced"
	StateModified  = "modified"
	StateUntracked = "untracked"
	StateOrphan    = "orphan"
)

// Fetched is an ephemeral record produced by a bulk remote fetch. It is
// never persisted; the path generator and diff engine consume it.
type Fetched struct {
	Type   Type   `json:"type"`
	ID     int64  `json:"id"`
	GUID   string `json:"guid,omitempty"` // canonical external identifier
	Name   string `json:"name"`
	Script string `json:"script"` // decoded XanoScript source

	// Endpoint-only fields.
	Verb      string `json:"verb,omitempty"`
	HTTPPath  string `json:"http_path,omitempty"`
	GroupID   int64  `json:"group_id,omitempty"`
	GroupName string `json:"group_name,omitempty"`
}

// Key returns the (type, id) identity key used by the diff engine.
func (f Fetched) Key() string {
	return fmt.Sprintf("%s:%d", f.Type, f.ID)
}

// Tracked is one row of the object store: a remote object materialized as
// a local file, with the baseline hash recorded at the last successful sync.
type Tracked struct {
	ID       int64  `json:"id"`
	Type     Type   `json:"type"`
	Path     string `json:"path"`
	SHA256   string `json:"sha256"`
	Original string `json:"original,omitempty"` // base64 of last-synced content
	Status   string `json:"status,omitempty"`
}

// Key returns the (type, id) identity key, matching Fetched.Key.
func (t Tracked) Key() string {
	return fmt.Sprintf("%s:%d", t.Type, t.ID)
}
