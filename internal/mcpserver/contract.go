package mcpserver

// ScriptFormatContract describes the XanoScript file conventions that
// LLM consumers should follow when reading or referencing workspace files.
const ScriptFormatContract = `# Raido XanoScript Workspace Contract

Every workspace file managed by Raido MUST follow these conventions.

## Layout

` + "```" + `
functions/            one .xs file per function
apis/<group>/group.xs the API group declaration
apis/<group>/         one .xs file per endpoint in that group
tables/               one .xs file per table
tables/triggers/      table triggers
tasks/                background tasks
middleware/           middleware
addons/               addons
agents/               agents (agents/triggers/ for their triggers)
tools/                agent tools
mcp_servers/          MCP servers (mcp_servers/triggers/ for their triggers)
realtime/             realtime channels (realtime/triggers/ for their triggers)
` + "```" + `

## Rules

1. **The leading keyword declares the type.** The first non-comment line
   starts with the object keyword: ` + "`" + `function` + "`" + `, ` + "`" + `query` + "`" + ` (API endpoint),
   ` + "`" + `api_group` + "`" + `, ` + "`" + `table` + "`" + `, ` + "`" + `table_trigger` + "`" + `, ` + "`" + `task` + "`" + `, ` + "`" + `middleware` + "`" + `,
   ` + "`" + `addon` + "`" + `, ` + "`" + `agent` + "`" + `, ` + "`" + `agent_trigger` + "`" + `, ` + "`" + `tool` + "`" + `, ` + "`" + `mcp_server` + "`" + `,
   ` + "`" + `mcp_server_trigger` + "`" + `, ` + "`" + `channel` + "`" + ` or ` + "`" + `realtime_trigger` + "`" + `.
2. **Endpoint files are named by signature.** An endpoint file basename is
   the HTTP path with placeholder braces stripped, segments joined by
   underscores, and the uppercased verb appended: ` + "`" + `POST /auth/login` + "`" + `
   becomes ` + "`" + `login_POST.xs` + "`" + ` inside ` + "`" + `apis/auth/` + "`" + `. The root path becomes
   ` + "`" + `root_<VERB>.xs` + "`" + `.
3. **File paths** end with ` + "`" + `.xs` + "`" + ` and use forward slashes.
4. **Table references** use ` + "`" + `db.<op> <table>` + "`" + ` (get, query, add, edit,
   del, delete, has, patch). **Function references** use
   ` + "`" + `function.run "<name>"` + "`" + `. Both are resolvable via the
   resolve_identifier tool.
5. **Comments** start with ` + "`" + `//` + "`" + ` or ` + "`" + `#` + "`" + `.
6. **Encoding** is UTF-8 with a trailing newline.
7. **Do not edit ` + "`" + `.raido/` + "`" + ` metadata by hand.** The object store and
   search index are regenerated by sync, push and pull.

## Example

` + "```" + `xanoscript
// Computes the order total for a user.
function calc_total {
  db.query orders
  function.run "helpers/apply_discount"
}
` + "```" + `
`
