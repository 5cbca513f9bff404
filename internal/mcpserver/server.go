// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the workspace to LLM integrations via stdio transport. All tools
// are read-only over local state; the remote is never called.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/raido/internal/engine"
	"github.com/starford/raido/internal/object"
	"github.com/starford/raido/internal/resolve"
)

// Server wraps the MCP server with the workspace tools.
type Server struct {
	mcp *server.MCPServer
	eng *engine.Engine
}

// New creates a new MCP server with all workspace tools registered.
func New(eng *engine.Engine) *Server {
	s := &Server{eng: eng}

	s.mcp = server.NewMCPServer(
		"Raido",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("resolve_identifier",
		mcp.WithDescription("Resolve a loose identifier (name, path, endpoint signature) "+
			"to tracked workspace files using the layered matching strategy."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Identifier to resolve (e.g. calc_total, apis/auth/login_POST)")),
	), s.resolveIdentifier)

	s.mcp.AddTool(mcp.NewTool("workspace_status",
		mcp.WithDescription("Report workspace drift: synced, modified, untracked and orphaned files."),
	), s.workspaceStatus)

	s.mcp.AddTool(mcp.NewTool("read_object",
		mcp.WithDescription("Read the XanoScript source of a tracked workspace file."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the file (e.g. functions/calc_total.xs)")),
	), s.readObject)

	s.mcp.AddTool(mcp.NewTool("list_objects",
		mcp.WithDescription("List tracked workspace objects, optionally filtered by type "+
			"(function, api_endpoint, api_group, table, task, agent, tool, ...)."),
		mcp.WithString("type", mcp.Description("Optional object type filter (empty for all)")),
	), s.listObjects)

	s.mcp.AddTool(mcp.NewTool("get_script_contract",
		mcp.WithDescription("Returns the canonical XanoScript workspace contract. "+
			"Call this before writing or referencing workspace files."),
	), s.getScriptContract)

	// Resource: script format contract.
	s.mcp.AddResource(
		mcp.NewResource("raido://script-format", "XanoScript Workspace Contract",
			mcp.WithResourceDescription("Canonical XanoScript file conventions for this workspace."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readScriptFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) resolveIdentifier(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	idx, err := s.index()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	matches := resolve.Resolve(idx, query)
	if len(matches) == 0 {
		return mcp.NewToolResultText("no matches"), nil
	}
	out, _ := json.MarshalIndent(matches, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) workspaceStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.eng.Status()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readObject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.eng.FS().Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) listObjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typ := ""
	if v, err := req.RequireString("type"); err == nil {
		typ = v
	}

	entries, err := s.eng.Store().Load()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var lines []string
	for _, t := range entries {
		if typ != "" && t.Type != object.Type(typ) {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s\t%s\t%d", t.Path, t.Type, t.ID))
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("no tracked objects"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getScriptContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ScriptFormatContract), nil
}

func (s *Server) readScriptFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "raido://script-format",
			MIMEType: "text/markdown",
			Text:     ScriptFormatContract,
		},
	}, nil
}

func (s *Server) index() (resolve.Index, error) {
	entries, err := s.eng.Store().Load()
	if err != nil {
		return nil, err
	}
	return resolve.Open(s.eng.IndexFile(), entries), nil
}
