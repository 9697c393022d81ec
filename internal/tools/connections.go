package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/pipewarden/pipewarden/internal/config"
	"github.com/pipewarden/pipewarden/internal/warehouse"
)

// ConnectionsTool handles the list_connections MCP tool: it shows the
// warehouse connections defined in the site config so the user can pick
// one by its real name.
type ConnectionsTool struct {
	site *config.SiteConfig
}

// NewConnectionsTool creates a ConnectionsTool over the site config.
func NewConnectionsTool(site *config.SiteConfig) *ConnectionsTool {
	return &ConnectionsTool{site: site}
}

// Definition returns the MCP tool definition for registration.
func (t *ConnectionsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_connections",
		mcp.WithDescription(
			"List the warehouse connections configured on this machine. Show these to "+
				"the user and let them pick — connection names in generated files must "+
				"be user-confirmed, never invented.",
		),
	)
}

// Handle processes the list_connections tool call.
func (t *ConnectionsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names := t.site.ConnectionNames()
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("# Configured Connections\n\n")
	if len(names) == 0 {
		sb.WriteString("_No connections configured. Ask the user to add one to the site config file._\n")
		return mcp.NewToolResultText(sb.String()), nil
	}
	for _, name := range names {
		fmt.Fprintf(&sb, "- **%s** (%s)\n", name, t.site.Connections[name].Type)
	}
	sb.WriteString("\nInitialize one with `connect_warehouse` before querying.\n")
	return mcp.NewToolResultText(sb.String()), nil
}

// ConnectTool handles the connect_warehouse MCP tool: it opens a named
// connection from the site config and makes it the active one.
type ConnectTool struct {
	site    *config.SiteConfig
	manager *warehouse.Manager
}

// NewConnectTool creates a ConnectTool over the site config and the
// connection manager.
func NewConnectTool(site *config.SiteConfig, manager *warehouse.Manager) *ConnectTool {
	return &ConnectTool{site: site, manager: manager}
}

// Definition returns the MCP tool definition for registration.
func (t *ConnectTool) Definition() mcp.Tool {
	return mcp.NewTool("connect_warehouse",
		mcp.WithDescription(
			"Open one of the configured warehouse connections and make it active. "+
				"Required before run_query, describe_table or table_suggestions. "+
				"Reconnecting to an already-open connection just switches to it.",
		),
		mcp.WithString("connection",
			mcp.Required(),
			mcp.Description("Name of a connection from list_connections."),
		),
	)
}

// Handle processes the connect_warehouse tool call.
func (t *ConnectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := strings.TrimSpace(req.GetString("connection", ""))
	if name == "" {
		return mcp.NewToolResultError("'connection' is required"), nil
	}

	conn, ok := t.site.Connections[name]
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no connection named %q in the site config — call list_connections", name)), nil
	}

	wh, err := t.manager.Connect(name, conn.Type, conn.DSN)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("connecting to %q failed: %v", name, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Connected to **%s** (%s). It is now the active connection.\n\nRemember: before using this connection name in generated files, the user must confirm it via `confirm_resources`.",
		name, wh.Type(),
	)), nil
}
