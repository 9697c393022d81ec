package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/pipewarden/pipewarden/internal/workflow"
)

// ConfirmTool handles the confirm_resources MCP tool. This is the only
// way resource names enter a session's confirmed set, so its contract
// is strict: call it only AFTER the user explicitly chose the names,
// and placeholder-looking names are rejected atomically.
type ConfirmTool struct {
	registry *workflow.Registry
}

// NewConfirmTool creates a ConfirmTool over the session registry.
func NewConfirmTool(registry *workflow.Registry) *ConfirmTool {
	return &ConfirmTool{registry: registry}
}

// Definition returns the MCP tool definition for registration.
func (t *ConfirmTool) Definition() mcp.Tool {
	return mcp.NewTool("confirm_resources",
		mcp.WithDescription(
			"Record warehouse resources the USER explicitly confirmed. Only call this "+
				"after showing the user real discovered names and getting their choice — "+
				"never to confirm names you picked yourself. If any name looks like a "+
				"placeholder the whole batch is rejected and nothing is recorded.",
		),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Stable identifier for this conversation."),
		),
		mcp.WithString("kind",
			mcp.Required(),
			mcp.Description("What the names are."),
			mcp.Enum(string(workflow.ResourceTable), string(workflow.ResourceConnection)),
		),
		mcp.WithString("names",
			mcp.Required(),
			mcp.Description("Comma-separated resource names exactly as the user confirmed them."),
		),
	)
}

// Handle processes the confirm_resources tool call.
func (t *ConfirmTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := strings.TrimSpace(req.GetString("session_id", ""))
	if sessionID == "" {
		return mcp.NewToolResultError("'session_id' is required"), nil
	}

	kind := workflow.ResourceKind(req.GetString("kind", ""))
	if kind != workflow.ResourceTable && kind != workflow.ResourceConnection {
		return mcp.NewToolResultError(fmt.Sprintf("unknown resource kind %q", kind)), nil
	}

	names := csvList(req.GetString("names", ""))
	if len(names) == 0 {
		return mcp.NewToolResultError("'names' is required — pass the confirmed names, comma-separated"), nil
	}

	session := t.registry.GetOrCreate(sessionID)
	if violations := session.ConfirmResources(kind, names); len(violations) > 0 {
		var sb strings.Builder
		sb.WriteString("Confirmation rejected — these names look like placeholders:\n\n")
		for _, name := range violations {
			fmt.Fprintf(&sb, "- %s\n", name)
		}
		sb.WriteString("\nNothing was recorded. Discover the real names and ask the user again.\n")
		return mcp.NewToolResultError(sb.String()), nil
	}
	session.SetPhase("resources_confirmed")

	var sb strings.Builder
	fmt.Fprintf(&sb, "Confirmed %d %s name(s) for session %s:\n\n", len(names), kind, sessionID)
	for _, name := range names {
		fmt.Fprintf(&sb, "- %s\n", name)
	}
	return mcp.NewToolResultText(sb.String()), nil
}
