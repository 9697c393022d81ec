package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/pipewarden/pipewarden/internal/workflow"
)

// ResetTool handles the reset_session MCP tool. Resetting discards the
// session entirely — studied topics and confirmed resources are gone
// and the next call starts from scratch.
type ResetTool struct {
	registry *workflow.Registry
}

// NewResetTool creates a ResetTool over the session registry.
func NewResetTool(registry *workflow.Registry) *ResetTool {
	return &ResetTool{registry: registry}
}

// Definition returns the MCP tool definition for registration.
func (t *ResetTool) Definition() mcp.Tool {
	return mcp.NewTool("reset_session",
		mcp.WithDescription(
			"Discard all workflow state for a session: studied topics, confirmed "+
				"resources, phase. Only use this when the user explicitly wants to "+
				"start over.",
		),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("The session to reset."),
		),
	)
}

// Handle processes the reset_session tool call.
func (t *ResetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := strings.TrimSpace(req.GetString("session_id", ""))
	if sessionID == "" {
		return mcp.NewToolResultError("'session_id' is required"), nil
	}

	t.registry.Reset(sessionID)
	return mcp.NewToolResultText(fmt.Sprintf(
		"Session %s reset. All studied topics and confirmed resources were discarded — the workflow starts over from the beginning.", sessionID,
	)), nil
}
