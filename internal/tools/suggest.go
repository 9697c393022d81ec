package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/pipewarden/pipewarden/internal/warehouse"
	"github.com/pipewarden/pipewarden/internal/workflow"
)

// SuggestTool handles the table_suggestions MCP tool: it lists the real
// tables on the active connection so the agent can show them to the
// user instead of guessing names.
type SuggestTool struct {
	dispatcher *workflow.Dispatcher
	manager    *warehouse.Manager
}

type suggestPayload struct {
	Schema string
}

// NewSuggestTool creates a SuggestTool and registers its action handler
// on the dispatcher.
func NewSuggestTool(d *workflow.Dispatcher, m *warehouse.Manager) *SuggestTool {
	t := &SuggestTool{dispatcher: d, manager: m}
	d.Register(workflow.ActionDiscoverResources, t.execute)
	return t
}

// Definition returns the MCP tool definition for registration.
func (t *SuggestTool) Definition() mcp.Tool {
	return mcp.NewTool("table_suggestions",
		mcp.WithDescription(
			"List the tables that actually exist on the active warehouse connection. "+
				"Present these to the user and let them choose which ones feed the "+
				"pipeline — then record the choice with confirm_resources.",
		),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Stable identifier for this conversation."),
		),
		mcp.WithString("schema",
			mcp.Description("Schema to list. Defaults to the connection's main schema."),
		),
	)
}

// Handle processes the table_suggestions tool call.
func (t *SuggestTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := strings.TrimSpace(req.GetString("session_id", ""))
	if sessionID == "" {
		return mcp.NewToolResultError("'session_id' is required"), nil
	}

	outcome, err := t.dispatcher.Dispatch(ctx, sessionID, workflow.ActionRequest{
		Kind:    workflow.ActionDiscoverResources,
		Payload: suggestPayload{Schema: req.GetString("schema", "")},
	})
	return dispatchResult(workflow.ActionDiscoverResources, outcome, err, func(result any) string {
		tables := result.([]string)
		var sb strings.Builder
		sb.WriteString("# Discovered Tables\n\n")
		if len(tables) == 0 {
			sb.WriteString("_No tables found on the active connection._\n")
			return sb.String()
		}
		for _, name := range tables {
			fmt.Fprintf(&sb, "- %s\n", name)
		}
		sb.WriteString("\nAsk the user which of these should feed the pipeline, then call `confirm_resources`.\n")
		return sb.String()
	})
}

func (t *SuggestTool) execute(ctx context.Context, req workflow.ActionRequest) (any, error) {
	payload := req.Payload.(suggestPayload)
	wh, err := t.manager.Active()
	if err != nil {
		return nil, err
	}
	return wh.ListTables(ctx, payload.Schema)
}
