package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/pipewarden/pipewarden/internal/warehouse"
	"github.com/pipewarden/pipewarden/internal/workflow"
)

// DescribeTool handles the describe_table MCP tool. Describing is a
// discovery step, so it does not require prior confirmation of the
// table — it is how the agent learns what to show the user. Placeholder
// names are still rejected up front.
type DescribeTool struct {
	dispatcher *workflow.Dispatcher
	manager    *warehouse.Manager
}

type describePayload struct {
	Table string
}

// NewDescribeTool creates a DescribeTool and registers its action
// handler on the dispatcher.
func NewDescribeTool(d *workflow.Dispatcher, m *warehouse.Manager) *DescribeTool {
	t := &DescribeTool{dispatcher: d, manager: m}
	d.Register(workflow.ActionDescribeTable, t.execute)
	return t
}

// Definition returns the MCP tool definition for registration.
func (t *DescribeTool) Definition() mcp.Tool {
	return mcp.NewTool("describe_table",
		mcp.WithDescription(
			"Show the columns of a warehouse table on the active connection. Use this "+
				"to verify id columns and timestamps exist before proposing a table to "+
				"the user.",
		),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Stable identifier for this conversation."),
		),
		mcp.WithString("table",
			mcp.Required(),
			mcp.Description("Table name, exactly as it appears in the warehouse."),
		),
	)
}

// Handle processes the describe_table tool call.
func (t *DescribeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := strings.TrimSpace(req.GetString("session_id", ""))
	if sessionID == "" {
		return mcp.NewToolResultError("'session_id' is required"), nil
	}
	table := strings.TrimSpace(req.GetString("table", ""))
	if table == "" {
		return mcp.NewToolResultError("'table' is required"), nil
	}
	if workflow.IsPlaceholder(table) {
		return mcp.NewToolResultError(fmt.Sprintf(
			"%q looks like a placeholder, not a real table. Call table_suggestions to discover actual names.", table,
		)), nil
	}

	outcome, err := t.dispatcher.Dispatch(ctx, sessionID, workflow.ActionRequest{
		Kind:    workflow.ActionDescribeTable,
		Payload: describePayload{Table: table},
	})
	return dispatchResult(workflow.ActionDescribeTable, outcome, err, func(result any) string {
		return renderColumns(table, result.([]warehouse.Column))
	})
}

func (t *DescribeTool) execute(ctx context.Context, req workflow.ActionRequest) (any, error) {
	payload := req.Payload.(describePayload)
	wh, err := t.manager.Active()
	if err != nil {
		return nil, err
	}
	return wh.DescribeTable(ctx, payload.Table)
}

func renderColumns(table string, cols []warehouse.Column) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Table: %s\n\n| column | type | nullable |\n| --- | --- | --- |\n", table)
	for _, col := range cols {
		fmt.Fprintf(&sb, "| %s | %s | %t |\n", col.Name, col.Type, col.Nullable)
	}
	return sb.String()
}
