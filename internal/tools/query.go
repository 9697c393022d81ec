package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/pipewarden/pipewarden/internal/warehouse"
	"github.com/pipewarden/pipewarden/internal/workflow"
)

// maxRenderedRows caps how many result rows a query tool call prints.
const maxRenderedRows = 50

// QueryTool handles the run_query MCP tool. Execution goes through the
// workflow dispatcher; the warehouse is only reached on approval.
type QueryTool struct {
	dispatcher *workflow.Dispatcher
	manager    *warehouse.Manager
}

type queryPayload struct {
	Query string
}

// NewQueryTool creates a QueryTool and registers its action handler on
// the dispatcher.
func NewQueryTool(d *workflow.Dispatcher, m *warehouse.Manager) *QueryTool {
	t := &QueryTool{dispatcher: d, manager: m}
	d.Register(workflow.ActionRunQuery, t.execute)
	return t
}

// Definition returns the MCP tool definition for registration.
func (t *QueryTool) Definition() mcp.Tool {
	return mcp.NewTool("run_query",
		mcp.WithDescription(
			"Run a read-only SQL query against the active warehouse connection. Use it "+
				"to inspect data while discovering tables and validating assumptions. "+
				"Initialize a connection with connect_warehouse first.",
		),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Stable identifier for this conversation."),
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The SQL to execute."),
		),
	)
}

// Handle processes the run_query tool call.
func (t *QueryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := strings.TrimSpace(req.GetString("session_id", ""))
	if sessionID == "" {
		return mcp.NewToolResultError("'session_id' is required"), nil
	}
	query := strings.TrimSpace(req.GetString("query", ""))
	if query == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}

	outcome, err := t.dispatcher.Dispatch(ctx, sessionID, workflow.ActionRequest{
		Kind:    workflow.ActionRunQuery,
		Payload: queryPayload{Query: query},
	})
	return dispatchResult(workflow.ActionRunQuery, outcome, err, func(result any) string {
		return renderRows(result.([]warehouse.Row))
	})
}

func (t *QueryTool) execute(ctx context.Context, req workflow.ActionRequest) (any, error) {
	payload := req.Payload.(queryPayload)
	wh, err := t.manager.Active()
	if err != nil {
		return nil, err
	}
	return wh.ExecuteQuery(ctx, payload.Query)
}

// renderRows formats query results as a markdown table, column order
// sorted for stable output.
func renderRows(rows []warehouse.Row) string {
	if len(rows) == 0 {
		return "Query returned no rows.\n"
	}

	cols := make([]string, 0, len(rows[0]))
	for col := range rows[0] {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d row(s)", len(rows))
	if len(rows) > maxRenderedRows {
		fmt.Fprintf(&sb, " (showing first %d)", maxRenderedRows)
		rows = rows[:maxRenderedRows]
	}
	sb.WriteString("\n\n| " + strings.Join(cols, " | ") + " |\n")
	sb.WriteString("|" + strings.Repeat(" --- |", len(cols)) + "\n")
	for _, row := range rows {
		cells := make([]string, len(cols))
		for i, col := range cols {
			cells[i] = fmt.Sprintf("%v", row[col])
		}
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return sb.String()
}
