package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/pipewarden/pipewarden/internal/workflow"
)

// GuideTool handles the workflow_guide MCP tool: the agent's map of the
// build workflow. Given an intended action it previews the gate's
// verdict without executing anything; without one it reports the
// session's current standing and the next sensible step.
type GuideTool struct {
	registry *workflow.Registry
}

// NewGuideTool creates a GuideTool over the session registry.
func NewGuideTool(registry *workflow.Registry) *GuideTool {
	return &GuideTool{registry: registry}
}

// Definition returns the MCP tool definition for registration.
func (t *GuideTool) Definition() mcp.Tool {
	return mcp.NewTool("workflow_guide",
		mcp.WithDescription(
			"Check where you are in the pipeline build workflow. Call this FIRST in every "+
				"session, and again whenever a tool call was blocked. Pass the action you "+
				"intend next to preview whether it would be approved and, if not, exactly "+
				"which prerequisite is unmet. Previewing never executes anything.",
		),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Stable identifier for this conversation. Reuse the same value for every call in the session."),
		),
		mcp.WithString("action",
			mcp.Description("Action kind you intend to perform next (e.g. 'create_inputs_yaml'). Omit for a general status report."),
		),
		mcp.WithString("tables",
			mcp.Description("Comma-separated table names the intended action would reference."),
		),
		mcp.WithString("connection",
			mcp.Description("Connection name the intended action would use."),
		),
	)
}

// Handle processes the workflow_guide tool call.
func (t *GuideTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := strings.TrimSpace(req.GetString("session_id", ""))
	if sessionID == "" {
		return mcp.NewToolResultError("'session_id' is required"), nil
	}

	session := t.registry.GetOrCreate(sessionID)
	snap := session.Snapshot()

	action := strings.TrimSpace(req.GetString("action", ""))
	if action == "" {
		return mcp.NewToolResultText(t.statusReport(session, snap)), nil
	}

	refs := make(map[workflow.ResourceKind][]string)
	if tables := csvList(req.GetString("tables", "")); len(tables) > 0 {
		refs[workflow.ResourceTable] = tables
	}
	if conn := strings.TrimSpace(req.GetString("connection", "")); conn != "" {
		refs[workflow.ResourceConnection] = []string{conn}
	}

	kind := workflow.ActionKind(action)
	decision := workflow.Evaluate(snap, workflow.ActionRequest{Kind: kind, ResourceRefs: refs})
	if !decision.Approved {
		return mcp.NewToolResultText(renderBlocked(kind, decision)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Action Approved: %s\n\n", kind)
	sb.WriteString("All prerequisites are met. Proceed with the corresponding tool call.\n")
	return mcp.NewToolResultText(sb.String()), nil
}

func (t *GuideTool) statusReport(session *workflow.Session, snap workflow.Snapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Workflow Status: session %s\n\n", session.ID)
	fmt.Fprintf(&sb, "Phase: %s\n\n", session.Phase())

	sb.WriteString("## Studied Topics\n\n")
	studied := snap.StudiedTopics()
	if len(studied) == 0 {
		sb.WriteString("_None yet. Start with the `about` tool._\n")
	} else {
		sort.Slice(studied, func(i, j int) bool { return studied[i] < studied[j] })
		for _, topic := range studied {
			fmt.Fprintf(&sb, "- %s\n", topic)
		}
	}

	sb.WriteString("\n## Workflow\n\n")
	sb.WriteString("1. Study the concepts with `about` (profiles, inputs, models, macros).\n")
	sb.WriteString("2. Connect with `connect_warehouse`, discover real tables with `table_suggestions`.\n")
	sb.WriteString("3. Ask the user to pick tables and a connection; record the choice with `confirm_resources`.\n")
	sb.WriteString("4. Generate configuration with `create_inputs_yaml`, `create_models_yaml`, `create_entity_vars`.\n")
	sb.WriteString("\nPass `action` to this tool to preview whether a specific step would be approved.\n")
	return sb.String()
}
