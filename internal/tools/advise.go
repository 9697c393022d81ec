package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/pipewarden/pipewarden/internal/workflow"
)

// Advisory tools: date filtering, pilot runs and propensity model
// setup. These produce step-by-step instructions rather than artifacts,
// but they still route through the dispatcher so session bookkeeping
// and blocking behave the same as for every other action.

// DateFilterTool handles the add_date_filtering MCP tool.
type DateFilterTool struct {
	dispatcher *workflow.Dispatcher
}

type dateFilterPayload struct {
	BeginTime string
}

// NewDateFilterTool creates a DateFilterTool and registers its action
// handler on the dispatcher.
func NewDateFilterTool(d *workflow.Dispatcher) *DateFilterTool {
	t := &DateFilterTool{dispatcher: d}
	d.Register(workflow.ActionAddDateFiltering, t.execute)
	return t
}

// Definition returns the MCP tool definition for registration.
func (t *DateFilterTool) Definition() mcp.Tool {
	return mcp.NewTool("add_date_filtering",
		mcp.WithDescription(
			"Get instructions for limiting how much history a pipeline run reads. "+
				"Date bounds belong on the run command, not in WHERE clauses inside "+
				"inputs.",
		),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Stable identifier for this conversation."),
		),
		mcp.WithString("begin_time",
			mcp.Description("Earliest timestamp the run should read, e.g. 2026-01-01T00:00:00Z."),
		),
	)
}

// Handle processes the add_date_filtering tool call.
func (t *DateFilterTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := strings.TrimSpace(req.GetString("session_id", ""))
	if sessionID == "" {
		return mcp.NewToolResultError("'session_id' is required"), nil
	}

	outcome, err := t.dispatcher.Dispatch(ctx, sessionID, workflow.ActionRequest{
		Kind:    workflow.ActionAddDateFiltering,
		Payload: dateFilterPayload{BeginTime: strings.TrimSpace(req.GetString("begin_time", ""))},
	})
	return dispatchResult(workflow.ActionAddDateFiltering, outcome, err, func(result any) string {
		return result.(string)
	})
}

func (t *DateFilterTool) execute(ctx context.Context, req workflow.ActionRequest) (any, error) {
	payload := req.Payload.(dateFilterPayload)
	begin := payload.BeginTime
	if begin == "" {
		begin = "<ISO-8601 timestamp>"
	}
	var sb strings.Builder
	sb.WriteString("# Date Filtering\n\n")
	sb.WriteString("Do not add date WHERE clauses to input definitions. Limit the run instead:\n\n")
	fmt.Fprintf(&sb, "```\npb run --begin_time %s\n```\n\n", begin)
	sb.WriteString("This keeps inputs reusable and makes the bound explicit per run. For incremental runs the CLI resumes from the last materialization automatically.\n")
	return sb.String(), nil
}

// PilotTool handles the run_pilot_test MCP tool.
type PilotTool struct {
	dispatcher *workflow.Dispatcher
}

// NewPilotTool creates a PilotTool and registers its action handler on
// the dispatcher.
func NewPilotTool(d *workflow.Dispatcher) *PilotTool {
	t := &PilotTool{dispatcher: d}
	d.Register(workflow.ActionRunPilotTest, t.execute)
	return t
}

// Definition returns the MCP tool definition for registration.
func (t *PilotTool) Definition() mcp.Tool {
	return mcp.NewTool("run_pilot_test",
		mcp.WithDescription(
			"Get the checklist for a first small-scale pipeline run after the "+
				"configuration files are generated.",
		),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Stable identifier for this conversation."),
		),
	)
}

// Handle processes the run_pilot_test tool call.
func (t *PilotTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := strings.TrimSpace(req.GetString("session_id", ""))
	if sessionID == "" {
		return mcp.NewToolResultError("'session_id' is required"), nil
	}

	outcome, err := t.dispatcher.Dispatch(ctx, sessionID, workflow.ActionRequest{
		Kind: workflow.ActionRunPilotTest,
	})
	return dispatchResult(workflow.ActionRunPilotTest, outcome, err, func(result any) string {
		return result.(string)
	})
}

func (t *PilotTool) execute(ctx context.Context, req workflow.ActionRequest) (any, error) {
	return `# Pilot Run Checklist

1. ` + "`pb compile`" + ` — fix every compilation error before touching data.
2. ` + "`pb run --begin_time <recent date>`" + ` — run over a small recent window first.
3. Inspect the output tables with run_query: row counts, id stitching quality, null rates.
4. Review results with the user before running over full history.
`, nil
}

// PropensityTool handles the create_propensity_model MCP tool.
type PropensityTool struct {
	dispatcher *workflow.Dispatcher
}

type propensityPayload struct {
	Label    string
	Eligible string
}

// NewPropensityTool creates a PropensityTool and registers its action
// handler on the dispatcher.
func NewPropensityTool(d *workflow.Dispatcher) *PropensityTool {
	t := &PropensityTool{dispatcher: d}
	d.Register(workflow.ActionCreatePropensityModel, t.execute)
	return t
}

// Definition returns the MCP tool definition for registration.
func (t *PropensityTool) Definition() mcp.Tool {
	return mcp.NewTool("create_propensity_model",
		mcp.WithDescription(
			"Get setup instructions for a propensity model (churn, conversion, LTV). "+
				"Study the 'propensity' topic first for the concepts.",
		),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Stable identifier for this conversation."),
		),
		mcp.WithString("label",
			mcp.Description("Entity var marking the outcome to predict."),
		),
		mcp.WithString("eligible_users",
			mcp.Description("Filter expression defining who gets scored."),
		),
	)
}

// Handle processes the create_propensity_model tool call.
func (t *PropensityTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := strings.TrimSpace(req.GetString("session_id", ""))
	if sessionID == "" {
		return mcp.NewToolResultError("'session_id' is required"), nil
	}

	outcome, err := t.dispatcher.Dispatch(ctx, sessionID, workflow.ActionRequest{
		Kind: workflow.ActionCreatePropensityModel,
		Payload: propensityPayload{
			Label:    strings.TrimSpace(req.GetString("label", "")),
			Eligible: strings.TrimSpace(req.GetString("eligible_users", "")),
		},
	})
	return dispatchResult(workflow.ActionCreatePropensityModel, outcome, err, func(result any) string {
		return result.(string)
	})
}

func (t *PropensityTool) execute(ctx context.Context, req workflow.ActionRequest) (any, error) {
	payload := req.Payload.(propensityPayload)
	var sb strings.Builder
	sb.WriteString("# Propensity Model Setup\n\n")
	if payload.Label != "" {
		fmt.Fprintf(&sb, "Label: `%s`\n\n", payload.Label)
	}
	if payload.Eligible != "" {
		fmt.Fprintf(&sb, "Eligible users: `%s`\n\n", payload.Eligible)
	}
	sb.WriteString("Requirements before training:\n\n")
	sb.WriteString("1. A label entity var computed over a historic window, not the current state.\n")
	sb.WriteString("2. An eligible-users filter — scoring everyone dilutes the model. Compare candidate filters with the evaluate_filters tool and pick by recall.\n")
	sb.WriteString("3. Inputs with real time-series data; static snapshot tables cannot train a model.\n")
	sb.WriteString("4. Check label balance with run_query: one-sided rates produce useless scores.\n")
	return sb.String(), nil
}
