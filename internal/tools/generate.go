package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/pipewarden/pipewarden/internal/generator"
	"github.com/pipewarden/pipewarden/internal/workflow"
)

// InputsTool handles the create_inputs_yaml MCP tool. Every table named
// in the inputs must already be user-confirmed; the gate enforces that
// before the generator runs.
type InputsTool struct {
	dispatcher *workflow.Dispatcher
}

// NewInputsTool creates an InputsTool and registers its action handler
// on the dispatcher.
func NewInputsTool(d *workflow.Dispatcher) *InputsTool {
	t := &InputsTool{dispatcher: d}
	d.Register(workflow.ActionCreateInputsYAML, t.execute)
	return t
}

// Definition returns the MCP tool definition for registration.
func (t *InputsTool) Definition() mcp.Tool {
	return mcp.NewTool("create_inputs_yaml",
		mcp.WithDescription(
			"Generate inputs.yaml from user-confirmed tables. Requires studying the "+
				"'profiles' and 'inputs' topics first, and every table must have been "+
				"confirmed with confirm_resources. The result is YAML text — write it "+
				"to the project's inputs.yaml.",
		),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Stable identifier for this conversation."),
		),
		mcp.WithString("inputs",
			mcp.Required(),
			mcp.Description(`JSON array of inputs: [{"name":"events","table":"analytics.events","occurred_at_col":"ts","ids":[{"select":"user_id","type":"user_id","entity":"user"}]}]`),
		),
	)
}

// Handle processes the create_inputs_yaml tool call.
func (t *InputsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := strings.TrimSpace(req.GetString("session_id", ""))
	if sessionID == "" {
		return mcp.NewToolResultError("'session_id' is required"), nil
	}

	var inputs []generator.Input
	if err := json.Unmarshal([]byte(req.GetString("inputs", "")), &inputs); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("'inputs' is not valid JSON: %v", err)), nil
	}
	if len(inputs) == 0 {
		return mcp.NewToolResultError("'inputs' must list at least one input table"), nil
	}

	tables := make([]string, 0, len(inputs))
	for _, in := range inputs {
		tables = append(tables, in.Table)
	}

	outcome, err := t.dispatcher.Dispatch(ctx, sessionID, workflow.ActionRequest{
		Kind:         workflow.ActionCreateInputsYAML,
		ResourceRefs: map[workflow.ResourceKind][]string{workflow.ResourceTable: tables},
		Payload:      generator.InputsParams{Inputs: inputs},
	})
	return dispatchResult(workflow.ActionCreateInputsYAML, outcome, err, renderYAML("inputs.yaml"))
}

func (t *InputsTool) execute(ctx context.Context, req workflow.ActionRequest) (any, error) {
	return generator.Generate(generator.KindInputs, req.Payload)
}

// ModelsTool handles the create_models_yaml MCP tool.
type ModelsTool struct {
	dispatcher *workflow.Dispatcher
}

type modelsArgs struct {
	Models    []generator.Model    `json:"models"`
	VarGroups []generator.VarGroup `json:"var_groups"`
}

// NewModelsTool creates a ModelsTool and registers its action handler
// on the dispatcher.
func NewModelsTool(d *workflow.Dispatcher) *ModelsTool {
	t := &ModelsTool{dispatcher: d}
	d.Register(workflow.ActionCreateModelsYAML, t.execute)
	return t
}

// Definition returns the MCP tool definition for registration.
func (t *ModelsTool) Definition() mcp.Tool {
	return mcp.NewTool("create_models_yaml",
		mcp.WithDescription(
			"Generate the models file (profiles.yaml) with id stitching and feature "+
				"models. Requires the 'profiles', 'inputs', 'models' and 'macros' topics. "+
				"Models reference inputs as 'inputs/<name>', never raw table names.",
		),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Stable identifier for this conversation."),
		),
		mcp.WithString("models",
			mcp.Required(),
			mcp.Description(`JSON object: {"models":[{"name":"user_id_stitcher","model_type":"id_stitcher","model_spec":{"entity_key":"user","edge_sources":["inputs/events"]}}],"var_groups":[...]}`),
		),
	)
}

// Handle processes the create_models_yaml tool call.
func (t *ModelsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := strings.TrimSpace(req.GetString("session_id", ""))
	if sessionID == "" {
		return mcp.NewToolResultError("'session_id' is required"), nil
	}

	var args modelsArgs
	if err := json.Unmarshal([]byte(req.GetString("models", "")), &args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("'models' is not valid JSON: %v", err)), nil
	}
	if len(args.Models) == 0 {
		return mcp.NewToolResultError("'models' must declare at least one model"), nil
	}

	outcome, err := t.dispatcher.Dispatch(ctx, sessionID, workflow.ActionRequest{
		Kind:    workflow.ActionCreateModelsYAML,
		Payload: generator.ModelsParams{Models: args.Models, VarGroups: args.VarGroups},
	})
	return dispatchResult(workflow.ActionCreateModelsYAML, outcome, err, renderYAML("profiles.yaml"))
}

func (t *ModelsTool) execute(ctx context.Context, req workflow.ActionRequest) (any, error) {
	return generator.Generate(generator.KindModels, req.Payload)
}

// EntityVarsTool handles the create_entity_vars MCP tool.
type EntityVarsTool struct {
	dispatcher *workflow.Dispatcher
}

// NewEntityVarsTool creates an EntityVarsTool and registers its action
// handler on the dispatcher.
func NewEntityVarsTool(d *workflow.Dispatcher) *EntityVarsTool {
	t := &EntityVarsTool{dispatcher: d}
	d.Register(workflow.ActionCreateEntityVars, t.execute)
	return t
}

// Definition returns the MCP tool definition for registration.
func (t *EntityVarsTool) Definition() mcp.Tool {
	return mcp.NewTool("create_entity_vars",
		mcp.WithDescription(
			"Generate entity var declarations to merge into an existing var group. "+
				"Requires the 'profiles', 'models' and 'macros' topics. Keep aggregations "+
				"simple and reference inputs as 'inputs/<name>'.",
		),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Stable identifier for this conversation."),
		),
		mcp.WithString("vars",
			mcp.Required(),
			mcp.Description(`JSON array of vars: [{"name":"order_count","select":"count(*)","from":"inputs/orders"}]`),
		),
	)
}

// Handle processes the create_entity_vars tool call.
func (t *EntityVarsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := strings.TrimSpace(req.GetString("session_id", ""))
	if sessionID == "" {
		return mcp.NewToolResultError("'session_id' is required"), nil
	}

	var vars []generator.EntityVar
	if err := json.Unmarshal([]byte(req.GetString("vars", "")), &vars); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("'vars' is not valid JSON: %v", err)), nil
	}
	if len(vars) == 0 {
		return mcp.NewToolResultError("'vars' must declare at least one entity var"), nil
	}

	outcome, err := t.dispatcher.Dispatch(ctx, sessionID, workflow.ActionRequest{
		Kind:    workflow.ActionCreateEntityVars,
		Payload: generator.EntityVarsParams{Vars: vars},
	})
	return dispatchResult(workflow.ActionCreateEntityVars, outcome, err, renderYAML("entity vars fragment"))
}

func (t *EntityVarsTool) execute(ctx context.Context, req workflow.ActionRequest) (any, error) {
	return generator.Generate(generator.KindEntityVars, req.Payload)
}

// renderYAML wraps generated YAML text in a fenced block with a short
// header naming the target file.
func renderYAML(target string) func(result any) string {
	return func(result any) string {
		return fmt.Sprintf("Generated %s:\n\n```yaml\n%s```\n", target, result.(string))
	}
}
