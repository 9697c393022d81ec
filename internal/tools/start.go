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

// projectSchemaVersion is the config schema revision emitted into new
// pb_project.yaml files.
const projectSchemaVersion = 88

// StartTool handles the start_project MCP tool: it scaffolds the
// pb_project.yaml for a new pipeline project. The connection it writes
// must be user-confirmed, which the gate enforces.
type StartTool struct {
	dispatcher *workflow.Dispatcher
	registry   *workflow.Registry
}

type startArgs struct {
	Name       string             `json:"name"`
	Connection string             `json:"connection"`
	Entities   []generator.Entity `json:"entities"`
}

// NewStartTool creates a StartTool and registers its action handler on
// the dispatcher.
func NewStartTool(d *workflow.Dispatcher, r *workflow.Registry) *StartTool {
	t := &StartTool{dispatcher: d, registry: r}
	d.Register(workflow.ActionStart, t.execute)
	return t
}

// Definition returns the MCP tool definition for registration.
func (t *StartTool) Definition() mcp.Tool {
	return mcp.NewTool("start_project",
		mcp.WithDescription(
			"Scaffold pb_project.yaml for a new pipeline project. The connection must "+
				"be one the user confirmed via confirm_resources. The result is YAML "+
				"text — write it to the project's pb_project.yaml.",
		),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Stable identifier for this conversation."),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Project name."),
		),
		mcp.WithString("connection",
			mcp.Required(),
			mcp.Description("User-confirmed warehouse connection name."),
		),
		mcp.WithString("entities",
			mcp.Description(`JSON array of entities: [{"name":"user","id_types":["user_id","email"]}]. Defaults to a single 'user' entity.`),
		),
	)
}

// Handle processes the start_project tool call.
func (t *StartTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := strings.TrimSpace(req.GetString("session_id", ""))
	if sessionID == "" {
		return mcp.NewToolResultError("'session_id' is required"), nil
	}
	name := strings.TrimSpace(req.GetString("name", ""))
	if name == "" {
		return mcp.NewToolResultError("'name' is required"), nil
	}
	connection := strings.TrimSpace(req.GetString("connection", ""))
	if connection == "" {
		return mcp.NewToolResultError("'connection' is required"), nil
	}

	entities := []generator.Entity{{Name: "user", IDTypes: []string{"user_id"}}}
	if raw := req.GetString("entities", ""); raw != "" {
		if err := json.Unmarshal([]byte(raw), &entities); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("'entities' is not valid JSON: %v", err)), nil
		}
	}

	outcome, err := t.dispatcher.Dispatch(ctx, sessionID, workflow.ActionRequest{
		Kind:         workflow.ActionStart,
		ResourceRefs: map[workflow.ResourceKind][]string{workflow.ResourceConnection: {connection}},
		Payload: generator.ProjectParams{
			Name:          name,
			SchemaVersion: projectSchemaVersion,
			Connection:    connection,
			ModelFolders:  []string{"models"},
			Entities:      entities,
		},
	})
	if err == nil && outcome.Decision.Approved {
		t.registry.GetOrCreate(sessionID).SetPhase("project_started")
	}
	return dispatchResult(workflow.ActionStart, outcome, err, renderYAML("pb_project.yaml"))
}

func (t *StartTool) execute(ctx context.Context, req workflow.ActionRequest) (any, error) {
	return generator.Generate(generator.KindProject, req.Payload)
}
