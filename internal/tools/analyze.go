package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/pipewarden/pipewarden/internal/project"
	"github.com/pipewarden/pipewarden/internal/workflow"
)

// AnalyzeTool handles the analyze_project MCP tool: an offline scan of
// an existing project directory, for sessions that modify a project
// instead of starting one.
type AnalyzeTool struct {
	dispatcher *workflow.Dispatcher
}

type analyzePayload struct {
	Path string
}

// NewAnalyzeTool creates an AnalyzeTool and registers its action
// handler on the dispatcher.
func NewAnalyzeTool(d *workflow.Dispatcher) *AnalyzeTool {
	t := &AnalyzeTool{dispatcher: d}
	d.Register(workflow.ActionAnalyzeExistingProject, t.execute)
	return t
}

// Definition returns the MCP tool definition for registration.
func (t *AnalyzeTool) Definition() mcp.Tool {
	return mcp.NewTool("analyze_project",
		mcp.WithDescription(
			"Analyze an existing pipeline project directory: reads pb_project.yaml and "+
				"scans the declared model folders. Purely offline — no warehouse access. "+
				"Use this first when the user wants to change an existing project.",
		),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Stable identifier for this conversation."),
		),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the project directory (the one holding pb_project.yaml)."),
		),
	)
}

// Handle processes the analyze_project tool call.
func (t *AnalyzeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := strings.TrimSpace(req.GetString("session_id", ""))
	if sessionID == "" {
		return mcp.NewToolResultError("'session_id' is required"), nil
	}
	path := strings.TrimSpace(req.GetString("path", ""))
	if path == "" {
		return mcp.NewToolResultError("'path' is required"), nil
	}

	outcome, err := t.dispatcher.Dispatch(ctx, sessionID, workflow.ActionRequest{
		Kind:    workflow.ActionAnalyzeExistingProject,
		Payload: analyzePayload{Path: path},
	})
	return dispatchResult(workflow.ActionAnalyzeExistingProject, outcome, err, func(result any) string {
		return renderAnalysis(result.(*project.Analysis))
	})
}

func (t *AnalyzeTool) execute(ctx context.Context, req workflow.ActionRequest) (any, error) {
	payload := req.Payload.(analyzePayload)
	return project.Analyze(payload.Path), nil
}

func renderAnalysis(a *project.Analysis) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Project Analysis: %s\n\nStatus: **%s**\n\n", a.ProjectPath, a.Status)

	if a.ProjectFound {
		fmt.Fprintf(&sb, "- name: %s\n- schema_version: %d\n- connection: %s\n- model_folders: %s\n\n",
			a.Config.Name, a.Config.SchemaVersion, a.Config.Connection, strings.Join(a.Config.ModelFolders, ", "))
	}

	folders := make([]string, 0, len(a.YAMLFiles))
	for folder := range a.YAMLFiles {
		folders = append(folders, folder)
	}
	sort.Strings(folders)
	for _, folder := range folders {
		fmt.Fprintf(&sb, "## %s/\n\n", folder)
		for _, file := range a.YAMLFiles[folder] {
			fmt.Fprintf(&sb, "- %s\n", file)
		}
		sb.WriteString("\n")
	}

	if len(a.Errors) > 0 {
		sb.WriteString("## Errors\n\n")
		for _, e := range a.Errors {
			fmt.Fprintf(&sb, "- %s\n", e)
		}
		sb.WriteString("\n")
	}
	if len(a.Warnings) > 0 {
		sb.WriteString("## Warnings\n\n")
		for _, w := range a.Warnings {
			fmt.Fprintf(&sb, "- %s\n", w)
		}
	}
	return sb.String()
}
