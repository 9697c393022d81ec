package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/pipewarden/pipewarden/internal/config"
	"github.com/pipewarden/pipewarden/internal/project"
)

// OutputsTool handles the output_details MCP tool: after a pipeline
// run, it reports which schema the output tables landed in and the
// fully qualified feature view and id stitcher names per entity. Like
// analyze_project this only reads project files, so it does not go
// through the dispatcher.
type OutputsTool struct {
	site *config.SiteConfig
}

// NewOutputsTool creates an OutputsTool over the site config.
func NewOutputsTool(site *config.SiteConfig) *OutputsTool {
	return &OutputsTool{site: site}
}

// Definition returns the MCP tool definition for registration.
func (t *OutputsTool) Definition() mcp.Tool {
	return mcp.NewTool("output_details",
		mcp.WithDescription(
			"Locate the tables a pipeline run created. The output schema is NOT the "+
				"schema of the active connection — always use this tool to find where "+
				"feature views and id stitcher tables landed before querying them.",
		),
		mcp.WithString("project_path",
			mcp.Required(),
			mcp.Description("Directory containing pb_project.yaml."),
		),
	)
}

// Handle processes the output_details tool call.
func (t *OutputsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := strings.TrimSpace(req.GetString("project_path", ""))
	if path == "" {
		return mcp.NewToolResultError("'project_path' is required"), nil
	}

	details, err := project.Outputs(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	schema := ""
	if conn, ok := t.site.Connections[details.Connection]; ok {
		schema = conn.OutputSchema
	}

	var sb strings.Builder
	sb.WriteString("# Run Outputs\n\n")
	switch {
	case schema != "":
		fmt.Fprintf(&sb, "Output schema: **%s** (connection `%s`)\n\n", schema, details.Connection)
	case details.Connection != "":
		fmt.Fprintf(&sb, "Connection `%s` has no output_schema in the site config — table names below are unqualified.\n\n", details.Connection)
	default:
		sb.WriteString("pb_project.yaml names no connection — table names below are unqualified.\n\n")
	}

	entities := make([]string, 0, len(details.Entities))
	for entity := range details.Entities {
		entities = append(entities, entity)
	}
	sort.Strings(entities)
	for _, entity := range entities {
		out := details.Entities[entity]
		fmt.Fprintf(&sb, "## Entity: %s\n\n", entity)
		if len(out.FeatureViews) > 0 {
			sb.WriteString("Feature views (same features in each, keyed by a different id type):\n")
			for _, view := range out.FeatureViews {
				fmt.Fprintf(&sb, "- %s\n", qualifyOutput(schema, view))
			}
			sb.WriteString("\n")
		}
		if out.IDStitcher != "" {
			fmt.Fprintf(&sb, "Id stitcher: %s\n\n", qualifyOutput(schema, out.IDStitcher))
		}
	}

	for _, warning := range details.Warnings {
		fmt.Fprintf(&sb, "WARNING: %s\n", warning)
	}

	sb.WriteString("\nNext steps: inspect the tables with run_query (row counts, id counts per user, null rates) and review the results with the user.\n")
	return mcp.NewToolResultText(sb.String()), nil
}

// qualifyOutput prefixes a run output table with its schema when one is
// known.
func qualifyOutput(schema, name string) string {
	if schema == "" {
		return name
	}
	return schema + "." + name
}
