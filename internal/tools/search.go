package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/pipewarden/pipewarden/internal/docs"
)

// defaultSearchResults is how many snippets a search returns when the
// caller doesn't say.
const defaultSearchResults = 5

// SearchTool handles the search_docs MCP tool: free-text similarity
// search over the reference documentation, for questions the built-in
// topics don't answer.
type SearchTool struct {
	svc docs.Service
}

// NewSearchTool creates a SearchTool over the retrieval service.
func NewSearchTool(svc docs.Service) *SearchTool {
	return &SearchTool{svc: svc}
}

// Definition returns the MCP tool definition for registration.
func (t *SearchTool) Definition() mcp.Tool {
	return mcp.NewTool("search_docs",
		mcp.WithDescription(
			"Search the reference documentation by similarity. Use this for detail "+
				"questions (syntax, specific options) after studying the core topics "+
				"with `about`. Results are ranked, best match first.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("What to look up, phrased as a question or keywords."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of snippets to return (default 5)."),
		),
	)
}

// Handle processes the search_docs tool call.
func (t *SearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := strings.TrimSpace(req.GetString("query", ""))
	if query == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}
	limit := int(req.GetFloat("limit", defaultSearchResults))
	if limit <= 0 {
		limit = defaultSearchResults
	}

	snippets, err := t.svc.Search(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("documentation search failed: %v", err)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Documentation Search: %s\n\n", query)
	if len(snippets) == 0 {
		sb.WriteString("_No matching documentation found._\n")
	}
	for i, snip := range snippets {
		fmt.Fprintf(&sb, "## Result %d (score %.3f)\n\n%s\n\n", i+1, snip.Score, snip.Text)
	}
	return mcp.NewToolResultText(sb.String()), nil
}
