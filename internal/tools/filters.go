package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/pipewarden/pipewarden/internal/warehouse"
	"github.com/pipewarden/pipewarden/internal/workflow"
)

// Default constraints for evaluate_filters: a usable eligible-users
// segment keeps the label rate away from both extremes and is large
// enough to train on.
const (
	defaultMinPositiveRate = 0.10
	defaultMaxPositiveRate = 0.90
	defaultMinEligibleRows = 5000
)

// FiltersTool handles the evaluate_filters MCP tool: it measures
// candidate eligible-user filters against a label table and recommends
// the one with the best recall. Like run_query it needs an active
// warehouse connection.
type FiltersTool struct {
	manager *warehouse.Manager
}

// NewFiltersTool creates a FiltersTool over the connection manager.
func NewFiltersTool(m *warehouse.Manager) *FiltersTool {
	return &FiltersTool{manager: m}
}

// Definition returns the MCP tool definition for registration.
func (t *FiltersTool) Definition() mcp.Tool {
	return mcp.NewTool("evaluate_filters",
		mcp.WithDescription(
			"Evaluate candidate SQL filters for an eligible-users segment before "+
				"building a propensity model. For each filter this measures segment "+
				"size, positive rate and recall against the overall positive "+
				"population, and recommends the filter with the highest recall inside "+
				"the rate bounds. Requires an active warehouse connection.",
		),
		mcp.WithString("filters",
			mcp.Required(),
			mcp.Description(`JSON array of SQL WHERE conditions to compare: ["country = 'US' AND age > 30", "last_seen_days < 90"]`),
		),
		mcp.WithString("label_table",
			mcp.Required(),
			mcp.Description("Table holding the label and entity columns, e.g. analytics.user_labels. Must be a real table name, not a placeholder."),
		),
		mcp.WithString("label_column",
			mcp.Required(),
			mcp.Description("Column where 1 marks a positive label, e.g. is_converted."),
		),
		mcp.WithString("entity_column",
			mcp.Required(),
			mcp.Description("Column uniquely identifying entities, e.g. user_id."),
		),
		mcp.WithNumber("min_positive_rate",
			mcp.Description("Lowest acceptable positive rate for a segment. Defaults to 0.10."),
		),
		mcp.WithNumber("max_positive_rate",
			mcp.Description("Highest acceptable positive rate for a segment. Defaults to 0.90."),
		),
		mcp.WithNumber("min_eligible_rows",
			mcp.Description("Smallest acceptable segment size. Defaults to 5000."),
		),
	)
}

// Handle processes the evaluate_filters tool call.
func (t *FiltersTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var filters []string
	if err := json.Unmarshal([]byte(req.GetString("filters", "")), &filters); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("'filters' is not a valid JSON array: %v", err)), nil
	}
	if len(filters) == 0 {
		return mcp.NewToolResultError("'filters' must list at least one condition"), nil
	}

	labelTable := strings.TrimSpace(req.GetString("label_table", ""))
	labelColumn := strings.TrimSpace(req.GetString("label_column", ""))
	entityColumn := strings.TrimSpace(req.GetString("entity_column", ""))
	if labelTable == "" || labelColumn == "" || entityColumn == "" {
		return mcp.NewToolResultError("'label_table', 'label_column' and 'entity_column' are required"), nil
	}
	if workflow.IsPlaceholder(labelTable) {
		return mcp.NewToolResultError(fmt.Sprintf(
			"%q looks like a placeholder, not a real table. Discover the real label table with table_suggestions and use its exact name.", labelTable,
		)), nil
	}

	wh, err := t.manager.Active()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	best, evaluated, err := warehouse.EvaluateFilters(ctx, wh, warehouse.FilterParams{
		Filters:         filters,
		LabelTable:      labelTable,
		LabelColumn:     labelColumn,
		EntityColumn:    entityColumn,
		MinPositiveRate: req.GetFloat("min_positive_rate", defaultMinPositiveRate),
		MaxPositiveRate: req.GetFloat("max_positive_rate", defaultMaxPositiveRate),
		MinEligibleRows: int64(req.GetFloat("min_eligible_rows", defaultMinEligibleRows)),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(renderFilterReport(best, evaluated)), nil
}

// renderFilterReport formats the evaluation as markdown: the
// recommendation first, then every candidate's metrics.
func renderFilterReport(best *warehouse.FilterMetrics, evaluated []warehouse.FilterMetrics) string {
	var sb strings.Builder
	sb.WriteString("# Eligible-Users Filter Evaluation\n\n")
	if best != nil {
		fmt.Fprintf(&sb, "Recommended filter: `%s`\n\n", best.FilterSQL)
		fmt.Fprintf(&sb, "- eligible rows: %d\n- positive labels: %d\n- negative labels: %d\n- positive rate: %.3f\n- recall: %.3f\n\n",
			best.EligibleRows, best.PositiveRows, best.NegativeRows, best.PositiveRate, best.Recall)
	} else {
		sb.WriteString("No filter met the constraints. Loosen the rate bounds or the row floor, or try different conditions.\n\n")
	}

	sb.WriteString("| filter | eligible | positives | rate | recall |\n| --- | --- | --- | --- | --- |\n")
	for _, m := range evaluated {
		fmt.Fprintf(&sb, "| `%s` | %d | %d | %.3f | %.3f |\n",
			m.FilterSQL, m.EligibleRows, m.PositiveRows, m.PositiveRate, m.Recall)
	}
	return sb.String()
}
