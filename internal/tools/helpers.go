// Package tools implements the MCP tool surface of the validation
// server.
//
// Each tool is a struct that receives its collaborators at construction
// and exposes Definition/Handle for registration. Tools never touch the
// warehouse or generator directly for gated actions — those calls go
// through the workflow dispatcher so the gate's verdict is the single
// source of truth.
package tools

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/pipewarden/pipewarden/internal/workflow"
)

// csvList splits a comma-separated argument into trimmed, non-empty
// items. MCP string params carry lists this way.
func csvList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// renderBlocked formats a blocked gate decision as guidance the calling
// agent can act on. Every reason names the concrete unmet prerequisite
// and the tool that satisfies it.
func renderBlocked(kind workflow.ActionKind, d workflow.Decision) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Action Blocked: %s\n\n", kind)

	switch d.Reason {
	case workflow.ReasonUnknownAction:
		sb.WriteString("This action kind is not recognized.\n\nKnown actions:\n")
		for _, known := range workflow.KnownActions() {
			fmt.Fprintf(&sb, "- %s\n", known)
		}

	case workflow.ReasonMissingKnowledge:
		sb.WriteString("Required topics have not been studied yet:\n\n")
		for _, topic := range d.MissingTopics {
			fmt.Fprintf(&sb, "- %s\n", topic)
		}
		sb.WriteString("\nCall the `about` tool for each missing topic, then retry.\n")

	case workflow.ReasonUnconfirmedResource:
		sb.WriteString("These resources have not been confirmed by the user:\n\n")
		kinds := make([]workflow.ResourceKind, 0, len(d.Unconfirmed))
		for k := range d.Unconfirmed {
			kinds = append(kinds, k)
		}
		sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
		for _, k := range kinds {
			for _, name := range d.Unconfirmed[k] {
				fmt.Fprintf(&sb, "- %s: %s\n", k, name)
			}
		}
		sb.WriteString("\nShow the user the real names you discovered, get their explicit choice, then record it with `confirm_resources`.\n")

	case workflow.ReasonPlaceholderName:
		sb.WriteString("These names look like placeholders, not real warehouse objects:\n\n")
		for _, name := range d.Placeholders {
			fmt.Fprintf(&sb, "- %s\n", name)
		}
		sb.WriteString("\nDiscover real names with `table_suggestions` or `list_connections` and ask the user to pick. Never invent names.\n")

	default:
		fmt.Fprintf(&sb, "Blocked: %s\n", d.Reason)
	}

	return sb.String()
}

// dispatchResult converts a dispatch outcome into a tool result. A
// blocked decision is guidance, not an error: the agent did nothing
// wrong at the protocol level, it just has prerequisites left. A
// collaborator failure is a genuine error result.
func dispatchResult(kind workflow.ActionKind, outcome *workflow.Outcome, err error, render func(result any) string) (*mcp.CallToolResult, error) {
	if err != nil {
		var cerr *workflow.CollaboratorError
		if errors.As(err, &cerr) {
			return mcp.NewToolResultError(cerr.Error()), nil
		}
		return nil, err
	}
	if !outcome.Decision.Approved {
		return mcp.NewToolResultText(renderBlocked(kind, outcome.Decision)), nil
	}
	return mcp.NewToolResultText(render(outcome.Result)), nil
}
