package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/pipewarden/pipewarden/internal/knowledge"
	"github.com/pipewarden/pipewarden/internal/workflow"
)

// AboutTool handles the about MCP tool. Serving a topic also records it
// as studied on the session — reading the documentation is exactly what
// the knowledge gate requires.
type AboutTool struct {
	registry *workflow.Registry
}

// NewAboutTool creates an AboutTool over the session registry.
func NewAboutTool(registry *workflow.Registry) *AboutTool {
	return &AboutTool{registry: registry}
}

// Definition returns the MCP tool definition for registration.
func (t *AboutTool) Definition() mcp.Tool {
	topicValues := make([]string, 0, len(knowledge.Topics()))
	for _, topic := range knowledge.Topics() {
		topicValues = append(topicValues, string(topic))
	}

	return mcp.NewTool("about",
		mcp.WithDescription(
			"Read the documentation for one pipeline concept. Studying a topic through "+
				"this tool is what unlocks configuration actions that require it — the "+
				"workflow gate tracks which topics each session has read.",
		),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Stable identifier for this conversation."),
		),
		mcp.WithString("topic",
			mcp.Required(),
			mcp.Description("The topic to study."),
			mcp.Enum(topicValues...),
		),
	)
}

// Handle processes the about tool call.
func (t *AboutTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := strings.TrimSpace(req.GetString("session_id", ""))
	if sessionID == "" {
		return mcp.NewToolResultError("'session_id' is required"), nil
	}

	topic := workflow.Topic(strings.TrimSpace(req.GetString("topic", "")))
	content, ok := knowledge.About(topic)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown topic %q — list: %v", topic, knowledge.Topics())), nil
	}

	session := t.registry.GetOrCreate(sessionID)
	session.RecordTopicStudied(topic)
	session.SetPhase("knowledge_gathering")

	return mcp.NewToolResultText(content), nil
}
