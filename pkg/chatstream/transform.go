package chatstream

import (
	"fmt"

	"github.com/pjamessteven/social-project-sub002/pkg/chatstream/types"
)

// Tool names with a dedicated annotation kind on the client. Anything else
// falls back to the generic annotation type.
const (
	toolQueryVideos   = "queryVideos"
	toolQueryStories  = "queryStories"
	toolQueryComments = "queryComments"
)

func queryAnnotationType(toolName string) string {
	switch toolName {
	case toolQueryVideos:
		return types.AnnotationVideoQuery
	case toolQueryStories:
		return types.AnnotationStoryQuery
	case toolQueryComments:
		return types.AnnotationCommentQuery
	default:
		return types.AnnotationGeneric
	}
}

func queryingTitle(toolName string) string {
	switch toolName {
	case toolQueryVideos:
		return "Querying videos..."
	case toolQueryStories:
		return "Querying user stories..."
	case toolQueryComments:
		return "Querying user comments..."
	default:
		return fmt.Sprintf("Running %s...", toolName)
	}
}

func queriedTitle(toolName string) string {
	switch toolName {
	case toolQueryVideos:
		return "Queried user videos"
	case toolQueryStories:
		return "Queried user stories"
	case toolQueryComments:
		return "Queried user comments"
	default:
		return fmt.Sprintf("Finished %s", toolName)
	}
}

// annotateToolCall rewrites a tool-call event into its "querying"
// annotation, keyed by the tool call id so the client can correlate the
// later result.
func annotateToolCall(ev *types.ToolCallEvent) types.AnnotationFrame {
	data := map[string]any{
		"title": queryingTitle(ev.ToolName),
	}
	if query, ok := ev.ToolKwargs["query"]; ok {
		data["query"] = query
	}

	return types.AnnotationFrame{
		Type: queryAnnotationType(ev.ToolName),
		ID:   ev.ToolID,
		Data: data,
	}
}

// annotateToolResult rewrites a tool-result event into its completed-tense
// annotation, carrying the raw result and a success/error status.
func annotateToolResult(ev *types.ToolResultEvent) types.AnnotationFrame {
	status := "success"
	if ev.IsError {
		status = "error"
	}

	data := map[string]any{
		"title":  queriedTitle(ev.ToolName),
		"result": ev.Raw,
		"status": status,
	}
	if query, ok := ev.ToolKwargs["query"]; ok {
		data["query"] = query
	}

	return types.AnnotationFrame{
		Type: queryAnnotationType(ev.ToolName),
		ID:   ev.ToolID,
		Data: data,
	}
}

// annotateHumanInput surfaces a human input request with its embedded
// response payload stripped, so the answer template is never shown twice.
func annotateHumanInput(ev *types.HumanInputRequestEvent) types.AnnotationFrame {
	data := map[string]any{
		"tool_call_id": ev.ToolCallID,
		"prompt":       ev.Prompt,
	}
	if ev.InputType != "" {
		data["input_type"] = ev.InputType
	}
	if len(ev.Options) > 0 {
		data["options"] = ev.Options
	}
	if len(ev.Metadata) > 0 {
		data["metadata"] = ev.Metadata
	}

	return types.AnnotationFrame{
		Type: types.AnnotationGeneric,
		Data: data,
	}
}

// annotateOpaque forwards an event that matched no known shape.
func annotateOpaque(data any) types.AnnotationFrame {
	return types.AnnotationFrame{
		Type: types.AnnotationGeneric,
		Data: map[string]any{"event": data},
	}
}
