package tool

import (
	"context"
	"fmt"

	"github.com/pjamessteven/social-project-sub002/pkg/chatstream/types"
)

// UserInputToolName is the tool name the workflow engine treats as a pause
// point instead of executing.
const UserInputToolName = "request_user_input"

// NewUserInputTool creates a tool that requests input from the user during
// execution. Calling it pauses the workflow: the engine snapshots state,
// surfaces the request to the client, and replays the answer as this tool's
// result when the workflow is resumed.
func NewUserInputTool() Tool {
	parameters := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"prompt": map[string]any{
				"type":        "string",
				"description": "The question or prompt to show the user",
			},
			"input_type": map[string]any{
				"type":        "string",
				"enum":        []string{"text", "choice"},
				"description": "Type of input expected from user (default: text)",
			},
			"options": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "string",
				},
				"description": "Available options (required for choice type)",
			},
			"metadata": map[string]any{
				"type":        "object",
				"description": "Additional context or metadata for the request",
			},
		},
		"required": []string{"prompt"},
	}

	return &userInputTool{
		FuncTool: &FuncTool{
			name:        UserInputToolName,
			description: "Request input from the user during execution. Use this when you need the user to provide information, confirm an action, or make a choice. The conversation will pause until the user responds.",
			parameters:  parameters,
			fn: func(ctx context.Context, args map[string]any) (string, error) {
				return "", nil
			},
		},
	}
}

type userInputTool struct {
	*FuncTool
}

// Execute should never run; the engine intercepts calls to this tool and
// pauses instead.
func (t *userInputTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	return "", fmt.Errorf("%s tool should not be executed directly; it pauses the workflow for human input", UserInputToolName)
}

// IsUserInputCall reports whether a tool call targets the pause tool.
func IsUserInputCall(tc types.ToolCall) bool {
	return tc.Name == UserInputToolName
}

// UserInputRequestFromCall maps the model's tool call arguments onto a
// human input request event.
func UserInputRequestFromCall(tc types.ToolCall) *types.HumanInputRequestEvent {
	ev := &types.HumanInputRequestEvent{
		ToolCallID: tc.ID,
		InputType:  "text",
	}

	if prompt, ok := tc.Arguments["prompt"].(string); ok {
		ev.Prompt = prompt
	}
	if inputType, ok := tc.Arguments["input_type"].(string); ok && inputType != "" {
		ev.InputType = inputType
	}
	if options, ok := tc.Arguments["options"].([]any); ok {
		for _, opt := range options {
			if s, ok := opt.(string); ok {
				ev.Options = append(ev.Options, s)
			}
		}
	}
	if metadata, ok := tc.Arguments["metadata"].(map[string]any); ok {
		ev.Metadata = metadata
	}

	ev.Response = &types.HumanResponseData{ToolCallID: tc.ID}

	return ev
}
