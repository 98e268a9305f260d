package chatstream

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pjamessteven/social-project-sub002/pkg/chatstream/types"
)

func TestAnnotateToolCall(t *testing.T) {
	tests := []struct {
		name          string
		toolName      string
		expectedType  string
		expectedTitle string
	}{
		{
			name:          "video query",
			toolName:      "queryVideos",
			expectedType:  types.AnnotationVideoQuery,
			expectedTitle: "Querying videos...",
		},
		{
			name:          "story query",
			toolName:      "queryStories",
			expectedType:  types.AnnotationStoryQuery,
			expectedTitle: "Querying user stories...",
		},
		{
			name:          "comment query",
			toolName:      "queryComments",
			expectedType:  types.AnnotationCommentQuery,
			expectedTitle: "Querying user comments...",
		},
		{
			name:          "unknown tool falls back to generic annotation",
			toolName:      "summarize",
			expectedType:  types.AnnotationGeneric,
			expectedTitle: "Running summarize...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := annotateToolCall(&types.ToolCallEvent{
				ToolID:     "call-1",
				ToolName:   tt.toolName,
				ToolKwargs: map[string]any{"query": "visas"},
			})

			assert.Equal(t, tt.expectedType, frame.Type)
			assert.Equal(t, "call-1", frame.ID)
			assert.Equal(t, tt.expectedTitle, frame.Data["title"])
			assert.Equal(t, "visas", frame.Data["query"])
		})
	}
}

func TestAnnotateToolResult(t *testing.T) {
	frame := annotateToolResult(&types.ToolResultEvent{
		ToolID:   "call-2",
		ToolName: "queryStories",
		Raw:      "[1] a story",
	})

	assert.Equal(t, types.AnnotationStoryQuery, frame.Type)
	assert.Equal(t, "call-2", frame.ID)
	assert.Equal(t, "Queried user stories", frame.Data["title"])
	assert.Equal(t, "success", frame.Data["status"])
	assert.Equal(t, "[1] a story", frame.Data["result"])
}

func TestAnnotateToolResult_Error(t *testing.T) {
	frame := annotateToolResult(&types.ToolResultEvent{
		ToolID:   "call-3",
		ToolName: "queryComments",
		Raw:      "index unavailable",
		IsError:  true,
	})

	assert.Equal(t, "error", frame.Data["status"])
}

func TestAnnotateHumanInput_StripsResponse(t *testing.T) {
	frame := annotateHumanInput(&types.HumanInputRequestEvent{
		ToolCallID: "call-4",
		Prompt:     "Pick one",
		InputType:  "choice",
		Options:    []string{"a", "b"},
		Response:   &types.HumanResponseData{ToolCallID: "call-4"},
	})

	assert.Equal(t, types.AnnotationGeneric, frame.Type)
	assert.Equal(t, "Pick one", frame.Data["prompt"])
	assert.Equal(t, "choice", frame.Data["input_type"])
	assert.Equal(t, []string{"a", "b"}, frame.Data["options"])
	assert.NotContains(t, frame.Data, "response")
}

func TestClassifyStreamError(t *testing.T) {
	assert.NoError(t, ClassifyStreamError(nil))

	passthrough := assert.AnError
	assert.Equal(t, passthrough, ClassifyStreamError(passthrough))
}
