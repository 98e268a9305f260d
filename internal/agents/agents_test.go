package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pjamessteven/social-project-sub002/pkg/chatstream/provider"
	"github.com/pjamessteven/social-project-sub002/pkg/chatstream/tool"
	"github.com/pjamessteven/social-project-sub002/pkg/chatstream/types"
)

type stubModel struct {
	content string
	lastReq provider.Request
}

func (m *stubModel) Generate(ctx context.Context, req provider.Request) (*provider.Response, error) {
	m.lastReq = req
	return &provider.Response{Content: m.content}, nil
}

func (m *stubModel) Stream(ctx context.Context, req provider.Request) (<-chan provider.Chunk, <-chan error) {
	chunks := make(chan provider.Chunk)
	errs := make(chan error, 1)
	close(chunks)
	close(errs)
	return chunks, errs
}

func (m *stubModel) ID() string { return "stub" }

func TestExtractQuestions(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected []string
	}{
		{
			name:     "well formed block",
			content:  "Here you go:\n```\nWhat about visas?\nHow do people find work?\nIs it safe?\n```",
			expected: []string{"What about visas?", "How do people find work?", "Is it safe?"},
		},
		{
			name:     "block with blank lines",
			content:  "```\n\nFirst?\n\nSecond?\n```",
			expected: []string{"First?", "Second?"},
		},
		{
			name:     "no block",
			content:  "I cannot answer that.",
			expected: nil,
		},
		{
			name:     "unterminated block",
			content:  "```\nFirst?",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractQuestions(tt.content))
		})
	}
}

func TestFactory_SuggestQuestions(t *testing.T) {
	model := &stubModel{content: "```\nWhat next?\n```"}
	factory := &Factory{model: model}

	questions, err := factory.SuggestQuestions(context.Background(), []types.ChatMessage{
		{Role: types.RoleUser, Content: "Tell me about moving abroad"},
		{Role: types.RoleAssistant, Content: "Lots of users have."},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"What next?"}, questions)

	require.Len(t, model.lastReq.Messages, 1)
	prompt := model.lastReq.Messages[0].Content
	assert.Contains(t, prompt, "user: Tell me about moving abroad")
	assert.Contains(t, prompt, "assistant: Lots of users have.")
}

func TestFactory_WorkflowModes(t *testing.T) {
	factory := &Factory{model: &stubModel{}}

	chat := factory.Workflow(ModeChat)
	assert.Equal(t, "chat", chat.AgentName)

	research := factory.Workflow(ModeResearch)
	assert.Equal(t, "research", research.AgentName)

	// Only research gets the pause tool.
	hasUserInput := func(tools []tool.Tool) bool {
		for _, tl := range tools {
			if tl.Name() == tool.UserInputToolName {
				return true
			}
		}
		return false
	}

	assert.False(t, hasUserInput(chat.Tools))
	assert.True(t, hasUserInput(research.Tools))
}
