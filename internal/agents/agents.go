// Package agents assembles the workflows behind the chat and research
// endpoints and the follow-up question generator.
package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/pjamessteven/social-project-sub002/internal/retrieval"
	"github.com/pjamessteven/social-project-sub002/pkg/chatstream/provider"
	"github.com/pjamessteven/social-project-sub002/pkg/chatstream/tool"
	"github.com/pjamessteven/social-project-sub002/pkg/chatstream/types"
	"github.com/pjamessteven/social-project-sub002/pkg/chatstream/workflow"
)

// Mode selects which agent configuration serves a request.
type Mode string

const (
	ModeChat     Mode = "chat"
	ModeResearch Mode = "research"
)

// Factory builds workflows wired to the retrieval tools.
type Factory struct {
	model provider.LanguageModel
	tools []tool.Tool
}

func NewFactory(model provider.LanguageModel, indexes Indexes, cache *retrieval.QueryCache) *Factory {
	return &Factory{
		model: model,
		tools: []tool.Tool{
			retrieval.NewVideoQueryTool(indexes.Videos, cache),
			retrieval.NewStoryQueryTool(indexes.Stories, cache),
			retrieval.NewCommentQueryTool(indexes.Comments, cache),
		},
	}
}

// Indexes groups the three retrieval corpora.
type Indexes struct {
	Videos   retrieval.Index
	Stories  retrieval.Index
	Comments retrieval.Index
}

// Workflow returns the agent configuration for a mode.
func (f *Factory) Workflow(mode Mode) *workflow.Workflow {
	switch mode {
	case ModeResearch:
		return &workflow.Workflow{
			Model:         f.model,
			Tools:         append(f.tools, tool.NewUserInputTool()),
			SystemPrompt:  researchSystemPrompt,
			AgentName:     "research",
			MaxIterations: 15,
		}
	default:
		return &workflow.Workflow{
			Model:         f.model,
			Tools:         f.tools,
			SystemPrompt:  chatSystemPrompt,
			AgentName:     "chat",
			MaxIterations: 10,
		}
	}
}

// SuggestQuestions asks the model for follow-up questions based on the
// conversation so far. Returns nil when the model's answer carries no
// extractable block.
func (f *Factory) SuggestQuestions(ctx context.Context, history []types.ChatMessage) ([]string, error) {
	var conversation strings.Builder
	for _, m := range history {
		if m.Content == "" {
			continue
		}
		fmt.Fprintf(&conversation, "%s: %s\n", m.Role, m.Content)
	}

	resp, err := f.model.Generate(ctx, provider.Request{
		Messages: []types.ChatMessage{
			{
				Role:    types.RoleUser,
				Content: fmt.Sprintf(nextQuestionPrompt, conversation.String()),
			},
		},
	})
	if err != nil {
		return nil, err
	}

	return extractQuestions(resp.Content), nil
}

// extractQuestions pulls the lines out of the first triple-backtick block.
func extractQuestions(content string) []string {
	start := strings.Index(content, "```")
	if start < 0 {
		return nil
	}

	rest := content[start+3:]
	end := strings.Index(rest, "```")
	if end < 0 {
		return nil
	}

	var questions []string
	for _, line := range strings.Split(rest[:end], "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			questions = append(questions, line)
		}
	}

	return questions
}
