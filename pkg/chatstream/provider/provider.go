package provider

import (
	"context"

	"github.com/pjamessteven/social-project-sub002/pkg/chatstream/types"
)

// LanguageModel is the interface the workflow engine drives. Implementations
// wrap one upstream model endpoint.
type LanguageModel interface {
	// Generate produces a complete response (blocking)
	Generate(ctx context.Context, req Request) (*Response, error)

	// Stream produces incremental chunks via channel. The chunk channel is
	// closed when the stream ends; a terminal error, if any, is delivered
	// on the error channel before it closes.
	Stream(ctx context.Context, req Request) (<-chan Chunk, <-chan error)

	// ID returns the identifier for this model
	ID() string
}

// Request contains the parameters for one generation step.
type Request struct {
	Messages    []types.ChatMessage `json:"messages"`
	System      string              `json:"system,omitempty"`
	Tools       []types.Tool        `json:"tools,omitempty"`
	Temperature float32             `json:"temperature,omitempty"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	TopP        float32             `json:"top_p,omitempty"`
}

// Response is a complete (non-streamed) generation result.
type Response struct {
	Content      string           `json:"content"`
	ToolCalls    []types.ToolCall `json:"tool_calls,omitempty"`
	FinishReason string           `json:"finish_reason"`
	Model        string           `json:"model,omitempty"`
}

// Chunk is one increment of a streamed generation. Delta carries text as
// it arrives; ToolCalls and FinishReason are populated on the final chunk
// once argument fragments have been assembled.
type Chunk struct {
	Delta        string           `json:"delta,omitempty"`
	ToolCalls    []types.ToolCall `json:"tool_calls,omitempty"`
	FinishReason string           `json:"finish_reason,omitempty"`
	Raw          any              `json:"-"`
}
