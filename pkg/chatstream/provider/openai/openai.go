// Package openai implements provider.LanguageModel against any
// OpenAI-compatible chat completion endpoint.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/sashabaranov/go-openai"

	"github.com/pjamessteven/social-project-sub002/pkg/chatstream/provider"
	"github.com/pjamessteven/social-project-sub002/pkg/chatstream/types"
)

// Provider wraps one OpenAI-compatible endpoint.
type Provider struct {
	client *openai.Client
	model  string
}

// Config holds endpoint settings. BaseURL is optional and lets the client
// target compatible providers (Moonshot, local gateways).
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

func New(cfg Config) *Provider {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Provider{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
	}
}

// Generate implements the Generate method of the LanguageModel interface
func (p *Provider) Generate(ctx context.Context, req provider.Request) (*provider.Response, error) {
	resp, err := p.client.CreateChatCompletion(ctx, p.chatRequest(req, false))
	if err != nil {
		return nil, fmt.Errorf("chat completion error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("empty response from provider")
	}

	choice := resp.Choices[0]
	response := &provider.Response{
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		Model:        resp.Model,
	}

	for _, tc := range choice.Message.ToolCalls {
		response.ToolCalls = append(response.ToolCalls, toolCallFromFunction(tc.ID, tc.Function.Name, tc.Function.Arguments))
	}

	return response, nil
}

// Stream implements the Stream method of the LanguageModel interface
func (p *Provider) Stream(ctx context.Context, req provider.Request) (<-chan provider.Chunk, <-chan error) {
	chunkChan := make(chan provider.Chunk, 100)
	errChan := make(chan error, 1)

	go func() {
		defer close(chunkChan)
		defer close(errChan)

		stream, err := p.client.CreateChatCompletionStream(ctx, p.chatRequest(req, true))
		if err != nil {
			errChan <- fmt.Errorf("chat completion stream error: %w", err)
			return
		}
		defer stream.Close()

		// Tool call fragments arrive interleaved across chunks, keyed by
		// index; assemble them and deliver complete calls at the end.
		builders := make(map[int]*toolCallBuilder)
		finishReason := ""

		for {
			response, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				errChan <- fmt.Errorf("stream recv error: %w", err)
				return
			}

			if len(response.Choices) == 0 {
				continue
			}

			choice := response.Choices[0]
			delta := choice.Delta

			if delta.Content != "" {
				chunkChan <- provider.Chunk{Delta: delta.Content, Raw: response}
			}

			for _, tc := range delta.ToolCalls {
				if tc.Index == nil {
					continue
				}
				index := *tc.Index
				builder, exists := builders[index]
				if !exists {
					builder = &toolCallBuilder{id: tc.ID, name: tc.Function.Name}
					builders[index] = builder
				}
				builder.arguments += tc.Function.Arguments
			}

			if choice.FinishReason != "" {
				finishReason = string(choice.FinishReason)
			}
		}

		final := provider.Chunk{FinishReason: finishReason}

		indexes := make([]int, 0, len(builders))
		for index := range builders {
			indexes = append(indexes, index)
		}
		sort.Ints(indexes)

		for _, index := range indexes {
			builder := builders[index]
			final.ToolCalls = append(final.ToolCalls, toolCallFromFunction(builder.id, builder.name, builder.arguments))
		}

		chunkChan <- final
	}()

	return chunkChan, errChan
}

// ID returns the model identifier
func (p *Provider) ID() string {
	return p.model
}

func (p *Provider) chatRequest(req provider.Request, stream bool) openai.ChatCompletionRequest {
	chatReq := openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    convertMessages(req.Messages, req.System),
		Tools:       convertTools(req.Tools),
		Temperature: req.Temperature,
		TopP:        req.TopP,
		Stream:      stream,
	}

	if req.MaxTokens > 0 {
		chatReq.MaxTokens = req.MaxTokens
	}

	return chatReq
}

type toolCallBuilder struct {
	id        string
	name      string
	arguments string
}

func toolCallFromFunction(id, name, arguments string) types.ToolCall {
	var args map[string]any
	if arguments != "" {
		json.Unmarshal([]byte(arguments), &args)
	}

	return types.ToolCall{
		ID:        id,
		Name:      name,
		Arguments: args,
	}
}

func convertMessages(messages []types.ChatMessage, system string) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(messages)+1)

	if system != "" {
		result = append(result, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}

	for _, m := range messages {
		msg := openai.ChatCompletionMessage{
			Role:       string(m.Role),
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}

		for _, tc := range m.ToolCalls {
			argsJSON, err := json.Marshal(tc.Arguments)
			if err != nil {
				argsJSON = []byte("{}")
			}
			msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: string(argsJSON),
				},
			})
		}

		result = append(result, msg)
	}

	return result
}

func convertTools(tools []types.Tool) []openai.Tool {
	result := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		result = append(result, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return result
}
