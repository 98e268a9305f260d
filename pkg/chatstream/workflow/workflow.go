// Package workflow runs the agent loop that produces workflow events:
// streamed model output, tool execution, and human input pauses.
package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/pjamessteven/social-project-sub002/pkg/chatstream/provider"
	"github.com/pjamessteven/social-project-sub002/pkg/chatstream/tool"
	"github.com/pjamessteven/social-project-sub002/pkg/chatstream/types"
)

// Workflow describes one runnable agent configuration. It is immutable;
// each Run or Resume builds a fresh execution Context.
type Workflow struct {
	Model         provider.LanguageModel
	Tools         []tool.Tool
	SystemPrompt  string
	AgentName     string
	MaxIterations int
	Temperature   float32
}

// Context is one workflow execution. Events are delivered on Events()
// until the run finishes, pauses for human input, or fails.
type Context struct {
	events chan types.WorkflowEvent
	done   chan struct{}

	mu        sync.Mutex
	err       error
	messages  []types.ChatMessage
	iteration int
	paused    bool
}

// execState is the serialized form of a paused execution.
type execState struct {
	Messages  []types.ChatMessage `json:"messages"`
	Iteration int                 `json:"iteration"`
}

func newContext(messages []types.ChatMessage) *Context {
	return &Context{
		events:   make(chan types.WorkflowEvent),
		done:     make(chan struct{}),
		messages: messages,
	}
}

// Events returns the event stream. It is closed when the run ends.
func (c *Context) Events() <-chan types.WorkflowEvent {
	return c.events
}

// Err returns the terminal error of the run, if any.
func (c *Context) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Wait blocks until the run ends and returns its terminal error.
func (c *Context) Wait() error {
	<-c.done
	return c.Err()
}

// Paused reports whether the run halted at a human input request.
func (c *Context) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// SnapshotState serializes the conversation state for persistence. Valid
// once the human input request event has been observed; the state is
// written before that event is emitted.
func (c *Context) SnapshotState() (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	payload, err := json.Marshal(execState{
		Messages:  c.messages,
		Iteration: c.iteration,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workflow state: %w", err)
	}

	return payload, nil
}

func (c *Context) setError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

func (c *Context) setState(messages []types.ChatMessage, iteration int, paused bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = messages
	c.iteration = iteration
	c.paused = paused
}

// Run starts a fresh execution over the given chat history and returns
// immediately; events arrive on the returned context.
func (w *Workflow) Run(ctx context.Context, messages []types.ChatMessage) *Context {
	wfctx := newContext(messages)

	go w.run(ctx, wfctx)

	return wfctx
}

// Resume rebuilds an execution from serialized state, replays the human
// responses as resolved tool results, and continues the loop.
func (w *Workflow) Resume(ctx context.Context, state json.RawMessage, responses []types.HumanResponseData) (*Context, error) {
	var restored execState
	if err := json.Unmarshal(state, &restored); err != nil {
		return nil, fmt.Errorf("failed to restore workflow state: %w", err)
	}

	messages := restored.Messages

	answered := make(map[string]bool, len(responses))
	for _, response := range responses {
		content := "User provided no input."
		if len(response.Data) > 0 {
			payload, err := json.Marshal(response.Data)
			if err == nil {
				content = string(payload)
			}
		}

		messages = append(messages, types.ChatMessage{
			Role:       types.RoleTool,
			Content:    content,
			ToolCallID: response.ToolCallID,
		})
		answered[response.ToolCallID] = true
	}

	// Any pending tool call left without an answer still needs a result
	// message, or the next model request is rejected.
	for _, tc := range pendingToolCalls(restored.Messages) {
		if answered[tc.ID] {
			continue
		}
		messages = append(messages, types.ChatMessage{
			Role:       types.RoleTool,
			Content:    "User skipped this input request.",
			ToolCallID: tc.ID,
		})
	}

	wfctx := newContext(messages)
	wfctx.iteration = restored.Iteration

	go w.run(ctx, wfctx)

	return wfctx, nil
}

// pendingToolCalls returns the tool calls of the trailing assistant message
// that have no matching tool result yet.
func pendingToolCalls(messages []types.ChatMessage) []types.ToolCall {
	resolved := make(map[string]bool)
	for _, m := range messages {
		if m.Role == types.RoleTool && m.ToolCallID != "" {
			resolved[m.ToolCallID] = true
		}
	}

	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != types.RoleAssistant {
			continue
		}

		var pending []types.ToolCall
		for _, tc := range messages[i].ToolCalls {
			if !resolved[tc.ID] {
				pending = append(pending, tc)
			}
		}
		return pending
	}

	return nil
}

func (w *Workflow) run(ctx context.Context, wfctx *Context) {
	defer close(wfctx.done)
	defer close(wfctx.events)

	if err := w.loop(ctx, wfctx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}
		wfctx.setError(err)
	}
}

func (w *Workflow) loop(ctx context.Context, wfctx *Context) error {
	maxIterations := w.MaxIterations
	if maxIterations <= 0 {
		maxIterations = 10
	}

	toolsByName := make(map[string]tool.Tool, len(w.Tools))
	for _, t := range w.Tools {
		toolsByName[t.Name()] = t
	}

	messages := wfctx.messages
	iteration := wfctx.iteration

	for iteration < maxIterations {
		iteration++

		response, toolCalls, err := w.step(ctx, wfctx, messages)
		if err != nil {
			return err
		}

		messages = append(messages, types.ChatMessage{
			Role:      types.RoleAssistant,
			Content:   response,
			ToolCalls: toolCalls,
		})

		if len(toolCalls) == 0 {
			return w.emit(ctx, wfctx, &types.StopEvent{})
		}

		for _, tc := range toolCalls {
			if tool.IsUserInputCall(tc) {
				// State is stored before the event surfaces, so the
				// coordinator can snapshot it from the event handler.
				wfctx.setState(messages, iteration, true)
				return w.emit(ctx, wfctx, tool.UserInputRequestFromCall(tc))
			}

			resultMsg, err := w.executeTool(ctx, wfctx, toolsByName, tc)
			if err != nil {
				return err
			}
			messages = append(messages, resultMsg)
		}
	}

	return w.emit(ctx, wfctx, &types.StopEvent{Reason: "max iterations reached"})
}

// step streams one model turn, emitting delta events as text arrives, and
// returns the full response text plus any tool calls.
func (w *Workflow) step(ctx context.Context, wfctx *Context, messages []types.ChatMessage) (string, []types.ToolCall, error) {
	req := provider.Request{
		Messages:    messages,
		System:      w.SystemPrompt,
		Tools:       tool.ToTypesTools(w.Tools),
		Temperature: w.Temperature,
	}

	chunks, errs := w.Model.Stream(ctx, req)

	var response strings.Builder
	var toolCalls []types.ToolCall

	for chunk := range chunks {
		if chunk.Delta != "" {
			response.WriteString(chunk.Delta)

			err := w.emit(ctx, wfctx, &types.AgentDeltaEvent{
				Delta:     chunk.Delta,
				Response:  response.String(),
				AgentName: w.AgentName,
				Raw:       chunk.Raw,
			})
			if err != nil {
				return "", nil, err
			}
		}

		toolCalls = append(toolCalls, chunk.ToolCalls...)
	}

	if err := <-errs; err != nil {
		return "", nil, err
	}

	return response.String(), toolCalls, nil
}

func (w *Workflow) executeTool(ctx context.Context, wfctx *Context, toolsByName map[string]tool.Tool, tc types.ToolCall) (types.ChatMessage, error) {
	err := w.emit(ctx, wfctx, &types.ToolCallEvent{
		ToolID:     tc.ID,
		ToolName:   tc.Name,
		ToolKwargs: tc.Arguments,
	})
	if err != nil {
		return types.ChatMessage{}, err
	}

	var output string
	var execErr error

	t, ok := toolsByName[tc.Name]
	if !ok {
		execErr = fmt.Errorf("unknown tool: %s", tc.Name)
	} else {
		output, execErr = t.Execute(ctx, tc.Arguments)
	}

	result := &types.ToolResultEvent{
		ToolID:     tc.ID,
		ToolName:   tc.Name,
		ToolKwargs: tc.Arguments,
		Raw:        output,
	}

	content := output
	if execErr != nil {
		log.Warn().Err(execErr).Str("tool", tc.Name).Msg("Tool execution failed")

		result.IsError = true
		result.Raw = execErr.Error()
		content = fmt.Sprintf("Error: %s", execErr.Error())
	}

	if err := w.emit(ctx, wfctx, result); err != nil {
		return types.ChatMessage{}, err
	}

	return types.ChatMessage{
		Role:       types.RoleTool,
		Content:    content,
		ToolCallID: tc.ID,
	}, nil
}

func (w *Workflow) emit(ctx context.Context, wfctx *Context, ev types.WorkflowEvent) error {
	select {
	case wfctx.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
