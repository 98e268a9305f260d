package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pjamessteven/social-project-sub002/pkg/chatstream/provider"
	"github.com/pjamessteven/social-project-sub002/pkg/chatstream/tool"
	"github.com/pjamessteven/social-project-sub002/pkg/chatstream/types"
)

// scriptedModel plays back canned chunk sequences, one per Stream call,
// and records the requests it receives.
type scriptedModel struct {
	mu       sync.Mutex
	turns    [][]provider.Chunk
	err      error
	requests []provider.Request
}

func (m *scriptedModel) Generate(ctx context.Context, req provider.Request) (*provider.Response, error) {
	return &provider.Response{Content: "generated"}, nil
}

func (m *scriptedModel) Stream(ctx context.Context, req provider.Request) (<-chan provider.Chunk, <-chan error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)

	var turn []provider.Chunk
	if len(m.turns) > 0 {
		turn = m.turns[0]
		m.turns = m.turns[1:]
	}
	err := m.err
	m.mu.Unlock()

	chunks := make(chan provider.Chunk, len(turn))
	errs := make(chan error, 1)

	for _, chunk := range turn {
		chunks <- chunk
	}
	close(chunks)

	if err != nil {
		errs <- err
	}
	close(errs)

	return chunks, errs
}

func (m *scriptedModel) ID() string { return "scripted" }

func (m *scriptedModel) lastRequest() provider.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[len(m.requests)-1]
}

func collectEvents(t *testing.T, wfctx *Context) []types.WorkflowEvent {
	t.Helper()

	var events []types.WorkflowEvent
	for ev := range wfctx.Events() {
		events = append(events, ev)
	}
	return events
}

func userMessage(text string) []types.ChatMessage {
	return []types.ChatMessage{{Role: types.RoleUser, Content: text}}
}

func TestWorkflow_PlainTextRun(t *testing.T) {
	model := &scriptedModel{
		turns: [][]provider.Chunk{
			{
				{Delta: "Hello"},
				{Delta: " there"},
				{FinishReason: "stop"},
			},
		},
	}

	wf := &Workflow{Model: model, AgentName: "chat"}

	wfctx := wf.Run(context.Background(), userMessage("hi"))
	events := collectEvents(t, wfctx)

	require.NoError(t, wfctx.Wait())
	require.Len(t, events, 3)

	first, ok := events[0].(*types.AgentDeltaEvent)
	require.True(t, ok)
	assert.Equal(t, "Hello", first.Delta)
	assert.Equal(t, "Hello", first.Response)
	assert.Equal(t, "chat", first.AgentName)

	second := events[1].(*types.AgentDeltaEvent)
	assert.Equal(t, " there", second.Delta)
	assert.Equal(t, "Hello there", second.Response)

	assert.IsType(t, &types.StopEvent{}, events[2])
}

func TestWorkflow_ExecutesTools(t *testing.T) {
	model := &scriptedModel{
		turns: [][]provider.Chunk{
			{
				{ToolCalls: []types.ToolCall{{
					ID:        "call-1",
					Name:      "lookup",
					Arguments: map[string]any{"query": "visas"},
				}}},
			},
			{
				{Delta: "Found it."},
				{FinishReason: "stop"},
			},
		},
	}

	var gotArgs map[string]any
	lookup := tool.Define("lookup", "Look things up", nil, func(ctx context.Context, args map[string]any) (string, error) {
		gotArgs = args
		return "result text", nil
	})

	wf := &Workflow{Model: model, Tools: []tool.Tool{lookup}}

	wfctx := wf.Run(context.Background(), userMessage("find visas"))
	events := collectEvents(t, wfctx)

	require.NoError(t, wfctx.Wait())
	assert.Equal(t, map[string]any{"query": "visas"}, gotArgs)

	require.Len(t, events, 4)

	call := events[0].(*types.ToolCallEvent)
	assert.Equal(t, "call-1", call.ToolID)
	assert.Equal(t, "lookup", call.ToolName)

	result := events[1].(*types.ToolResultEvent)
	assert.Equal(t, "call-1", result.ToolID)
	assert.Equal(t, "result text", result.Raw)
	assert.False(t, result.IsError)

	assert.IsType(t, &types.AgentDeltaEvent{}, events[2])
	assert.IsType(t, &types.StopEvent{}, events[3])

	// The second model turn sees the assistant tool call and its result.
	second := model.lastRequest()
	require.Len(t, second.Messages, 3)
	assert.Equal(t, types.RoleAssistant, second.Messages[1].Role)
	assert.Equal(t, types.RoleTool, second.Messages[2].Role)
	assert.Equal(t, "result text", second.Messages[2].Content)
	assert.Equal(t, "call-1", second.Messages[2].ToolCallID)
}

func TestWorkflow_ToolFailureContinuesRun(t *testing.T) {
	model := &scriptedModel{
		turns: [][]provider.Chunk{
			{
				{ToolCalls: []types.ToolCall{{ID: "call-1", Name: "broken"}}},
			},
			{
				{Delta: "Sorry about that."},
				{FinishReason: "stop"},
			},
		},
	}

	broken := tool.Define("broken", "Always fails", nil, func(ctx context.Context, args map[string]any) (string, error) {
		return "", errors.New("index offline")
	})

	wf := &Workflow{Model: model, Tools: []tool.Tool{broken}}

	wfctx := wf.Run(context.Background(), userMessage("try it"))
	events := collectEvents(t, wfctx)

	require.NoError(t, wfctx.Wait())

	result := events[1].(*types.ToolResultEvent)
	assert.True(t, result.IsError)
	assert.Equal(t, "index offline", result.Raw)

	assert.IsType(t, &types.StopEvent{}, events[len(events)-1])
}

func TestWorkflow_UnknownToolReportsError(t *testing.T) {
	model := &scriptedModel{
		turns: [][]provider.Chunk{
			{
				{ToolCalls: []types.ToolCall{{ID: "call-1", Name: "missing"}}},
			},
			{
				{FinishReason: "stop"},
			},
		},
	}

	wf := &Workflow{Model: model}

	wfctx := wf.Run(context.Background(), userMessage("go"))
	events := collectEvents(t, wfctx)

	require.NoError(t, wfctx.Wait())

	result := events[1].(*types.ToolResultEvent)
	assert.True(t, result.IsError)
	assert.Contains(t, result.Raw, "unknown tool")
}

func TestWorkflow_PausesOnUserInputCall(t *testing.T) {
	model := &scriptedModel{
		turns: [][]provider.Chunk{
			{
				{Delta: "One question."},
				{ToolCalls: []types.ToolCall{{
					ID:        "call-7",
					Name:      tool.UserInputToolName,
					Arguments: map[string]any{"prompt": "Which country?", "input_type": "text"},
				}}},
			},
		},
	}

	wf := &Workflow{Model: model, Tools: []tool.Tool{tool.NewUserInputTool()}}

	wfctx := wf.Run(context.Background(), userMessage("help me"))
	events := collectEvents(t, wfctx)

	require.NoError(t, wfctx.Wait())
	assert.True(t, wfctx.Paused())

	require.NotEmpty(t, events)

	last := events[len(events)-1]
	request, ok := last.(*types.HumanInputRequestEvent)
	require.True(t, ok, "run must end with the human input request, not a stop event")
	assert.Equal(t, "call-7", request.ToolCallID)
	assert.Equal(t, "Which country?", request.Prompt)
	require.NotNil(t, request.Response)
	assert.Equal(t, "call-7", request.Response.ToolCallID)

	// Snapshot state carries the pending tool call for the resume cycle.
	state, err := wfctx.SnapshotState()
	require.NoError(t, err)

	var restored struct {
		Messages  []types.ChatMessage `json:"messages"`
		Iteration int                 `json:"iteration"`
	}
	require.NoError(t, json.Unmarshal(state, &restored))
	assert.Equal(t, 1, restored.Iteration)

	assistant := restored.Messages[len(restored.Messages)-1]
	assert.Equal(t, types.RoleAssistant, assistant.Role)
	require.Len(t, assistant.ToolCalls, 1)
	assert.Equal(t, "call-7", assistant.ToolCalls[0].ID)
}

func TestWorkflow_ResumeReplaysHumanResponses(t *testing.T) {
	pauseModel := &scriptedModel{
		turns: [][]provider.Chunk{
			{
				{ToolCalls: []types.ToolCall{{
					ID:        "call-7",
					Name:      tool.UserInputToolName,
					Arguments: map[string]any{"prompt": "Which country?"},
				}}},
			},
		},
	}

	wf := &Workflow{Model: pauseModel, Tools: []tool.Tool{tool.NewUserInputTool()}}

	wfctx := wf.Run(context.Background(), userMessage("help me"))
	collectEvents(t, wfctx)
	require.NoError(t, wfctx.Wait())

	state, err := wfctx.SnapshotState()
	require.NoError(t, err)

	resumeModel := &scriptedModel{
		turns: [][]provider.Chunk{
			{
				{Delta: "Great, here is your answer."},
				{FinishReason: "stop"},
			},
		},
	}
	wf.Model = resumeModel

	resumed, err := wf.Resume(context.Background(), state, []types.HumanResponseData{
		{ToolCallID: "call-7", Data: map[string]any{"answer": "New Zealand"}},
	})
	require.NoError(t, err)

	events := collectEvents(t, resumed)
	require.NoError(t, resumed.Wait())

	assert.IsType(t, &types.StopEvent{}, events[len(events)-1])

	// The resumed model turn sees the human answer as a tool result.
	req := resumeModel.lastRequest()
	var toolMsg *types.ChatMessage
	for i := range req.Messages {
		if req.Messages[i].Role == types.RoleTool && req.Messages[i].ToolCallID == "call-7" {
			toolMsg = &req.Messages[i]
		}
	}
	require.NotNil(t, toolMsg)
	assert.JSONEq(t, `{"answer":"New Zealand"}`, toolMsg.Content)
}

func TestWorkflow_ResumeSkipsUnansweredCalls(t *testing.T) {
	state, err := json.Marshal(map[string]any{
		"messages": []types.ChatMessage{
			{Role: types.RoleUser, Content: "go"},
			{Role: types.RoleAssistant, ToolCalls: []types.ToolCall{
				{ID: "call-1", Name: tool.UserInputToolName},
				{ID: "call-2", Name: tool.UserInputToolName},
			}},
		},
		"iteration": 1,
	})
	require.NoError(t, err)

	model := &scriptedModel{
		turns: [][]provider.Chunk{
			{{FinishReason: "stop"}},
		},
	}
	wf := &Workflow{Model: model}

	resumed, err := wf.Resume(context.Background(), state, []types.HumanResponseData{
		{ToolCallID: "call-1", Data: map[string]any{"answer": "yes"}},
	})
	require.NoError(t, err)

	collectEvents(t, resumed)
	require.NoError(t, resumed.Wait())

	req := model.lastRequest()

	contents := map[string]string{}
	for _, m := range req.Messages {
		if m.Role == types.RoleTool {
			contents[m.ToolCallID] = m.Content
		}
	}

	assert.JSONEq(t, `{"answer":"yes"}`, contents["call-1"])
	assert.Equal(t, "User skipped this input request.", contents["call-2"])
}

func TestWorkflow_StreamErrorEndsRun(t *testing.T) {
	model := &scriptedModel{err: errors.New("provider exploded")}

	wf := &Workflow{Model: model}

	wfctx := wf.Run(context.Background(), userMessage("hi"))
	events := collectEvents(t, wfctx)

	assert.Empty(t, events)
	assert.EqualError(t, wfctx.Wait(), "provider exploded")
}

func TestWorkflow_MaxIterations(t *testing.T) {
	noop := tool.Define("noop", "Does nothing", nil, func(ctx context.Context, args map[string]any) (string, error) {
		return "ok", nil
	})

	model := &scriptedModel{
		turns: [][]provider.Chunk{
			{{ToolCalls: []types.ToolCall{{ID: "call-1", Name: "noop"}}}},
			{{ToolCalls: []types.ToolCall{{ID: "call-2", Name: "noop"}}}},
			{{ToolCalls: []types.ToolCall{{ID: "call-3", Name: "noop"}}}},
		},
	}

	wf := &Workflow{Model: model, Tools: []tool.Tool{noop}, MaxIterations: 2}

	wfctx := wf.Run(context.Background(), userMessage("loop"))
	events := collectEvents(t, wfctx)

	require.NoError(t, wfctx.Wait())

	stop, ok := events[len(events)-1].(*types.StopEvent)
	require.True(t, ok)
	assert.Equal(t, "max iterations reached", stop.Reason)
}
