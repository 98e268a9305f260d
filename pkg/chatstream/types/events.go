package types

// EventKind identifies the kind of a workflow event
type EventKind string

const (
	EventKindAgentDelta         EventKind = "agent-delta"
	EventKindToolCall           EventKind = "tool-call"
	EventKindToolResult         EventKind = "tool-result"
	EventKindHumanInputRequest  EventKind = "human-input-request"
	EventKindHumanInputResponse EventKind = "human-input-response"
	EventKindStop               EventKind = "stop"

	// EventKindRaw covers events produced by stages that are not part of the
	// closed set. They are forwarded to the client as opaque annotations,
	// never dropped.
	EventKindRaw EventKind = "raw"
)

// WorkflowEvent is the closed union of events a workflow execution emits.
type WorkflowEvent interface {
	Kind() EventKind
}

// AgentDeltaEvent carries an incremental text fragment from the agent's
// response along with the running total.
type AgentDeltaEvent struct {
	Delta     string `json:"delta"`
	Response  string `json:"response"`
	AgentName string `json:"current_agent_name"`
	Raw       any    `json:"raw,omitempty"`
}

func (e *AgentDeltaEvent) Kind() EventKind { return EventKindAgentDelta }

// ToolCallEvent signals that the agent requested a tool invocation.
type ToolCallEvent struct {
	ToolID     string         `json:"tool_id"`
	ToolName   string         `json:"tool_name"`
	ToolKwargs map[string]any `json:"tool_kwargs"`
}

func (e *ToolCallEvent) Kind() EventKind { return EventKindToolCall }

// ToolResultEvent carries the raw output of a completed tool invocation.
type ToolResultEvent struct {
	ToolID     string         `json:"tool_id"`
	ToolName   string         `json:"tool_name"`
	ToolKwargs map[string]any `json:"tool_kwargs"`
	Raw        any            `json:"raw"`
	IsError    bool           `json:"is_error"`
}

func (e *ToolResultEvent) Kind() EventKind { return EventKindToolResult }

// HumanResponseData is the payload replayed into a resumed workflow as the
// answer to a human input request.
type HumanResponseData struct {
	ToolCallID string         `json:"tool_call_id"`
	Data       map[string]any `json:"data,omitempty"`
}

// HumanInputRequestEvent signals that the workflow needs input from the
// user before it can continue. Response is the correlation payload the
// coordinator persists alongside the snapshot; it is stripped before the
// event surfaces to the client.
type HumanInputRequestEvent struct {
	ToolCallID string         `json:"tool_call_id"`
	Prompt     string         `json:"prompt"`
	InputType  string         `json:"input_type,omitempty"`
	Options    []string       `json:"options,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`

	Response *HumanResponseData `json:"response,omitempty"`
}

func (e *HumanInputRequestEvent) Kind() EventKind { return EventKindHumanInputRequest }

// HumanInputResponseEvent carries a previously submitted human answer when
// it travels through the event stream on resume.
type HumanInputResponseEvent struct {
	ToolCallID string         `json:"tool_call_id"`
	Data       map[string]any `json:"data,omitempty"`
}

func (e *HumanInputResponseEvent) Kind() EventKind { return EventKindHumanInputResponse }

// StopEvent is the terminal marker of a workflow stream.
type StopEvent struct {
	Reason string `json:"reason,omitempty"`
}

func (e *StopEvent) Kind() EventKind { return EventKindStop }

// RawEvent wraps anything that matches no known kind.
type RawEvent struct {
	Data any `json:"data"`
}

func (e *RawEvent) Kind() EventKind { return EventKindRaw }
