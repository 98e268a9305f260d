package types

import "time"

// MessageRole defines the role of a message sender
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
	RoleTool      MessageRole = "tool"
)

// Part types carried in a UIMessage.
const (
	PartTypeText          = "text"
	PartTypeHumanResponse = "data-human-response"
)

// UIMessage is the wire shape of a chat message exchanged with the client:
// a role plus an ordered list of structured content parts.
type UIMessage struct {
	ID    string        `json:"id,omitempty"`
	Role  MessageRole   `json:"role"`
	Parts []MessagePart `json:"parts"`
}

// MessagePart is one structured content part of a UIMessage.
type MessagePart struct {
	Type string         `json:"type"`
	Text string         `json:"text,omitempty"`
	Data map[string]any `json:"data,omitempty"`
}

// Text returns the text of the first text part, or "".
func (m UIMessage) Text() string {
	for _, part := range m.Parts {
		if part.Type == PartTypeText {
			return part.Text
		}
	}
	return ""
}

// NewTextMessage builds a single-part text message.
func NewTextMessage(role MessageRole, text string) UIMessage {
	return UIMessage{
		Role:  role,
		Parts: []MessagePart{{Type: PartTypeText, Text: text}},
	}
}

// ChatMessage is the model-facing flat message shape used for provider
// requests and workflow snapshots.
type ChatMessage struct {
	Role       MessageRole `json:"role"`
	Content    string      `json:"content"`
	ToolCalls  []ToolCall  `json:"tool_calls,omitempty"`
	ToolCallID string      `json:"tool_call_id,omitempty"`
	Timestamp  time.Time   `json:"timestamp,omitempty"`
}

// ToolCall represents a tool call request from the model
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// Tool describes a tool made available to the model
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ChatHistoryFromUIMessages flattens inbound UI messages to the
// model-facing shape, keeping only their text content.
func ChatHistoryFromUIMessages(messages []UIMessage) []ChatMessage {
	history := make([]ChatMessage, 0, len(messages))
	for _, m := range messages {
		history = append(history, ChatMessage{
			Role:    m.Role,
			Content: m.Text(),
		})
	}
	return history
}
