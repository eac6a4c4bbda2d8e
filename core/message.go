package core

import "github.com/google/uuid"

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleSystem marks instructions authored by the orchestrator or operator.
	RoleSystem Role = "system"
	// RoleUser marks end-user input.
	RoleUser Role = "user"
	// RoleAssistant marks model output, including tool call requests.
	RoleAssistant Role = "assistant"
	// RoleTool marks a tool result fed back to the model.
	RoleTool Role = "tool"
)

// Message is a single entry in an agent conversation. Conversations are
// ordered []Message slices; the order is semantically significant because it
// encodes the pairing between assistant tool call requests and the tool
// results that answer them.
//
// Exactly one of the optional field groups is populated depending on Role:
//   - assistant: Content and/or ToolCalls
//   - tool:      Content, ToolCallID (the call being answered) and Name
//   - system / user: Content only
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
	IsError    bool       `json:"is_error,omitempty"`
}

// ToolCall is a model-issued request to execute a named tool. ID correlates
// the request with the tool result message that answers it; providers that do
// not supply call identifiers get synthesized ones so the pairing always
// holds.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // raw JSON object
}

// ToolResult is the outcome of executing (or failing to execute) a single
// ToolCall. Content carries the stringified tool output, or the failure
// message when IsError is set. Results never abort a run; they are threaded
// back into the conversation as tool messages.
type ToolResult struct {
	CallID  string `json:"call_id"`
	Name    string `json:"name"`
	Content string `json:"content"`
	IsError bool   `json:"is_error,omitempty"`
}

// NewUserMessage builds a user-authored text message.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// NewAssistantMessage builds an assistant message carrying text and any tool
// call requests surfaced by the model in the same turn.
func NewAssistantMessage(text string, calls ...ToolCall) Message {
	return Message{Role: RoleAssistant, Content: text, ToolCalls: calls}
}

// NewToolMessage converts a ToolResult into the tool message form expected in
// a conversation.
func NewToolMessage(res ToolResult) Message {
	return Message{Role: RoleTool, Content: res.Content, ToolCallID: res.CallID, Name: res.Name, IsError: res.IsError}
}

// CloneMessage returns a deep copy of a message. ToolCalls are copied so the
// clone shares no mutable state with the original.
func CloneMessage(m Message) Message {
	c := m
	if len(m.ToolCalls) > 0 {
		c.ToolCalls = make([]ToolCall, len(m.ToolCalls))
		copy(c.ToolCalls, m.ToolCalls)
	}
	return c
}

// CloneMessages deep copies a conversation slice. Callers that hand a
// conversation to the orchestrator keep ownership of their slice; every round
// of execution threads a fresh slice instead of mutating input in place.
func CloneMessages(msgs []Message) []Message {
	if msgs == nil {
		return nil
	}
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[i] = CloneMessage(m)
	}
	return out
}

// NewID generates a unique identifier for runs and synthesized tool calls.
func NewID() string {
	return uuid.New().String()
}
