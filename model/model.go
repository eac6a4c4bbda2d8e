package model

import (
	"context"

	"github.com/aegisops/aegis/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
// Parameters is a JSON Schema object (draft agnostic, minimal subset expected).
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ToolChoice constrains whether the model may request tool executions in a
// given call.
type ToolChoice string

const (
	// ToolChoiceAuto lets the model decide whether to call tools.
	ToolChoiceAuto ToolChoice = "auto"
	// ToolChoiceNone forbids tool calls; used for forced final answers.
	ToolChoiceNone ToolChoice = "none"
)

// Request captures the normalized model input produced by the orchestrator.
// Tools carries the definitions offered for this call; nil disables tool
// calling entirely.
type Request struct {
	SystemPrompt string           `json:"system_prompt"`
	Messages     []core.Message   `json:"messages"`
	Tools        []ToolDefinition `json:"tools,omitempty"`
	ToolChoice   ToolChoice       `json:"tool_choice,omitempty"`
}

// Normalized finish reasons shared across vendors.
const (
	// FinishStop means the model produced a complete answer.
	FinishStop = "stop"
	// FinishToolCalls means the model requested tool executions.
	FinishToolCalls = "tool_calls"
	// FinishLength means generation hit the provider's token ceiling.
	FinishLength = "length"
)

// Response is the outcome of a single generation call.
type Response struct {
	Content      string          `json:"content"`
	ToolCalls    []core.ToolCall `json:"tool_calls,omitempty"`
	FinishReason string          `json:"finish_reason"`
	Usage        core.Usage      `json:"usage"`
}

// Info contains metadata about a provider implementation.
type Info struct {
	Name          string `json:"name"`
	Vendor        string `json:"vendor"` // "openai", "anthropic", "gemini", "mock"
	SupportsTools bool   `json:"supports_tools"`
}

// Provider is the minimal interface the orchestrator needs to drive
// generation. Implementations must be safe for concurrent use.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the provider implementation.
	Info() Info
}

// Chunk is a partial emission from a streaming generation. Delta carries the
// incremental text; the final chunk sets Done and includes the assembled
// Response.
type Chunk struct {
	Delta    string    `json:"delta,omitempty"`
	Done     bool      `json:"done,omitempty"`
	Response *Response `json:"response,omitempty"`
}

// Streamer is an optional capability of providers that support incremental
// output. Chat surfaces consume it; the orchestrator only ever uses Generate.
type Streamer interface {
	GenerateStream(ctx context.Context, req Request) (<-chan Chunk, <-chan error)
}
