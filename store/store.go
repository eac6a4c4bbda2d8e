package store

import (
	"context"
	"errors"
	"time"

	"github.com/aegisops/aegis/agent"
)

var (
	// ErrAgentNotFound indicates the agent id is not known to the store.
	ErrAgentNotFound = errors.New("agent not found")
	// ErrNoActivePrompt indicates the agent exists but no prompt version is
	// marked active, so no runnable configuration can be produced.
	ErrNoActivePrompt = errors.New("agent has no active prompt version")
)

// Run statuses persisted by RunRecorder implementations.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// AgentStore resolves executable agent configurations. GetActiveConfig
// returns a config whose SystemPrompt is the text of the single active prompt
// version.
type AgentStore interface {
	GetActiveConfig(ctx context.Context, agentID string) (agent.Config, error)
}

// ToolCallSummary is the per-call audit row of a recorded run.
type ToolCallSummary struct {
	CallID   string        `json:"call_id"`
	Name     string        `json:"name"`
	IsError  bool          `json:"is_error"`
	Duration time.Duration `json:"duration"`
}

// Run is one recorded execution outcome. It is storage neutral; callers fill
// it from an execution result (or from the error of a failed run).
type Run struct {
	ID           string            `json:"id"`
	AgentID      string            `json:"agent_id"`
	Status       string            `json:"status"`
	Input        string            `json:"input"`
	Output       string            `json:"output,omitempty"`
	Error        string            `json:"error,omitempty"`
	ModelCalls   int               `json:"model_calls"`
	ToolCalls    int               `json:"tool_calls"`
	InputTokens  int64             `json:"input_tokens"`
	OutputTokens int64             `json:"output_tokens"`
	TotalTokens  int64             `json:"total_tokens"`
	Calls        []ToolCallSummary `json:"calls,omitempty"`
	StartedAt    time.Time         `json:"started_at"`
	FinishedAt   time.Time         `json:"finished_at"`
}

// RunRecorder persists execution outcomes. Implementations must be safe for
// concurrent use; the scheduler records runs from multiple goroutines.
type RunRecorder interface {
	SaveRun(ctx context.Context, run Run) error
}

// RunQuery filters ListRuns. Zero fields do not participate in filtering.
type RunQuery struct {
	AgentID string
	Status  string
	// Limit caps returned rows; <=0 uses the implementation default.
	Limit int
	// Desc returns newest runs first.
	Desc bool
}
