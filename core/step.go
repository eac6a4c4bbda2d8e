package core

import "time"

// StepKind classifies an entry in the execution trace.
type StepKind string

const (
	// StepModelCall records one model generation call.
	StepModelCall StepKind = "llm_call"
	// StepToolCall records one tool execution (including failed lookups).
	StepToolCall StepKind = "tool_call"
	// StepRetrieval records the context retrieval pre-step.
	StepRetrieval StepKind = "retrieval"
)

// Step is a single record in the ordered execution trace of a run. The trace
// is observational: the orchestrator appends to it but never reads it back to
// make decisions. Detail carries kind-specific payload (model name and
// per-call usage for model calls, tool name and error flag for tool calls,
// snippet counts for retrieval).
type Step struct {
	Kind     StepKind       `json:"kind"`
	At       time.Time      `json:"at"`
	Duration time.Duration  `json:"duration,omitempty"`
	Detail   map[string]any `json:"detail,omitempty"`
}

// NewModelCallStep records a completed model generation call.
func NewModelCallStep(model, finishReason string, usage Usage, dur time.Duration) Step {
	return Step{
		Kind:     StepModelCall,
		At:       time.Now().UTC(),
		Duration: dur,
		Detail: map[string]any{
			"model":         model,
			"finish_reason": finishReason,
			"input_tokens":  usage.InputTokens,
			"output_tokens": usage.OutputTokens,
			"total_tokens":  usage.TotalTokens,
		},
	}
}

// NewFailedModelCallStep records a model call that returned an error.
func NewFailedModelCallStep(model string, err error, dur time.Duration) Step {
	return Step{
		Kind:     StepModelCall,
		At:       time.Now().UTC(),
		Duration: dur,
		Detail: map[string]any{
			"model": model,
			"error": err.Error(),
		},
	}
}

// NewToolCallStep records a tool execution outcome.
func NewToolCallStep(res ToolResult, dur time.Duration) Step {
	return Step{
		Kind:     StepToolCall,
		At:       time.Now().UTC(),
		Duration: dur,
		Detail: map[string]any{
			"tool":     res.Name,
			"call_id":  res.CallID,
			"is_error": res.IsError,
		},
	}
}

// NewRetrievalStep records the context assembly pre-step.
func NewRetrievalStep(snippets int, failed bool, dur time.Duration) Step {
	return Step{
		Kind:     StepRetrieval,
		At:       time.Now().UTC(),
		Duration: dur,
		Detail: map[string]any{
			"snippets": snippets,
			"failed":   failed,
		},
	}
}
