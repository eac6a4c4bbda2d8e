// Package tool implements the function / tool calling subsystem that lets
// agents invoke structured capabilities (APIs, computations, side-effects)
// with schema validated arguments and consistent error handling.
package tool

import (
	"context"
	"fmt"

	"github.com/aegisops/aegis/core"
)

// Tool defines the interface for extending agent capabilities with external
// functions.
//
// Tools are supplied to the orchestrator per run; the model sees their name,
// description and parameter schema and requests executions by exact name.
// Every execution receives the run's ExecContext so implementations can
// enforce organization boundaries and attribute side effects.
//
// Tool implementations should:
//   - Provide clear, descriptive names and descriptions
//   - Define proper JSON schema for parameters
//   - Handle errors gracefully
//   - Be thread-safe; calls in one round may execute concurrently
type Tool interface {
	// Name returns the unique identifier for this tool.
	// Names should be descriptive and follow function naming conventions (snake_case recommended).
	Name() string

	// Description returns a human-readable description of what this tool does.
	// This description is provided to the LLM to help it understand when and how to use the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected input format.
	// This schema is used for parameter validation and LLM function calling.
	Parameters() map[string]any

	// Execute runs the tool with parsed, schema-validated arguments. Errors
	// returned here never abort a run; the orchestrator feeds them back to
	// the model as error-tagged tool results.
	Execute(ctx context.Context, execCtx core.ExecContext, args map[string]any) (any, error)
}

// Error codes applied to failed tool executions.
const (
	// CodeValidation marks schema / argument mismatches.
	CodeValidation = "VALIDATION_ERROR"
	// CodeExecution marks failures of the underlying implementation.
	CodeExecution = "EXECUTION_ERROR"
)

// Error represents errors that occur during tool execution.
type Error struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewError creates a new Error with the specified details.
func NewError(tool, message, code string) *Error {
	return &Error{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}
