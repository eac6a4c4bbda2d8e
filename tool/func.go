package tool

import (
	"context"
	"fmt"

	"github.com/aegisops/aegis/core"
	"github.com/aegisops/aegis/internal/util"
)

// Func is a generic adapter that exposes a plain Go function as an Aegis tool.
//
// Responsibilities:
//   - Holds a lightweight JSON-Schema-like parameter specification
//   - Validates model supplied arguments against that schema before execution
//   - Normalizes error handling so callers receive *Error with consistent codes:
//     VALIDATION_ERROR  -> schema / argument mismatch
//     EXECUTION_ERROR   -> underlying function returned an error (non-Error)
//     (custom codes preserved if the function returns *Error directly)
//
// Concurrency:
//
//	A Func has no internal mutable state after construction and is safe for
//	concurrent use by multiple goroutines.
//
// Returned result:
//
//	The returned value can be any Go type that is JSON-serializable by the
//	orchestrator. If more structure is required, implement Tool directly.
type Func struct {
	// Tool identifier (snake_case recommended)
	name string
	// Human-readable description shown to models
	description string
	// JSON schema describing accepted arguments
	parameters map[string]any
	// User supplied implementation
	fn func(ctx context.Context, execCtx core.ExecContext, args map[string]any) (any, error)
}

// NewFunc constructs a Func from explicit schema and function.
//
// Example:
//
//	severityTool := NewFunc(
//	  "score_severity",
//	  "Score the severity of a finding from 0 to 10",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "cvss": map[string]any{"type": "number"},
//	    },
//	    "required": []string{"cvss"},
//	  },
//	  func(ctx context.Context, execCtx core.ExecContext, args map[string]any) (any, error) {
//	    return args["cvss"].(float64) >= 7.0, nil
//	  },
//	)
func NewFunc(
	name, description string,
	parameters map[string]any,
	fn func(ctx context.Context, execCtx core.ExecContext, args map[string]any) (any, error),
) *Func {
	return &Func{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
}

// NewFuncFromStruct derives the parameter schema from a struct via SchemaFor.
// It is a convenience for simple argument containers.
//
// Example:
//
//	type LookupArgs struct {
//	  IP string `json:"ip" jsonschema:"description=IPv4 or IPv6 address"`
//	}
//
//	lookupTool := NewFuncFromStruct(
//	  "lookup_ip",
//	  "Look up the reputation of an IP address",
//	  LookupArgs{},
//	  func(ctx context.Context, execCtx core.ExecContext, args map[string]any) (any, error) {
//	    return reputation(args["ip"].(string)), nil
//	  },
//	)
func NewFuncFromStruct(
	name, description string,
	structType any,
	fn func(ctx context.Context, execCtx core.ExecContext, args map[string]any) (any, error),
) *Func {
	return NewFunc(name, description, SchemaFor(structType), fn)
}

// Name returns the unique tool name used in function call declarations and routing.
func (t *Func) Name() string { return t.name }

// Description returns the short natural language description exposed to models.
func (t *Func) Description() string { return t.description }

// Parameters returns the (minimal) JSON schema describing expected arguments.
func (t *Func) Parameters() map[string]any { return t.parameters }

// Execute validates the provided args against the declared schema then
// invokes the underlying function. Validation or execution failures are
// wrapped (or passed through) as *Error for uniform downstream handling.
//
// Error Semantics:
//
//	*Error (returned directly)  -> forwarded unchanged
//	validation failure          -> *Error{Code: "VALIDATION_ERROR"}
//	other error                 -> *Error{Code: "EXECUTION_ERROR"}
func (t *Func) Execute(ctx context.Context, execCtx core.ExecContext, args map[string]any) (any, error) {
	if err := util.ValidateParameters(args, t.parameters); err != nil {
		return nil, &Error{
			Tool:    t.name,
			Message: fmt.Sprintf("parameter validation failed: %v", err),
			Code:    CodeValidation,
			Details: err,
		}
	}

	result, err := t.fn(ctx, execCtx, args)
	if err != nil {
		if toolErr, ok := err.(*Error); ok {
			return nil, toolErr
		}

		return nil, &Error{
			Tool:    t.name,
			Message: err.Error(),
			Code:    CodeExecution,
		}
	}

	return result, nil
}
