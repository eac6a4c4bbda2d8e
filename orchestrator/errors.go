package orchestrator

import (
	"fmt"

	"github.com/aegisops/aegis/core"
)

// ConfigurationError marks an agent configuration that cannot be executed:
// missing required fields, an unresolvable model alias, or tools supplied for
// a provider without tool support. It is always raised before the first model
// call; a run that produced a configuration error consumed no tokens.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *ConfigurationError) Unwrap() error { return e.Err }

// ModelError wraps a failure of the model-generation collaborator. It is
// fatal: the run aborts and the error carries the trace accumulated up to and
// including the failed call, so callers can still record what the run did and
// what it cost. Tool failures never produce a ModelError; they are absorbed
// into the conversation as error-tagged results.
type ModelError struct {
	Alias string
	Err   error

	// Steps is the partial execution trace, ending with the failed call.
	Steps []core.Step
	// Usage sums the tokens consumed by the calls that succeeded.
	Usage core.Usage
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model generation failed for %q: %v", e.Alias, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *ModelError) Unwrap() error { return e.Err }
