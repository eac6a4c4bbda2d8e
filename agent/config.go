package agent

import (
	"fmt"
	"time"
)

// PlanningMode selects the control-flow strategy the orchestrator applies to
// a run.
type PlanningMode string

const (
	// PlanningSingleStep performs one model call, at most one tool round and
	// one follow-up call. Terminal after no more than two model calls.
	PlanningSingleStep PlanningMode = "single_step"
	// PlanningPlanAndExecute asks the model for an explicit plan first, then
	// continues with loop semantics on the extended conversation.
	PlanningPlanAndExecute PlanningMode = "plan_and_execute"
	// PlanningLoopWithLimits iterates model and tool rounds until the model
	// stops requesting tools or MaxSteps is reached.
	PlanningLoopWithLimits PlanningMode = "loop_with_limits"
)

// Valid reports whether the mode is one of the supported planning modes.
func (m PlanningMode) Valid() bool {
	switch m {
	case PlanningSingleStep, PlanningPlanAndExecute, PlanningLoopWithLimits:
		return true
	default:
		return false
	}
}

// Config is the execution configuration of one agent. All fields are fixed at
// run start; the orchestrator never mutates a Config.
type Config struct {
	// ID uniquely identifies the agent.
	ID string `json:"id"`
	// Name is a human readable label used in logs and reports.
	Name string `json:"name,omitempty"`
	// SystemPrompt is the active prompt text for this agent. When the agent
	// store resolves versioned prompts, this carries the single active
	// version's text.
	SystemPrompt string `json:"system_prompt"`
	// ModelAlias names the model in the provider registry, e.g.
	// "claude-sonnet" or "gpt-4o-mini". Aliases map to providers through an
	// explicit registration table, never by substring inspection.
	ModelAlias string `json:"model_alias"`
	// PlanningMode selects the control-flow strategy.
	PlanningMode PlanningMode `json:"planning_mode"`
	// MaxSteps bounds the number of model-call rounds for the iterating
	// planning modes. Reaching the bound is a soft limit: the last model
	// output becomes the final answer.
	MaxSteps int `json:"max_steps,omitempty"`
	// MaxDuration bounds the wall-clock time of a whole run. Zero means
	// unlimited. Enforced through a context deadline carried into every
	// collaborator call.
	MaxDuration time.Duration `json:"max_duration,omitempty"`
	// Tools lists the names of the tools associated with this agent. The
	// façade uses it to select executors from its tool registry; the
	// orchestrator itself only ever sees the executors actually supplied for
	// a run.
	Tools []string `json:"tools,omitempty"`
}

// Validate checks the structural invariants of a Config. Violations surface
// as configuration errors before any model call is made.
func (c Config) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("agent id must not be empty")
	}
	if c.SystemPrompt == "" {
		return fmt.Errorf("agent %q: system prompt must not be empty", c.ID)
	}
	if c.ModelAlias == "" {
		return fmt.Errorf("agent %q: model alias must not be empty", c.ID)
	}
	if !c.PlanningMode.Valid() {
		return fmt.Errorf("agent %q: unknown planning mode %q", c.ID, c.PlanningMode)
	}
	if c.PlanningMode != PlanningSingleStep && c.MaxSteps <= 0 {
		return fmt.Errorf("agent %q: planning mode %q requires a positive max step count", c.ID, c.PlanningMode)
	}
	if c.MaxDuration < 0 {
		return fmt.Errorf("agent %q: max duration must not be negative", c.ID)
	}
	return nil
}
