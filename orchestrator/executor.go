package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/aegisops/aegis/agent"
	"github.com/aegisops/aegis/core"
	"github.com/aegisops/aegis/logging"
	"github.com/aegisops/aegis/model"
	"github.com/aegisops/aegis/retrieval"
	"github.com/aegisops/aegis/tool"
)

// Options configures an Executor.
type Options struct {
	// Retriever supplies organization documents and agent memories for
	// context assembly. When nil, runs proceed without retrieved context.
	Retriever retrieval.Retriever

	// Logger for run diagnostics.
	Logger logging.Logger
}

// Executor runs agents against a model registry. It holds no per-run state
// and is safe for concurrent use.
type Executor struct {
	registry  *model.Registry
	retriever retrieval.Retriever
	logger    logging.Logger
}

// New creates an Executor resolving model aliases through registry.
func New(registry *model.Registry, optFns ...func(o *Options)) *Executor {
	opts := Options{}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Executor{
		registry:  registry,
		retriever: opts.Retriever,
		logger:    logging.EnsureLogger(opts.Logger),
	}
}

// Request carries everything one run needs.
type Request struct {
	// Config is the agent definition to execute.
	Config agent.Config `json:"config"`

	// Exec scopes the run to an organization, agent, and optional user.
	Exec core.ExecContext `json:"exec"`

	// Input is the user message for this run.
	Input string `json:"input"`

	// History holds prior conversation messages, oldest first. The executor
	// never mutates it.
	History []core.Message `json:"history,omitempty"`

	// Tools maps tool names to executors for this run. Only tools named
	// here are callable regardless of what the model requests.
	Tools map[string]tool.Tool `json:"-"`
}

// Result is the outcome of a completed run.
type Result struct {
	// RunID uniquely identifies this run.
	RunID string `json:"runId"`

	// Output is the agent's final textual answer.
	Output string `json:"output"`

	// ToolCallsExecuted counts every tool call processed during the run,
	// including calls whose executor was missing or returned an error.
	ToolCallsExecuted int `json:"toolCallsExecuted"`

	// ModelCalls counts model invocations, failed ones included.
	ModelCalls int `json:"modelCalls"`

	// Steps is the ordered trace of everything the run did.
	Steps []core.Step `json:"steps"`

	// Usage sums token consumption across all model calls.
	Usage core.Usage `json:"usage"`

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration `json:"elapsed"`
}

// Execute runs one agent to completion. Configuration problems surface as
// *ConfigurationError before any model call; model failures surface as
// *ModelError carrying the partial trace. Tool failures never abort a run.
func (e *Executor) Execute(ctx context.Context, req Request) (*Result, error) {
	started := time.Now()

	if err := req.Config.Validate(); err != nil {
		return nil, &ConfigurationError{Reason: "invalid agent config", Err: err}
	}

	provider, err := e.registry.Resolve(req.Config.ModelAlias)
	if err != nil {
		return nil, &ConfigurationError{Reason: "resolve model alias", Err: err}
	}

	if len(req.Tools) > 0 && !provider.Info().SupportsTools {
		return nil, &ConfigurationError{
			Reason: fmt.Sprintf("model %q does not support tool use", req.Config.ModelAlias),
		}
	}

	if req.Config.MaxDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Config.MaxDuration)
		defer cancel()
	}

	r := newRun(e, provider, req)

	r.logger.Info("run.start",
		"run.id", r.id,
		"agent.id", req.Config.ID,
		"agent.planning_mode", string(req.Config.PlanningMode),
		"model.alias", req.Config.ModelAlias,
	)

	messages := r.assemble(ctx)

	var output string

	switch req.Config.PlanningMode {
	case agent.PlanningSingleStep:
		output, err = r.runSingleStep(ctx, messages)
	case agent.PlanningLoopWithLimits:
		output, err = r.runLoop(ctx, messages, req.Config.MaxSteps)
	case agent.PlanningPlanAndExecute:
		output, err = r.runPlanAndExecute(ctx, messages)
	default:
		// Unreachable after Validate, kept as a guard.
		return nil, &ConfigurationError{
			Reason: fmt.Sprintf("unsupported planning mode %q", req.Config.PlanningMode),
		}
	}
	if err != nil {
		r.logger.Error("run.failed", "run.id", r.id, "error", err)

		return nil, err
	}

	elapsed := time.Since(started)

	r.logger.Info("run.complete",
		"run.id", r.id,
		"model.calls", r.modelCalls,
		"tool.calls", r.toolCalls,
		"usage.total_tokens", r.usage.TotalTokens,
		"elapsed", elapsed.String(),
	)

	return &Result{
		RunID:             r.id,
		Output:            output,
		ToolCallsExecuted: r.toolCalls,
		ModelCalls:        r.modelCalls,
		Steps:             r.steps,
		Usage:             r.usage,
		Elapsed:           elapsed,
	}, nil
}
