// Package aegis provides a high-level façade over the orchestrator and the
// service abstractions around it (model providers, tools, retrieval, agent
// storage & logging) enabling rapid construction of LLM-driven security
// operations agents. Most applications interact with this package by:
//  1. Creating an Aegis via New() (optionally overriding default in-memory services)
//  2. Registering model providers under aliases and tools under their names
//  3. Running stored agents (Run) or explicit configurations (Execute)
//
// The façade delegates execution to orchestrator.Executor while keeping setup
// and usage ergonomics concise. All defaults are safe for local development
// and testing; production deployments typically supply a SQLite-backed agent
// store and a structured logger.
package aegis

import (
	"context"

	"github.com/aegisops/aegis/core"
	"github.com/aegisops/aegis/logging"
	"github.com/aegisops/aegis/model"
	"github.com/aegisops/aegis/orchestrator"
	"github.com/aegisops/aegis/retrieval"
	"github.com/aegisops/aegis/store"
	"github.com/aegisops/aegis/tool"
)

// Options configures the Aegis instance.
type Options struct {
	// Models resolves agent model aliases to providers. Defaults to an empty
	// registry; register providers before running agents.
	Models *model.Registry

	// Tools holds the tools agents may reference by name in their
	// configuration. Defaults to an empty registry.
	Tools *tool.Registry

	// Retriever supplies organization documents and memories for context
	// assembly. Nil disables the retrieval pre-step.
	Retriever retrieval.Retriever

	// Store resolves agent ids to their active configuration. Defaults to an
	// in-memory store.
	Store store.AgentStore

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Aegis is the high-level façade aggregating the executor and its services.
type Aegis struct {
	opts     Options
	executor *orchestrator.Executor
}

// New creates a new Aegis instance with optional overrides. Any unset service
// is initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *Aegis {
	opts := Options{
		Models: model.NewRegistry(),
		Tools:  tool.NewRegistry(),
		Store:  store.NewInMemory(),
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	executor := orchestrator.New(opts.Models, func(o *orchestrator.Options) {
		o.Retriever = opts.Retriever
		o.Logger = opts.Logger
	})

	return &Aegis{opts: opts, executor: executor}
}

// RegisterModel adds a provider under the given alias.
func (a *Aegis) RegisterModel(alias string, p model.Provider) error {
	return a.opts.Models.Register(alias, p)
}

// RegisterTool adds a tool under its own name.
func (a *Aegis) RegisterTool(t tool.Tool) error {
	return a.opts.Tools.Register(t)
}

// Run loads the agent's active configuration from the store, binds the tools
// its configuration names, and executes input against it. Conversation
// history may be nil for a fresh conversation.
func (a *Aegis) Run(
	ctx context.Context,
	agentID string,
	execCtx core.ExecContext,
	input string,
	history []core.Message,
) (*orchestrator.Result, error) {
	cfg, err := a.opts.Store.GetActiveConfig(ctx, agentID)
	if err != nil {
		return nil, &orchestrator.ConfigurationError{Reason: "load agent config", Err: err}
	}

	var tools map[string]tool.Tool
	if len(cfg.Tools) > 0 {
		selected := a.opts.Tools.Select(cfg.Tools...)
		tools = make(map[string]tool.Tool, len(selected))
		for _, t := range selected {
			tools[t.Name()] = t
		}
	}

	return a.executor.Execute(ctx, orchestrator.Request{
		Config:  cfg,
		Exec:    execCtx,
		Input:   input,
		History: history,
		Tools:   tools,
	})
}

// Execute runs an explicit agent configuration without consulting the store.
func (a *Aegis) Execute(ctx context.Context, req orchestrator.Request) (*orchestrator.Result, error) {
	return a.executor.Execute(ctx, req)
}
