package aegis

import (
	"context"
	"errors"
	"testing"

	"github.com/aegisops/aegis/agent"
	"github.com/aegisops/aegis/core"
	"github.com/aegisops/aegis/model"
	"github.com/aegisops/aegis/orchestrator"
	"github.com/aegisops/aegis/store"
	"github.com/aegisops/aegis/tool"
)

func echoTool(name string) tool.Tool {
	return tool.NewFunc(name, "echo the given value", map[string]any{
		"type": "object",
		"properties": map[string]any{
			"value": map[string]any{"type": "string"},
		},
	}, func(_ context.Context, _ core.ExecContext, args map[string]any) (any, error) {
		v, _ := args["value"].(string)
		return "echo: " + v, nil
	})
}

func TestAegis_RunStoredAgent(t *testing.T) {
	st := store.NewInMemory()
	st.PutConfig(agent.Config{
		ID:           "triage",
		Name:         "Alert Triage",
		SystemPrompt: "You triage security alerts.",
		ModelAlias:   "claude-sonnet",
		PlanningMode: agent.PlanningSingleStep,
		Tools:        []string{"echo"},
	})

	mock := model.NewMock("claude-sonnet-mock")
	mock.EnqueueText("all quiet", core.Usage{InputTokens: 8, OutputTokens: 3, TotalTokens: 11})

	a := New(func(o *Options) { o.Store = st })
	if err := a.RegisterModel("claude-sonnet", mock); err != nil {
		t.Fatalf("register model: %v", err)
	}
	if err := a.RegisterTool(echoTool("echo")); err != nil {
		t.Fatalf("register tool: %v", err)
	}
	if err := a.RegisterTool(echoTool("unrelated")); err != nil {
		t.Fatalf("register tool: %v", err)
	}

	res, err := a.Run(context.Background(),
		"triage",
		core.ExecContext{OrganizationID: "org-1", AgentID: "triage"},
		"anything new?",
		nil,
	)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if res.Output != "all quiet" {
		t.Errorf("output = %q", res.Output)
	}

	// Only the tool named by the agent's configuration is offered.
	req := mock.RequestAt(0)
	if len(req.Tools) != 1 || req.Tools[0].Name != "echo" {
		t.Errorf("offered tools = %+v, want just echo", req.Tools)
	}
	if req.SystemPrompt != "You triage security alerts." {
		t.Errorf("system prompt = %q", req.SystemPrompt)
	}
}

func TestAegis_RunUnknownAgent(t *testing.T) {
	a := New()

	_, err := a.Run(context.Background(), "ghost", core.ExecContext{}, "hi", nil)

	var cfgErr *orchestrator.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("err = %v, want *ConfigurationError", err)
	}
	if !errors.Is(err, store.ErrAgentNotFound) {
		t.Errorf("err = %v, want wrapped ErrAgentNotFound", err)
	}
}

func TestAegis_ExecuteExplicitConfig(t *testing.T) {
	mock := model.NewMock("claude-sonnet-mock")
	mock.EnqueueText("pong", core.Usage{InputTokens: 3, OutputTokens: 1, TotalTokens: 4})

	a := New()
	if err := a.RegisterModel("claude-sonnet", mock); err != nil {
		t.Fatalf("register model: %v", err)
	}

	res, err := a.Execute(context.Background(), orchestrator.Request{
		Config: agent.Config{
			ID:           "adhoc",
			SystemPrompt: "Answer briefly.",
			ModelAlias:   "claude-sonnet",
			PlanningMode: agent.PlanningSingleStep,
		},
		Exec:  core.ExecContext{OrganizationID: "org-1", AgentID: "adhoc"},
		Input: "ping",
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.Output != "pong" {
		t.Errorf("output = %q", res.Output)
	}
}
