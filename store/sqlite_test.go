package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()

	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "aegis.db")
	s, err := Open(ctx, Config{
		Path:      dbPath,
		EnableWAL: true,
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteAgentRoundtrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	cfg := triageConfig()
	if err := s.SaveAgent(ctx, cfg); err != nil {
		t.Fatalf("save agent: %v", err)
	}

	// No prompt version yet: the agent exists but is not runnable.
	_, err := s.GetActiveConfig(ctx, "triage")
	if !errors.Is(err, ErrNoActivePrompt) {
		t.Fatalf("err = %v, want ErrNoActivePrompt", err)
	}

	v, err := s.AddPromptVersion(ctx, "triage", "You triage security alerts.", true)
	if err != nil {
		t.Fatalf("add prompt version: %v", err)
	}
	if v != 1 {
		t.Fatalf("version = %d, want 1", v)
	}

	got, err := s.GetActiveConfig(ctx, "triage")
	if err != nil {
		t.Fatalf("get active config: %v", err)
	}
	if got.SystemPrompt != "You triage security alerts." {
		t.Errorf("prompt = %q", got.SystemPrompt)
	}
	if got.ModelAlias != cfg.ModelAlias || got.PlanningMode != cfg.PlanningMode || got.MaxSteps != cfg.MaxSteps {
		t.Errorf("config = %+v, want %+v", got, cfg)
	}
	if len(got.Tools) != 2 || got.Tools[0] != "lookup_ip" || got.Tools[1] != "query_siem" {
		t.Errorf("tools = %v", got.Tools)
	}

	_, err = s.GetActiveConfig(ctx, "missing")
	if !errors.Is(err, ErrAgentNotFound) {
		t.Errorf("err = %v, want ErrAgentNotFound", err)
	}
}

func TestSQLiteSingleActivePrompt(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveAgent(ctx, triageConfig()); err != nil {
		t.Fatalf("save agent: %v", err)
	}

	if _, err := s.AddPromptVersion(ctx, "triage", "v1 text", true); err != nil {
		t.Fatalf("add v1: %v", err)
	}
	if _, err := s.AddPromptVersion(ctx, "triage", "v2 text", true); err != nil {
		t.Fatalf("add v2: %v", err)
	}

	var active []PromptVersion
	if err := s.db.WithContext(ctx).Where("agent_id = ? AND active = ?", "triage", true).Find(&active).Error; err != nil {
		t.Fatalf("query active versions: %v", err)
	}
	if len(active) != 1 || active[0].Version != 2 {
		t.Fatalf("active versions = %+v, want only v2", active)
	}

	if err := s.ActivatePromptVersion(ctx, "triage", 1); err != nil {
		t.Fatalf("activate v1: %v", err)
	}
	got, err := s.GetActiveConfig(ctx, "triage")
	if err != nil {
		t.Fatalf("get active config: %v", err)
	}
	if got.SystemPrompt != "v1 text" {
		t.Errorf("prompt = %q, want v1 text", got.SystemPrompt)
	}

	if err := s.ActivatePromptVersion(ctx, "triage", 42); err == nil {
		t.Error("activating an unknown version must fail")
	}
}

func TestSQLiteRunAudit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	started := time.Now().Add(-time.Minute).UTC()
	run := Run{
		ID:           "run-1",
		AgentID:      "triage",
		Status:       StatusCompleted,
		Input:        "investigate failed logins",
		Output:       "no anomalies found",
		ModelCalls:   3,
		ToolCalls:    2,
		InputTokens:  120,
		OutputTokens: 45,
		TotalTokens:  165,
		Calls: []ToolCallSummary{
			{CallID: "c1", Name: "query_siem", Duration: 120 * time.Millisecond},
			{CallID: "c2", Name: "lookup_ip", IsError: true, Duration: 40 * time.Millisecond},
		},
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Second),
	}
	if err := s.SaveRun(ctx, run); err != nil {
		t.Fatalf("save run: %v", err)
	}

	failed := Run{
		ID:        "run-2",
		AgentID:   "triage",
		Status:    StatusFailed,
		Input:     "investigate",
		Error:     `model generation failed for "claude-sonnet": rate limited`,
		StartedAt: started.Add(10 * time.Second),
	}
	if err := s.SaveRun(ctx, failed); err != nil {
		t.Fatalf("save failed run: %v", err)
	}

	got, err := s.ListRuns(ctx, RunQuery{AgentID: "triage", Desc: true})
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("runs = %d, want 2", len(got))
	}
	if got[0].ID != "run-2" || got[1].ID != "run-1" {
		t.Errorf("order = %s, %s", got[0].ID, got[1].ID)
	}
	if got[1].TotalTokens != 165 || got[1].Output != "no anomalies found" {
		t.Errorf("run-1 = %+v", got[1])
	}
	if len(got[1].Calls) != 2 || got[1].Calls[0].Name != "query_siem" || !got[1].Calls[1].IsError {
		t.Errorf("run-1 calls = %+v", got[1].Calls)
	}

	onlyFailed, err := s.ListRuns(ctx, RunQuery{Status: StatusFailed})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(onlyFailed) != 1 || onlyFailed[0].Error == "" {
		t.Errorf("failed runs = %+v", onlyFailed)
	}
}
