package agent

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		ID:           "agent-1",
		Name:         "Triage Assistant",
		SystemPrompt: "You are a security triage assistant.",
		ModelAlias:   "claude-sonnet",
		PlanningMode: PlanningLoopWithLimits,
		MaxSteps:     5,
		MaxDuration:  30 * time.Second,
	}
}

func TestConfig_ValidateOK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestConfig_ValidateSingleStepIgnoresMaxSteps(t *testing.T) {
	cfg := validConfig()
	cfg.PlanningMode = PlanningSingleStep
	cfg.MaxSteps = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("single_step should not require max steps: %v", err)
	}
}

func TestConfig_ValidateFailures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{"missing id", func(c *Config) { c.ID = "" }, "agent id"},
		{"missing prompt", func(c *Config) { c.SystemPrompt = "" }, "system prompt"},
		{"missing alias", func(c *Config) { c.ModelAlias = "" }, "model alias"},
		{"bad mode", func(c *Config) { c.PlanningMode = "recursive" }, "unknown planning mode"},
		{"loop without steps", func(c *Config) { c.MaxSteps = 0 }, "positive max step"},
		{"plan without steps", func(c *Config) { c.PlanningMode = PlanningPlanAndExecute; c.MaxSteps = -1 }, "positive max step"},
		{"negative duration", func(c *Config) { c.MaxDuration = -time.Second }, "max duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Fatalf("error %q does not mention %q", err.Error(), tt.wantSub)
			}
		})
	}
}

func TestPlanningMode_Valid(t *testing.T) {
	for _, m := range []PlanningMode{PlanningSingleStep, PlanningPlanAndExecute, PlanningLoopWithLimits} {
		if !m.Valid() {
			t.Errorf("mode %q should be valid", m)
		}
	}
	if PlanningMode("chain_of_thought").Valid() {
		t.Error("unknown mode should not be valid")
	}
}
