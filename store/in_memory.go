package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aegisops/aegis/agent"
)

type promptVersion struct {
	version   int
	text      string
	active    bool
	createdAt time.Time
}

// InMemory is a volatile AgentStore and RunRecorder backed by process-local
// maps. It is safe for concurrent access and best suited for tests or
// ephemeral demos. Returned configs and runs are copies; mutating them does
// not affect stored state.
type InMemory struct {
	mu      sync.RWMutex
	configs map[string]agent.Config
	prompts map[string][]promptVersion
	dynamic map[string]agent.Prompt
	runs    []Run
}

// NewInMemory constructs an empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{
		configs: make(map[string]agent.Config),
		prompts: make(map[string][]promptVersion),
		dynamic: make(map[string]agent.Prompt),
	}
}

// PutConfig stores or replaces an agent configuration.
func (s *InMemory) PutConfig(cfg agent.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[cfg.ID] = cfg
}

// PutPromptVersion appends a new prompt version for the agent and returns its
// version number. When activate is set, every other version is deactivated so
// exactly one version stays active.
func (s *InMemory) PutPromptVersion(agentID, text string, activate bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	versions := s.prompts[agentID]

	if activate {
		for i := range versions {
			versions[i].active = false
		}
	}

	v := promptVersion{
		version:   len(versions) + 1,
		text:      text,
		active:    activate,
		createdAt: time.Now().UTC(),
	}
	s.prompts[agentID] = append(versions, v)

	return v.version
}

// SetPrompt binds a prompt source to the agent that overrides any stored
// prompt versions. Dynamic sources are resolved on every GetActiveConfig call,
// so an in-flight run keeps the text it started with while the next run picks
// up the current value.
func (s *InMemory) SetPrompt(agentID string, p agent.Prompt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dynamic[agentID] = p
}

// ActivatePromptVersion marks the given version active and every other
// version inactive.
func (s *InMemory) ActivatePromptVersion(agentID string, version int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	versions := s.prompts[agentID]

	found := false
	for i := range versions {
		versions[i].active = versions[i].version == version
		found = found || versions[i].version == version
	}

	if !found {
		return fmt.Errorf("prompt version %d not found for agent %q", version, agentID)
	}

	return nil
}

// GetActiveConfig implements AgentStore. A prompt bound via SetPrompt wins;
// otherwise, when prompt versions exist for the agent, the active version's
// text replaces the stored SystemPrompt, and versions with none active fail
// with ErrNoActivePrompt.
func (s *InMemory) GetActiveConfig(ctx context.Context, agentID string) (agent.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, ok := s.configs[agentID]
	if !ok {
		return agent.Config{}, fmt.Errorf("agent %q: %w", agentID, ErrAgentNotFound)
	}

	if p, ok := s.dynamic[agentID]; ok {
		text, err := p.Resolve(ctx)
		if err != nil {
			return agent.Config{}, fmt.Errorf("agent %q: resolve prompt: %w", agentID, err)
		}
		cfg.SystemPrompt = text
		return cfg, nil
	}

	versions := s.prompts[agentID]
	if len(versions) == 0 {
		return cfg, nil
	}

	for _, v := range versions {
		if v.active {
			cfg.SystemPrompt = v.text
			return cfg, nil
		}
	}

	return agent.Config{}, fmt.Errorf("agent %q: %w", agentID, ErrNoActivePrompt)
}

// SaveRun implements RunRecorder.
func (s *InMemory) SaveRun(_ context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, cloneRun(run))
	return nil
}

// ListRuns returns recorded runs matching the query in insertion order, or
// newest first when q.Desc is set.
func (s *InMemory) ListRuns(_ context.Context, q RunQuery) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := q.Limit
	if limit <= 0 {
		limit = len(s.runs)
	}

	var out []Run

	appendRun := func(r Run) bool {
		if q.AgentID != "" && r.AgentID != q.AgentID {
			return true
		}
		if q.Status != "" && r.Status != q.Status {
			return true
		}
		out = append(out, cloneRun(r))
		return len(out) < limit
	}

	if q.Desc {
		for i := len(s.runs) - 1; i >= 0; i-- {
			if !appendRun(s.runs[i]) {
				break
			}
		}
	} else {
		for _, r := range s.runs {
			if !appendRun(r) {
				break
			}
		}
	}

	return out, nil
}

func cloneRun(r Run) Run {
	c := r
	if len(r.Calls) > 0 {
		c.Calls = make([]ToolCallSummary, len(r.Calls))
		copy(c.Calls, r.Calls)
	}
	return c
}
